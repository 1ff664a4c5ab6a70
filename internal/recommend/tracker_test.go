package recommend

import (
	"errors"
	"testing"

	"taskpilot/internal/models"
)

func TestIncrementalAverages(t *testing.T) {
	tracker := NewTracker(0, nil)

	for _, accuracy := range []float64{0.9, 0.7, 0.8} {
		tracker.Record("micro-intent", models.PerformanceObservation{
			Accuracy:           accuracy,
			InferenceMs:        100,
			Success:            true,
			ResourceEfficiency: 0.9,
		})
	}

	perf := tracker.Get("micro-intent")
	if perf == nil {
		t.Fatal("expected aggregate for micro-intent")
	}
	if perf.ExecutionCount != 3 {
		t.Errorf("execution count = %d, want 3", perf.ExecutionCount)
	}
	if !approxEqual(perf.AverageAccuracy, 0.8) {
		t.Errorf("average accuracy = %v, want 0.8", perf.AverageAccuracy)
	}
	if !approxEqual(perf.SuccessRate, 1.0) {
		t.Errorf("success rate = %v, want 1.0", perf.SuccessRate)
	}
	if perf.LastUsed.IsZero() {
		t.Error("last used was not set")
	}
}

func TestSuccessRateMix(t *testing.T) {
	tracker := NewTracker(0, nil)

	tracker.Record("task-ranker", models.PerformanceObservation{Success: true})
	tracker.Record("task-ranker", models.PerformanceObservation{Success: false})
	tracker.Record("task-ranker", models.PerformanceObservation{Success: true})
	tracker.Record("task-ranker", models.PerformanceObservation{Success: true})

	perf := tracker.Get("task-ranker")
	if !approxEqual(perf.SuccessRate, 0.75) {
		t.Errorf("success rate = %v, want 0.75", perf.SuccessRate)
	}
}

func TestGetUnknownModel(t *testing.T) {
	tracker := NewTracker(0, nil)
	if perf := tracker.Get("nope"); perf != nil {
		t.Errorf("expected nil for unknown model, got %+v", perf)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	tracker := NewTracker(0, nil)
	tracker.Record("micro-intent", models.PerformanceObservation{Accuracy: 0.5, Success: true})

	perf := tracker.Get("micro-intent")
	perf.AverageAccuracy = 0.0

	if again := tracker.Get("micro-intent"); !approxEqual(again.AverageAccuracy, 0.5) {
		t.Errorf("tracker state was mutated through a returned copy")
	}
}

func TestHistoryCapEvictsOldest(t *testing.T) {
	tracker := NewTracker(5, nil)

	for i := 0; i < 12; i++ {
		tracker.Record("micro-intent", models.PerformanceObservation{Success: true})
	}

	if got := tracker.HistoryLen(); got != 5 {
		t.Errorf("history length = %d, want 5", got)
	}
	// Aggregates are unaffected by history eviction
	if perf := tracker.Get("micro-intent"); perf.ExecutionCount != 12 {
		t.Errorf("execution count = %d, want 12", perf.ExecutionCount)
	}
}

func TestSeedRestoresAggregates(t *testing.T) {
	tracker := NewTracker(0, nil)
	tracker.Seed([]models.ModelPerformance{{
		ModelName:       "fastlane-rules",
		ExecutionCount:  10,
		AverageAccuracy: 0.8,
		SuccessRate:     0.9,
	}})

	perf := tracker.Get("fastlane-rules")
	if perf == nil || perf.ExecutionCount != 10 {
		t.Fatalf("seeded aggregate missing: %+v", perf)
	}

	// Next observation continues from the seeded count
	tracker.Record("fastlane-rules", models.PerformanceObservation{Accuracy: 0.8, Success: true})
	perf = tracker.Get("fastlane-rules")
	if perf.ExecutionCount != 11 {
		t.Errorf("execution count = %d, want 11", perf.ExecutionCount)
	}
	if !approxEqual(perf.SuccessRate, (0.9*10+1)/11) {
		t.Errorf("success rate = %v, want %v", perf.SuccessRate, (0.9*10+1)/11)
	}
}

type fakeStore struct {
	upserts []models.ModelPerformance
	err     error
}

func (f *fakeStore) UpsertModelPerformance(perf models.ModelPerformance) error {
	f.upserts = append(f.upserts, perf)
	return f.err
}

func TestStoreReceivesSnapshots(t *testing.T) {
	store := &fakeStore{}
	tracker := NewTracker(0, store)

	tracker.Record("micro-intent", models.PerformanceObservation{Accuracy: 0.7, Success: true})
	tracker.Record("micro-intent", models.PerformanceObservation{Accuracy: 0.9, Success: true})

	if len(store.upserts) != 2 {
		t.Fatalf("store upserts = %d, want 2", len(store.upserts))
	}
	if !approxEqual(store.upserts[1].AverageAccuracy, 0.8) {
		t.Errorf("persisted accuracy = %v, want 0.8", store.upserts[1].AverageAccuracy)
	}
}

func TestStoreFailureDoesNotBlockRecording(t *testing.T) {
	store := &fakeStore{err: errors.New("connection reset")}
	tracker := NewTracker(0, store)

	perf := tracker.Record("micro-intent", models.PerformanceObservation{Success: true})
	if perf.ExecutionCount != 1 {
		t.Errorf("execution count = %d, want 1 despite store failure", perf.ExecutionCount)
	}
}
