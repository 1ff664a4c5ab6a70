package recommend

import (
	"log"
	"sync"
	"time"

	"taskpilot/internal/models"
)

// DefaultHistoryLimit caps the in-memory observation history. Oldest
// observations are evicted first once the cap is reached.
const DefaultHistoryLimit = 1000

// PerformanceStore persists aggregates across restarts. Record calls the
// store synchronously with a snapshot copy, after the aggregate lock has
// been released.
type PerformanceStore interface {
	UpsertModelPerformance(perf models.ModelPerformance) error
}

// historyEntry ties an observation to the model it was recorded for
type historyEntry struct {
	modelName   string
	observation models.PerformanceObservation
}

// Tracker maintains per-model running performance aggregates. A single
// mutex guards all state; averages use the incremental formula
// newAvg = (oldAvg*n + obs) / (n+1).
type Tracker struct {
	mutex        sync.Mutex
	aggregates   map[string]*models.ModelPerformance
	history      []historyEntry
	historyLimit int
	store        PerformanceStore
}

// NewTracker creates a tracker with the given history cap. A limit of 0
// uses DefaultHistoryLimit. store may be nil for memory-only tracking.
func NewTracker(historyLimit int, store PerformanceStore) *Tracker {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Tracker{
		aggregates:   make(map[string]*models.ModelPerformance),
		historyLimit: historyLimit,
		store:        store,
	}
}

// Record folds one observation into the model's running aggregate
func (t *Tracker) Record(modelName string, obs models.PerformanceObservation) models.ModelPerformance {
	if obs.ObservedAt.IsZero() {
		obs.ObservedAt = time.Now()
	}

	t.mutex.Lock()
	perf, exists := t.aggregates[modelName]
	if !exists {
		perf = &models.ModelPerformance{ModelName: modelName}
		t.aggregates[modelName] = perf
	}

	n := float64(perf.ExecutionCount)
	perf.AverageAccuracy = (perf.AverageAccuracy*n + obs.Accuracy) / (n + 1)
	perf.AverageInferenceMs = (perf.AverageInferenceMs*n + obs.InferenceMs) / (n + 1)
	perf.ResourceEfficiency = (perf.ResourceEfficiency*n + obs.ResourceEfficiency) / (n + 1)
	success := 0.0
	if obs.Success {
		success = 1.0
	}
	perf.SuccessRate = (perf.SuccessRate*n + success) / (n + 1)
	perf.ExecutionCount++
	perf.LastUsed = obs.ObservedAt

	t.history = append(t.history, historyEntry{modelName: modelName, observation: obs})
	if len(t.history) > t.historyLimit {
		t.history = t.history[len(t.history)-t.historyLimit:]
	}

	snapshot := *perf
	t.mutex.Unlock()

	if t.store != nil {
		if err := t.store.UpsertModelPerformance(snapshot); err != nil {
			log.Printf("WARNING: Failed to persist performance for model %s: %v", modelName, err)
		}
	}

	return snapshot
}

// Get returns a copy of the aggregate for a model, or nil when the model
// has never been recorded.
func (t *Tracker) Get(modelName string) *models.ModelPerformance {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	perf, exists := t.aggregates[modelName]
	if !exists {
		return nil
	}
	snapshot := *perf
	return &snapshot
}

// Snapshot returns copies of every model aggregate
func (t *Tracker) Snapshot() []models.ModelPerformance {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	out := make([]models.ModelPerformance, 0, len(t.aggregates))
	for _, perf := range t.aggregates {
		out = append(out, *perf)
	}
	return out
}

// Seed preloads aggregates, used at startup to restore persisted state
func (t *Tracker) Seed(aggregates []models.ModelPerformance) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	for _, perf := range aggregates {
		copied := perf
		t.aggregates[perf.ModelName] = &copied
	}
}

// HistoryLen reports the current number of retained observations
func (t *Tracker) HistoryLen() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return len(t.history)
}
