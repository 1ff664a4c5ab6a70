package recommend

import (
	"math"
	"testing"

	"taskpilot/internal/catalog"
	"taskpilot/internal/models"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cat, err := catalog.New(catalog.DefaultModels())
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}
	return NewEngine(cat, NewTracker(0, nil))
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRecommendAutomationCritical(t *testing.T) {
	engine := newTestEngine(t)

	rec := engine.Recommend(models.CategoryAutomation, models.TaskPriorityCritical, models.ExecutionContext{
		MaxMemoryMB:              40,
		BatteryOptimizationLevel: 2,
	})

	if rec.Model.Name != "fastlane-rules" {
		t.Fatalf("expected fastlane-rules, got %s", rec.Model.Name)
	}
	if rec.Fallback {
		t.Error("expected a regular recommendation, not a fallback")
	}

	// 0.4*suitability + 0.3*accuracy + 0.2*resource + critical bonus
	expectedScore := 0.4*0.90 + 0.3*0.78 + 0.2*((0.75+1.0+0.8)/3) + (0.78-0.5)*0.1
	if !approxEqual(rec.Score, expectedScore) {
		t.Errorf("score = %v, want %v", rec.Score, expectedScore)
	}

	// 40MB ceiling drops deep-context, vision-capture and gen-assist;
	// battery level 2 allows up to moderate impact.
	if len(rec.Alternatives) != 2 {
		t.Fatalf("expected 2 alternatives, got %d", len(rec.Alternatives))
	}
	if rec.Alternatives[0].Model.Name != "task-ranker" {
		t.Errorf("runner-up = %s, want task-ranker", rec.Alternatives[0].Model.Name)
	}
	if rec.Alternatives[1].Model.Name != "micro-intent" {
		t.Errorf("third = %s, want micro-intent", rec.Alternatives[1].Model.Name)
	}
	if rec.Alternatives[0].Score < rec.Alternatives[1].Score {
		t.Error("alternatives are not sorted by descending score")
	}

	runnerUp := 0.4*0.80 + 0.3*0.84 + 0.2*((0.62+0.7+0.5)/3) + (0.84-0.5)*0.1
	expectedConfidence := expectedScore*0.7 + (expectedScore-runnerUp)*0.3
	if !approxEqual(rec.Confidence, expectedConfidence) {
		t.Errorf("confidence = %v, want %v", rec.Confidence, expectedConfidence)
	}
}

func TestBatteryOptimizationFiltering(t *testing.T) {
	engine := newTestEngine(t)

	// Level 3 permits at most low impact: micro-intent and fastlane-rules
	rec := engine.Recommend(models.CategoryGeneral, models.TaskPriorityMedium, models.ExecutionContext{
		BatteryOptimizationLevel: 3,
	})
	if rec.Fallback {
		t.Fatal("unexpected fallback")
	}
	names := map[string]bool{rec.Model.Name: true}
	for _, alt := range rec.Alternatives {
		names[alt.Model.Name] = true
	}
	if len(names) != 2 || !names["micro-intent"] || !names["fastlane-rules"] {
		t.Errorf("level 3 candidates = %v, want micro-intent and fastlane-rules", names)
	}

	// Level 4 permits only minimal impact
	rec = engine.Recommend(models.CategoryGeneral, models.TaskPriorityMedium, models.ExecutionContext{
		BatteryOptimizationLevel: 4,
	})
	if rec.Model.Name != "micro-intent" {
		t.Errorf("level 4 pick = %s, want micro-intent", rec.Model.Name)
	}
	if len(rec.Alternatives) != 0 {
		t.Errorf("level 4 alternatives = %d, want 0", len(rec.Alternatives))
	}
}

func TestSingleViableModelConfidence(t *testing.T) {
	engine := newTestEngine(t)

	// Only micro-intent fits under 20MB
	rec := engine.Recommend(models.CategoryProductivity, models.TaskPriorityLow, models.ExecutionContext{
		MaxMemoryMB: 20,
	})
	if rec.Model.Name != "micro-intent" {
		t.Fatalf("expected micro-intent, got %s", rec.Model.Name)
	}
	// With no alternatives the confidence equals the raw score
	if !approxEqual(rec.Confidence, rec.Score) {
		t.Errorf("confidence = %v, want score %v", rec.Confidence, rec.Score)
	}
}

func TestFallbackWhenNoViableModels(t *testing.T) {
	engine := newTestEngine(t)

	rec := engine.Recommend(models.CategoryAnalytics, models.TaskPriorityHigh, models.ExecutionContext{
		MaxMemoryMB: 5,
	})

	if !rec.Fallback {
		t.Fatal("expected fallback recommendation")
	}
	if rec.Model.Name != "micro-intent" {
		t.Errorf("fallback model = %s, want baseline micro-intent", rec.Model.Name)
	}
	if rec.Confidence != 0.5 {
		t.Errorf("fallback confidence = %v, want exactly 0.5", rec.Confidence)
	}
	if rec.Alternatives != nil {
		t.Errorf("fallback alternatives = %v, want nil", rec.Alternatives)
	}
}

func TestHistoryTermRaisesScore(t *testing.T) {
	cat, err := catalog.New(catalog.DefaultModels())
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}

	ectx := models.ExecutionContext{MaxMemoryMB: 30}

	cold := NewEngine(cat, NewTracker(0, nil))
	before := cold.Recommend(models.CategoryAutomation, models.TaskPriorityMedium, ectx)

	tracker := NewTracker(0, nil)
	tracker.Record("fastlane-rules", models.PerformanceObservation{
		Accuracy:           0.9,
		Success:            true,
		ResourceEfficiency: 0.8,
	})
	warm := NewEngine(cat, tracker)
	after := warm.Recommend(models.CategoryAutomation, models.TaskPriorityMedium, ectx)

	if after.Model.Name != "fastlane-rules" || before.Model.Name != "fastlane-rules" {
		t.Fatalf("expected fastlane-rules both times, got %s then %s", before.Model.Name, after.Model.Name)
	}

	// history term: 0.1 * mean(successRate, resourceEfficiency)
	expectedDelta := 0.1 * (1.0 + 0.8) / 2
	if !approxEqual(after.Score-before.Score, expectedDelta) {
		t.Errorf("history delta = %v, want %v", after.Score-before.Score, expectedDelta)
	}
}

func TestScoreCappedAtOne(t *testing.T) {
	cat, err := catalog.New([]models.AIModelMetadata{{
		Name: "perfect",
		Type: models.ModelTypeClassification,
		Resources: models.ResourceRequirements{
			MemoryMB:      1,
			CPUIntensity:  models.CPULow,
			BatteryImpact: models.BatteryMinimal,
		},
		Suitability:     map[models.TaskCategory]float64{models.CategoryGeneral: 1.0},
		AverageAccuracy: 1.0,
	}})
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}

	tracker := NewTracker(0, nil)
	tracker.Record("perfect", models.PerformanceObservation{
		Accuracy:           1.0,
		Success:            true,
		ResourceEfficiency: 1.0,
	})

	engine := NewEngine(cat, tracker)
	rec := engine.Recommend(models.CategoryGeneral, models.TaskPriorityCritical, models.ExecutionContext{})
	if rec.Score > 1.0 {
		t.Errorf("score = %v, must not exceed 1.0", rec.Score)
	}
	if !approxEqual(rec.Score, 1.0) {
		t.Errorf("score = %v, want capped 1.0", rec.Score)
	}
}

func TestPriorityAccuracyBonus(t *testing.T) {
	engine := newTestEngine(t)
	ectx := models.ExecutionContext{MaxMemoryMB: 30}

	medium := engine.Recommend(models.CategoryAutomation, models.TaskPriorityMedium, ectx)
	high := engine.Recommend(models.CategoryAutomation, models.TaskPriorityHigh, ectx)

	if medium.Model.Name != high.Model.Name {
		t.Fatalf("priority changed the pick: %s vs %s", medium.Model.Name, high.Model.Name)
	}
	expectedBonus := (high.Model.AverageAccuracy - 0.5) * 0.1
	if !approxEqual(high.Score-medium.Score, expectedBonus) {
		t.Errorf("priority bonus = %v, want %v", high.Score-medium.Score, expectedBonus)
	}
}

// twoModelEngine builds an engine over exactly two synthetic models sharing
// the same resource profile.
func twoModelEngine(t *testing.T, alphaSuitability, alphaAccuracy, betaSuitability, betaAccuracy float64) *Engine {
	t.Helper()
	resources := models.ResourceRequirements{
		MemoryMB:      10,
		CPUIntensity:  models.CPULow,
		BatteryImpact: models.BatteryMinimal,
	}
	cat, err := catalog.New([]models.AIModelMetadata{
		{
			Name:            "alpha",
			Type:            models.ModelTypeClassification,
			Resources:       resources,
			Suitability:     map[models.TaskCategory]float64{models.CategoryGeneral: alphaSuitability},
			AverageAccuracy: alphaAccuracy,
		},
		{
			Name:            "beta",
			Type:            models.ModelTypeClassification,
			Resources:       resources,
			Suitability:     map[models.TaskCategory]float64{models.CategoryGeneral: betaSuitability},
			AverageAccuracy: betaAccuracy,
		},
	})
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}
	return NewEngine(cat, NewTracker(0, nil))
}

func scoreFor(t *testing.T, rec *models.ModelRecommendation, name string) float64 {
	t.Helper()
	if rec.Model.Name == name {
		return rec.Score
	}
	for _, alt := range rec.Alternatives {
		if alt.Model.Name == name {
			return alt.Score
		}
	}
	t.Fatalf("model %s missing from recommendation", name)
	return 0
}

func TestConfidenceGrowsWithGap(t *testing.T) {
	// Alpha is fixed; beta's suitability shrinks step by step, widening the
	// top-vs-runner-up gap. With the top score held constant the confidence
	// must never decrease.
	betaSuitabilities := []float64{0.85, 0.65, 0.45, 0.25}

	prevConfidence := -1.0
	prevGap := -1.0
	for _, betaSuitability := range betaSuitabilities {
		engine := twoModelEngine(t, 0.9, 0.8, betaSuitability, 0.8)
		rec := engine.Recommend(models.CategoryGeneral, models.TaskPriorityMedium, models.ExecutionContext{})

		if rec.Model.Name != "alpha" {
			t.Fatalf("top = %s, want alpha (beta suitability %v)", rec.Model.Name, betaSuitability)
		}
		gap := rec.Score - rec.Alternatives[0].Score
		if gap < prevGap {
			t.Fatalf("gap shrank from %v to %v, test setup is wrong", prevGap, gap)
		}
		if rec.Confidence < prevConfidence {
			t.Errorf("confidence fell from %v to %v as the gap grew to %v", prevConfidence, rec.Confidence, gap)
		}
		prevConfidence = rec.Confidence
		prevGap = gap
	}
}

func TestPriorityPreservesAccuracyOrdering(t *testing.T) {
	// Beta leads on suitability, alpha on accuracy. Raising the priority from
	// medium to critical must never lower alpha's score relative to beta's.
	engine := twoModelEngine(t, 0.6, 0.92, 0.9, 0.6)
	ectx := models.ExecutionContext{}

	medium := engine.Recommend(models.CategoryGeneral, models.TaskPriorityMedium, ectx)
	critical := engine.Recommend(models.CategoryGeneral, models.TaskPriorityCritical, ectx)

	mediumLead := scoreFor(t, medium, "alpha") - scoreFor(t, medium, "beta")
	criticalLead := scoreFor(t, critical, "alpha") - scoreFor(t, critical, "beta")
	if criticalLead+1e-9 < mediumLead {
		t.Errorf("alpha's lead over beta fell from %v to %v at critical priority", mediumLead, criticalLead)
	}

	// The bonus scales with accuracy, so here it flips the ordering outright
	if medium.Model.Name != "beta" {
		t.Fatalf("medium top = %s, want beta", medium.Model.Name)
	}
	if critical.Model.Name != "alpha" {
		t.Errorf("critical top = %s, want the higher-accuracy alpha", critical.Model.Name)
	}
}

func TestScoreAndConfidenceBounds(t *testing.T) {
	engine := newTestEngine(t)

	contexts := []models.ExecutionContext{
		{},
		{MaxMemoryMB: 15},
		{MaxMemoryMB: 50, BatteryOptimizationLevel: 2},
		{MaxMemoryMB: 200, BatteryOptimizationLevel: 3},
		{BatteryOptimizationLevel: 5},
	}
	priorities := []models.TaskPriority{
		models.TaskPriorityLow,
		models.TaskPriorityMedium,
		models.TaskPriorityHigh,
		models.TaskPriorityCritical,
	}

	for _, category := range models.AllCategories {
		for _, priority := range priorities {
			for _, ectx := range contexts {
				rec := engine.Recommend(category, priority, ectx)
				if rec.Score < 0 || rec.Score > 1 {
					t.Errorf("%s/%s %+v: score %v out of [0,1]", category, priority, ectx, rec.Score)
				}
				if rec.Confidence < 0 || rec.Confidence > 1 {
					t.Errorf("%s/%s %+v: confidence %v out of [0,1]", category, priority, ectx, rec.Confidence)
				}
				for _, alt := range rec.Alternatives {
					if alt.Score < 0 || alt.Score > 1 {
						t.Errorf("%s/%s: alternative %s score %v out of [0,1]", category, priority, alt.Model.Name, alt.Score)
					}
				}
			}
		}
	}
}

func TestDeterministicRecommendations(t *testing.T) {
	engine := newTestEngine(t)
	ectx := models.ExecutionContext{MaxMemoryMB: 100, BatteryOptimizationLevel: 1}

	first := engine.Recommend(models.CategoryCommunication, models.TaskPriorityHigh, ectx)
	for i := 0; i < 10; i++ {
		next := engine.Recommend(models.CategoryCommunication, models.TaskPriorityHigh, ectx)
		if next.Model.Name != first.Model.Name || !approxEqual(next.Score, first.Score) || !approxEqual(next.Confidence, first.Confidence) {
			t.Fatalf("recommendation changed across identical calls: %+v vs %+v", first, next)
		}
	}
}
