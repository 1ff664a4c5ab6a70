package recommend

import (
	"fmt"
	"sort"

	"taskpilot/internal/catalog"
	"taskpilot/internal/models"
	"taskpilot/internal/utils"
)

// Scoring weights. The four terms sum to 1.0; when a model has no recorded
// history the history term is omitted rather than substituted.
const (
	weightSuitability = 0.4
	weightAccuracy    = 0.3
	weightResources   = 0.2
	weightHistory     = 0.1

	// Confidence blends absolute score with the gap over the runner-up
	confidenceScoreWeight = 0.7
	confidenceGapWeight   = 0.3

	// Fixed confidence for the degenerate empty-viable-set fallback
	fallbackConfidence = 0.5

	maxAlternatives = 3
)

var cpuScores = map[models.CPUIntensity]float64{
	models.CPULow:      1.0,
	models.CPUMedium:   0.7,
	models.CPUHigh:     0.4,
	models.CPUVeryHigh: 0.2,
}

var batteryScores = map[models.BatteryImpact]float64{
	models.BatteryMinimal:  1.0,
	models.BatteryLow:      0.8,
	models.BatteryModerate: 0.5,
	models.BatteryHigh:     0.2,
}

// Engine selects the best-fit model for a task given device constraints.
// Recommend is a pure function over the catalog, the performance tracker
// snapshot and the execution context.
type Engine struct {
	catalog *catalog.Catalog
	tracker *Tracker
}

// NewEngine creates a recommendation engine
func NewEngine(cat *catalog.Catalog, tracker *Tracker) *Engine {
	return &Engine{catalog: cat, tracker: tracker}
}

// batteryThreshold maps a battery optimization level to the maximum allowed
// battery impact ordinal. Levels 0-1 do not filter; 2 allows up to moderate;
// 3 allows up to low; anything above only minimal.
func batteryThreshold(level int) int {
	switch {
	case level <= 1:
		return models.BatteryHigh.Ordinal()
	case level == 2:
		return models.BatteryModerate.Ordinal()
	case level == 3:
		return models.BatteryLow.Ordinal()
	default:
		return models.BatteryMinimal.Ordinal()
	}
}

// viableModels filters the catalog against the execution context
func (e *Engine) viableModels(ectx models.ExecutionContext) []*models.AIModelMetadata {
	threshold := batteryThreshold(ectx.BatteryOptimizationLevel)

	var viable []*models.AIModelMetadata
	all := e.catalog.Models()
	for i := range all {
		m := &all[i]
		if ectx.MaxMemoryMB > 0 && m.Resources.MemoryMB > ectx.MaxMemoryMB {
			continue
		}
		if m.Resources.BatteryImpact.Ordinal() > threshold {
			continue
		}
		viable = append(viable, m)
	}
	return viable
}

// resourceScore is the unweighted mean of the normalized memory, CPU and
// battery sub-scores.
func resourceScore(m *models.AIModelMetadata) float64 {
	memory := utils.Clamp01(1 - m.Resources.MemoryMB/100)
	cpu := cpuScores[m.Resources.CPUIntensity]
	battery := batteryScores[m.Resources.BatteryImpact]
	return (memory + cpu + battery) / 3
}

// scoreModel computes the weighted score for one candidate
func (e *Engine) scoreModel(m *models.AIModelMetadata, category models.TaskCategory, priority models.TaskPriority) float64 {
	score := weightSuitability*m.SuitabilityFor(category) +
		weightAccuracy*m.AverageAccuracy +
		weightResources*resourceScore(m)

	if e.tracker != nil {
		if perf := e.tracker.Get(m.Name); perf != nil && perf.ExecutionCount > 0 {
			historyScore := (perf.SuccessRate + perf.ResourceEfficiency) / 2
			score += weightHistory * historyScore
		}
	}

	// Critical and high priority tasks bias toward accuracy over efficiency
	if priority == models.TaskPriorityCritical || priority == models.TaskPriorityHigh {
		score += (m.AverageAccuracy - 0.5) * 0.1
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// Recommend picks the best-fit model for a task shape under the given
// execution context. It never errors: an empty viable set falls back to the
// baseline model with fixed confidence.
func (e *Engine) Recommend(category models.TaskCategory, priority models.TaskPriority, ectx models.ExecutionContext) *models.ModelRecommendation {
	viable := e.viableModels(ectx)
	if len(viable) == 0 {
		baseline := e.catalog.Baseline()
		return &models.ModelRecommendation{
			Model:      baseline,
			Score:      fallbackConfidence,
			Confidence: fallbackConfidence,
			Justification: fmt.Sprintf(
				"no catalog model fits within %.0fMB at battery optimization level %d; falling back to baseline %s",
				ectx.MaxMemoryMB, ectx.BatteryOptimizationLevel, baseline.Name),
			Alternatives:        nil,
			ExpectedPerformance: expectedPerformance(baseline),
			Fallback:            true,
		}
	}

	scored := make([]models.ScoredModel, 0, len(viable))
	for _, m := range viable {
		scored = append(scored, models.ScoredModel{
			Model: m,
			Score: e.scoreModel(m, category, priority),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Model.Name < scored[j].Model.Name
	})

	top := scored[0]
	alternatives := scored[1:]
	if len(alternatives) > maxAlternatives {
		alternatives = alternatives[:maxAlternatives]
	}

	confidence := top.Score
	if len(alternatives) > 0 {
		gap := top.Score - alternatives[0].Score
		confidence = top.Score*confidenceScoreWeight + gap*confidenceGapWeight
		if confidence > 1.0 {
			confidence = 1.0
		}
	}

	return &models.ModelRecommendation{
		Model:      top.Model,
		Score:      top.Score,
		Confidence: confidence,
		Justification: fmt.Sprintf(
			"%s selected for %s/%s task: suitability %.2f, accuracy %.2f, resource score %.2f, final score %.2f, confidence %.2f (%d alternatives considered)",
			top.Model.Name, category, priority,
			top.Model.SuitabilityFor(category), top.Model.AverageAccuracy, resourceScore(top.Model),
			top.Score, confidence, len(alternatives)),
		Alternatives:        alternatives,
		ExpectedPerformance: expectedPerformance(top.Model),
	}
}

// Baseline exposes the catalog's designated fallback model
func (e *Engine) Baseline() *models.AIModelMetadata {
	return e.catalog.Baseline()
}

// expectedPerformance projects runtime behavior from static metadata
func expectedPerformance(m *models.AIModelMetadata) models.ExpectedPerformance {
	return models.ExpectedPerformance{
		Accuracy:             m.AverageAccuracy,
		InferenceTimeSeconds: m.Resources.InferenceTimeMs / 1000,
		ResourceUsage:        utils.Clamp01(1 - resourceScore(m)),
		BatteryImpact:        m.Resources.BatteryImpact,
	}
}
