package catalog

import "taskpilot/internal/models"

// defaultModels is the built-in catalog, mirroring the model lineup shipped
// with the mobile agent. micro-intent is the baseline (lowest memory).
var defaultModels = []models.AIModelMetadata{
	{
		Name:         "micro-intent",
		Type:         models.ModelTypeClassification,
		Capabilities: []string{"intent-classification", "keyword-extraction"},
		Resources: models.ResourceRequirements{
			MemoryMB:        12,
			CPUIntensity:    models.CPULow,
			BatteryImpact:   models.BatteryMinimal,
			InferenceTimeMs: 40,
		},
		Suitability: map[models.TaskCategory]float64{
			models.CategoryGeneral:       0.70,
			models.CategoryCommunication: 0.85,
			models.CategoryProductivity:  0.60,
			models.CategoryAutomation:    0.55,
			models.CategoryAnalytics:     0.40,
			models.CategoryLearning:      0.45,
		},
		AverageAccuracy: 0.72,
	},
	{
		Name:         "fastlane-rules",
		Type:         models.ModelTypeRecommendation,
		Capabilities: []string{"rule-matching", "action-ranking"},
		Resources: models.ResourceRequirements{
			MemoryMB:        25,
			CPUIntensity:    models.CPULow,
			BatteryImpact:   models.BatteryLow,
			InferenceTimeMs: 60,
		},
		Suitability: map[models.TaskCategory]float64{
			models.CategoryGeneral:       0.75,
			models.CategoryCommunication: 0.65,
			models.CategoryProductivity:  0.80,
			models.CategoryAutomation:    0.90,
			models.CategoryAnalytics:     0.55,
			models.CategoryLearning:      0.50,
		},
		AverageAccuracy: 0.78,
	},
	{
		Name:         "task-ranker",
		Type:         models.ModelTypeForecasting,
		Capabilities: []string{"priority-forecasting", "schedule-optimization"},
		Resources: models.ResourceRequirements{
			MemoryMB:        38,
			CPUIntensity:    models.CPUMedium,
			BatteryImpact:   models.BatteryModerate,
			InferenceTimeMs: 120,
		},
		Suitability: map[models.TaskCategory]float64{
			models.CategoryGeneral:       0.70,
			models.CategoryCommunication: 0.50,
			models.CategoryProductivity:  0.85,
			models.CategoryAutomation:    0.80,
			models.CategoryAnalytics:     0.75,
			models.CategoryLearning:      0.60,
		},
		AverageAccuracy: 0.84,
	},
	{
		Name:         "deep-context",
		Type:         models.ModelTypeNLP,
		Capabilities: []string{"context-understanding", "summarization", "entity-extraction"},
		Resources: models.ResourceRequirements{
			MemoryMB:        85,
			CPUIntensity:    models.CPUHigh,
			BatteryImpact:   models.BatteryHigh,
			InferenceTimeMs: 300,
		},
		Suitability: map[models.TaskCategory]float64{
			models.CategoryGeneral:       0.80,
			models.CategoryCommunication: 0.90,
			models.CategoryProductivity:  0.70,
			models.CategoryAutomation:    0.75,
			models.CategoryAnalytics:     0.85,
			models.CategoryLearning:      0.80,
		},
		AverageAccuracy: 0.92,
	},
	{
		Name:         "vision-capture",
		Type:         models.ModelTypeVision,
		Capabilities: []string{"screenshot-analysis", "document-scanning"},
		Resources: models.ResourceRequirements{
			MemoryMB:        60,
			CPUIntensity:    models.CPUVeryHigh,
			BatteryImpact:   models.BatteryHigh,
			InferenceTimeMs: 450,
		},
		Suitability: map[models.TaskCategory]float64{
			models.CategoryGeneral:       0.50,
			models.CategoryCommunication: 0.30,
			models.CategoryProductivity:  0.65,
			models.CategoryAutomation:    0.30,
			models.CategoryAnalytics:     0.80,
			models.CategoryLearning:      0.55,
		},
		AverageAccuracy: 0.88,
	},
	{
		Name:         "gen-assist",
		Type:         models.ModelTypeGenerative,
		Capabilities: []string{"text-generation", "reply-drafting", "explanation"},
		Resources: models.ResourceRequirements{
			MemoryMB:        120,
			CPUIntensity:    models.CPUVeryHigh,
			BatteryImpact:   models.BatteryHigh,
			InferenceTimeMs: 800,
		},
		Suitability: map[models.TaskCategory]float64{
			models.CategoryGeneral:       0.80,
			models.CategoryCommunication: 0.95,
			models.CategoryProductivity:  0.70,
			models.CategoryAutomation:    0.65,
			models.CategoryAnalytics:     0.60,
			models.CategoryLearning:      0.90,
		},
		AverageAccuracy: 0.90,
	},
}

// DefaultModels returns a copy of the built-in catalog entries
func DefaultModels() []models.AIModelMetadata {
	out := make([]models.AIModelMetadata, len(defaultModels))
	copy(out, defaultModels)
	return out
}
