package models

import "time"

// ModelType classifies a catalog model
type ModelType string

const (
	ModelTypeClassification ModelType = "classification"
	ModelTypeNLP            ModelType = "nlp"
	ModelTypeVision         ModelType = "vision"
	ModelTypeRecommendation ModelType = "recommendation"
	ModelTypeForecasting    ModelType = "forecasting"
	ModelTypeGenerative     ModelType = "generative"
)

// CPUIntensity is the ordinal CPU cost of running a model
type CPUIntensity string

const (
	CPULow      CPUIntensity = "low"
	CPUMedium   CPUIntensity = "medium"
	CPUHigh     CPUIntensity = "high"
	CPUVeryHigh CPUIntensity = "veryHigh"
)

// BatteryImpact is the ordinal battery cost of running a model
type BatteryImpact string

const (
	BatteryMinimal  BatteryImpact = "minimal"
	BatteryLow      BatteryImpact = "low"
	BatteryModerate BatteryImpact = "moderate"
	BatteryHigh     BatteryImpact = "high"
)

// Ordinal returns the rank of a battery impact level, used when filtering
// candidates against a battery optimization level. Unknown values rank
// highest so they are filtered most aggressively.
func (b BatteryImpact) Ordinal() int {
	switch b {
	case BatteryMinimal:
		return 0
	case BatteryLow:
		return 1
	case BatteryModerate:
		return 2
	case BatteryHigh:
		return 3
	}
	return 4
}

// ResourceRequirements declares what a model needs to run
type ResourceRequirements struct {
	MemoryMB        float64       `json:"memoryMb" bson:"memoryMb"`
	CPUIntensity    CPUIntensity  `json:"cpuIntensity" bson:"cpuIntensity"`
	BatteryImpact   BatteryImpact `json:"batteryImpact" bson:"batteryImpact"`
	InferenceTimeMs float64       `json:"inferenceTimeMs" bson:"inferenceTimeMs"`
}

// AIModelMetadata is a static catalog entry describing a candidate model.
// Entries are read-only reference data loaded at startup.
type AIModelMetadata struct {
	Name            string                   `json:"name" bson:"name"`
	Type            ModelType                `json:"type" bson:"type"`
	Capabilities    []string                 `json:"capabilities" bson:"capabilities"`
	Resources       ResourceRequirements     `json:"resources" bson:"resources"`
	Suitability     map[TaskCategory]float64 `json:"suitability" bson:"suitability"`
	AverageAccuracy float64                  `json:"averageAccuracy" bson:"averageAccuracy"`
}

// SuitabilityFor returns the model's suitability score for a category,
// falling back to the general score when the category has no entry.
func (m *AIModelMetadata) SuitabilityFor(category TaskCategory) float64 {
	if score, ok := m.Suitability[category]; ok {
		return score
	}
	return m.Suitability[CategoryGeneral]
}

// ModelPerformance is the running aggregate of observed executions for one
// model. Averages are incremental: newAvg = (oldAvg*n + obs) / (n+1).
type ModelPerformance struct {
	ModelName          string    `json:"modelName" bson:"_id"`
	ExecutionCount     int       `json:"executionCount" bson:"executionCount"`
	AverageAccuracy    float64   `json:"averageAccuracy" bson:"averageAccuracy"`
	AverageInferenceMs float64   `json:"averageInferenceMs" bson:"averageInferenceMs"`
	SuccessRate        float64   `json:"successRate" bson:"successRate"`
	ResourceEfficiency float64   `json:"resourceEfficiency" bson:"resourceEfficiency"`
	LastUsed           time.Time `json:"lastUsed" bson:"lastUsed"`
}

// PerformanceObservation is a single execution measurement
type PerformanceObservation struct {
	Accuracy           float64   `json:"accuracy"`
	InferenceMs        float64   `json:"inferenceMs"`
	Success            bool      `json:"success"`
	ResourceEfficiency float64   `json:"resourceEfficiency"`
	ObservedAt         time.Time `json:"observedAt"`
}
