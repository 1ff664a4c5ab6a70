package models

// ExecutionContext supplies the device resource constraints the engine
// filters candidates against.
type ExecutionContext struct {
	MaxMemoryMB              float64 `json:"maxMemoryMb"`
	BatteryOptimizationLevel int     `json:"batteryOptimizationLevel"` // 0-3, higher = stricter
}

// ScoredModel pairs a catalog model with its computed score
type ScoredModel struct {
	Model *AIModelMetadata `json:"model"`
	Score float64          `json:"score"`
}

// ExpectedPerformance is the projection derived from the chosen model's
// static metadata, not from history.
type ExpectedPerformance struct {
	Accuracy             float64       `json:"accuracy"`
	InferenceTimeSeconds float64       `json:"inferenceTimeSeconds"`
	ResourceUsage        float64       `json:"resourceUsage"` // normalized, 0 = free, 1 = saturating
	BatteryImpact        BatteryImpact `json:"batteryImpact"`
}

// ModelRecommendation is the engine's answer for one task
type ModelRecommendation struct {
	Model               *AIModelMetadata    `json:"model"`
	Score               float64             `json:"score"`
	Confidence          float64             `json:"confidence"`
	Justification       string              `json:"justification"`
	Alternatives        []ScoredModel       `json:"alternatives"`
	ExpectedPerformance ExpectedPerformance `json:"expectedPerformance"`
	Fallback            bool                `json:"fallback"` // true when the viable set was empty
}
