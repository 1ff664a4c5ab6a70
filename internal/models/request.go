package models

// CreateTaskRequest represents the request to create a task
type CreateTaskRequest struct {
	Name        string            `json:"name" binding:"required"`
	Description string            `json:"description"`
	Priority    TaskPriority      `json:"priority"` // defaults to medium
	Category    TaskCategory      `json:"category"` // defaults to general
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// ParseIntentRequest represents the request to parse a natural language command
type ParseIntentRequest struct {
	Text string `json:"text" binding:"required"`
}

// RecommendationRequest asks the engine to pick a model for a task shape
type RecommendationRequest struct {
	Category                 TaskCategory `json:"category" binding:"required"`
	Priority                 TaskPriority `json:"priority" binding:"required"`
	MaxMemoryMB              float64      `json:"maxMemoryMb"`
	BatteryOptimizationLevel int          `json:"batteryOptimizationLevel"`
}

// RecordPerformanceRequest records one execution observation for a model
type RecordPerformanceRequest struct {
	Accuracy           float64 `json:"accuracy" binding:"min=0,max=1"`
	InferenceMs        float64 `json:"inferenceMs" binding:"min=0"`
	Success            bool    `json:"success"`
	ResourceEfficiency float64 `json:"resourceEfficiency" binding:"min=0,max=1"`
}

// ExecuteWorkflowRequest represents the request to run a workflow
type ExecuteWorkflowRequest struct {
	Name                     string              `json:"name"`
	Tasks                    []CreateTaskRequest `json:"tasks" binding:"required,min=1"`
	MaxMemoryMB              float64             `json:"maxMemoryMb"`
	BatteryOptimizationLevel int                 `json:"batteryOptimizationLevel"`
}

// WorkflowRunResponse represents the response when starting a workflow run
type WorkflowRunResponse struct {
	RunID  string `json:"runId"`
	Status string `json:"status"` // "pending", "inProgress", "completed", "failed"
}

// WorkflowStatusResponse represents the response when polling a workflow run
type WorkflowStatusResponse struct {
	RunID     string      `json:"runId"`
	Status    string      `json:"status"`
	Result    interface{} `json:"result,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// CreateScheduleRequest opts a recurring workflow into the cron scheduler.
// TriggerTime is an optional RFC3339 override; without it the workflow runs
// daily at 06:00:00.
type CreateScheduleRequest struct {
	Name        string                 `json:"name" binding:"required"`
	Workflow    ExecuteWorkflowRequest `json:"workflow" binding:"required"`
	TriggerTime *string                `json:"triggerTime,omitempty"`
	Email       string                 `json:"email,omitempty"` // optional performance report recipient
}

// AuthTokenRequest asks for a device JWT
type AuthTokenRequest struct {
	DeviceID   string `json:"deviceId" binding:"required"`
	DeviceName string `json:"deviceName"`
}

// AuthTokenResponse carries the issued JWT
type AuthTokenResponse struct {
	Token string `json:"token"`
}
