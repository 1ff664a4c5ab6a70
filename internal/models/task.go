package models

import "time"

// TaskStatus represents the status of a task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "inProgress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// allowedTransitions encodes the monotonic task lifecycle:
// pending -> inProgress -> {completed, failed, cancelled}.
// Terminal states have no outgoing transitions.
var allowedTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusPending:    {TaskStatusInProgress, TaskStatusCancelled},
	TaskStatusInProgress: {TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled},
}

// CanTransition reports whether a task may move from one status to another
func CanTransition(from, to TaskStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status is an absorbing state
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed || s == TaskStatusCancelled
}

// TaskPriority represents the priority of a task
type TaskPriority string

const (
	TaskPriorityLow      TaskPriority = "low"
	TaskPriorityMedium   TaskPriority = "medium"
	TaskPriorityHigh     TaskPriority = "high"
	TaskPriorityCritical TaskPriority = "critical"
)

// Weight returns the sort weight of a priority (higher sorts first)
func (p TaskPriority) Weight() int {
	switch p {
	case TaskPriorityLow:
		return 1
	case TaskPriorityMedium:
		return 2
	case TaskPriorityHigh:
		return 3
	case TaskPriorityCritical:
		return 4
	}
	return 0
}

// Valid reports whether the priority is one of the known values
func (p TaskPriority) Valid() bool {
	return p.Weight() > 0
}

// TaskCategory represents the category of a task
type TaskCategory string

const (
	CategoryGeneral       TaskCategory = "general"
	CategoryCommunication TaskCategory = "communication"
	CategoryProductivity  TaskCategory = "productivity"
	CategoryAutomation    TaskCategory = "automation"
	CategoryAnalytics     TaskCategory = "analytics"
	CategoryLearning      TaskCategory = "learning"
)

// AllCategories lists every task category
var AllCategories = []TaskCategory{
	CategoryGeneral,
	CategoryCommunication,
	CategoryProductivity,
	CategoryAutomation,
	CategoryAnalytics,
	CategoryLearning,
}

// Valid reports whether the category is one of the known values
func (c TaskCategory) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Task represents a unit of automation work. Category and priority are
// immutable after creation; status moves only through allowedTransitions.
type Task struct {
	ID            string            `json:"id" bson:"_id"`
	Name          string            `json:"name" bson:"name"`
	Description   string            `json:"description" bson:"description"`
	Priority      TaskPriority      `json:"priority" bson:"priority"`
	Category      TaskCategory      `json:"category" bson:"category"`
	Status        TaskStatus        `json:"status" bson:"status"`
	Metadata      map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`
	Error         string            `json:"error,omitempty" bson:"error,omitempty"`
	AssignedModel string            `json:"assignedModel,omitempty" bson:"assignedModel,omitempty"`
	CreatedAt     time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt" bson:"updatedAt"`
	CompletedAt   *time.Time        `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}
