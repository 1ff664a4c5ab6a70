package services

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"taskpilot/internal/database"
	"taskpilot/internal/models"
	"taskpilot/internal/utils"
)

// TaskEvent is broadcast to subscribers on every status change
type TaskEvent struct {
	TaskID    string            `json:"taskId"`
	Name      string            `json:"name"`
	Status    models.TaskStatus `json:"status"`
	Error     string            `json:"error,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// TaskService manages the in-memory task store. Completed and failed tasks
// are additionally persisted to MongoDB when a client is configured.
type TaskService struct {
	tasks       map[string]*models.Task
	mutex       sync.RWMutex
	mongoClient *database.MongoDBClient

	subMutex    sync.Mutex
	subscribers map[chan TaskEvent]struct{}
}

// NewTaskService creates a new task service. mongoClient may be nil for
// memory-only operation.
func NewTaskService(mongoClient *database.MongoDBClient) *TaskService {
	return &TaskService{
		tasks:       make(map[string]*models.Task),
		mongoClient: mongoClient,
		subscribers: make(map[chan TaskEvent]struct{}),
	}
}

// CreateTask creates a new pending task from a request
func (s *TaskService) CreateTask(request models.CreateTaskRequest) (*models.Task, error) {
	priority := request.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	if !priority.Valid() {
		return nil, models.NewAgentError(models.ErrInvalidConfiguration, fmt.Sprintf("unknown priority %q", priority))
	}
	category := request.Category
	if category == "" {
		category = models.CategoryGeneral
	}
	if !category.Valid() {
		return nil, models.NewAgentError(models.ErrInvalidConfiguration, fmt.Sprintf("unknown category %q", category))
	}

	now := time.Now()
	task := &models.Task{
		ID:          utils.GenerateUUID(),
		Name:        request.Name,
		Description: request.Description,
		Priority:    priority,
		Category:    category,
		Status:      models.TaskStatusPending,
		Metadata:    request.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mutex.Lock()
	s.tasks[task.ID] = task
	s.mutex.Unlock()

	s.publish(task)
	return copyTask(task), nil
}

// GetTask retrieves a task by ID, falling back to MongoDB for tasks that
// have been evicted from memory.
func (s *TaskService) GetTask(taskID string) (*models.Task, error) {
	s.mutex.RLock()
	task, exists := s.tasks[taskID]
	s.mutex.RUnlock()

	if exists {
		return copyTask(task), nil
	}

	if s.mongoClient != nil {
		stored, err := s.mongoClient.GetTask(taskID)
		if err != nil {
			return nil, models.WrapAgentError(models.ErrDataPipelineError, "task lookup failed", err)
		}
		if stored != nil {
			return stored, nil
		}
	}

	return nil, fmt.Errorf("task not found: %s", taskID)
}

// ListTasks returns all in-memory tasks sorted by priority weight then
// creation time.
func (s *TaskService) ListTasks() []*models.Task {
	s.mutex.RLock()
	out := make([]*models.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		out = append(out, copyTask(task))
	}
	s.mutex.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority.Weight() != out[j].Priority.Weight() {
			return out[i].Priority.Weight() > out[j].Priority.Weight()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// UpdateTaskStatus moves a task through the lifecycle state machine.
// Backward or unknown transitions are rejected.
func (s *TaskService) UpdateTaskStatus(taskID string, status models.TaskStatus) error {
	s.mutex.Lock()
	task, exists := s.tasks[taskID]
	if !exists {
		s.mutex.Unlock()
		return fmt.Errorf("task not found: %s", taskID)
	}

	if !models.CanTransition(task.Status, status) {
		from := task.Status
		s.mutex.Unlock()
		return models.NewAgentError(models.ErrInvalidConfiguration,
			fmt.Sprintf("invalid task transition %s -> %s", from, status))
	}

	task.Status = status
	task.UpdatedAt = time.Now()
	if status.IsTerminal() {
		completed := task.UpdatedAt
		task.CompletedAt = &completed
	}
	snapshot := copyTask(task)
	s.mutex.Unlock()

	s.publish(snapshot)
	s.persistIfTerminal(snapshot)
	return nil
}

// SetTaskError marks a task as failed with an error message
func (s *TaskService) SetTaskError(taskID string, taskErr error) error {
	s.mutex.Lock()
	task, exists := s.tasks[taskID]
	if !exists {
		s.mutex.Unlock()
		return fmt.Errorf("task not found: %s", taskID)
	}

	if !models.CanTransition(task.Status, models.TaskStatusFailed) {
		from := task.Status
		s.mutex.Unlock()
		return models.NewAgentError(models.ErrInvalidConfiguration,
			fmt.Sprintf("invalid task transition %s -> %s", from, models.TaskStatusFailed))
	}

	task.Status = models.TaskStatusFailed
	task.Error = taskErr.Error()
	task.UpdatedAt = time.Now()
	completed := task.UpdatedAt
	task.CompletedAt = &completed
	snapshot := copyTask(task)
	s.mutex.Unlock()

	s.publish(snapshot)
	s.persistIfTerminal(snapshot)
	return nil
}

// SetAssignedModel records which model the executor picked for a task
func (s *TaskService) SetAssignedModel(taskID, modelName string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	task, exists := s.tasks[taskID]
	if !exists {
		return fmt.Errorf("task not found: %s", taskID)
	}
	task.AssignedModel = modelName
	task.UpdatedAt = time.Now()
	return nil
}

// CancelTask cancels a pending or in-progress task
func (s *TaskService) CancelTask(taskID string) error {
	return s.UpdateTaskStatus(taskID, models.TaskStatusCancelled)
}

// DeleteTask removes a task from memory (after it has been persisted)
func (s *TaskService) DeleteTask(taskID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.tasks, taskID)
}

// Subscribe registers a task-event channel. The returned cancel function
// must be called when the subscriber goes away.
func (s *TaskService) Subscribe() (<-chan TaskEvent, func()) {
	ch := make(chan TaskEvent, 16)

	s.subMutex.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMutex.Unlock()

	cancel := func() {
		s.subMutex.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.subMutex.Unlock()
	}
	return ch, cancel
}

// publish fans a status change out to subscribers. Slow subscribers drop
// events rather than block the task store.
func (s *TaskService) publish(task *models.Task) {
	event := TaskEvent{
		TaskID:    task.ID,
		Name:      task.Name,
		Status:    task.Status,
		Error:     task.Error,
		Timestamp: task.UpdatedAt,
	}

	s.subMutex.Lock()
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
	s.subMutex.Unlock()
}

// persistIfTerminal writes terminal tasks to MongoDB
func (s *TaskService) persistIfTerminal(task *models.Task) {
	if s.mongoClient == nil || !task.Status.IsTerminal() {
		return
	}
	if err := s.mongoClient.SaveTask(task); err != nil {
		log.Printf("WARNING: Failed to persist task %s: %v", task.ID, err)
	}
}

// copyTask returns a shallow copy so callers cannot mutate store state
func copyTask(task *models.Task) *models.Task {
	copied := *task
	if task.Metadata != nil {
		copied.Metadata = make(map[string]string, len(task.Metadata))
		for k, v := range task.Metadata {
			copied.Metadata[k] = v
		}
	}
	return &copied
}
