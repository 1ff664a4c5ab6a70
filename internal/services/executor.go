package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"taskpilot/internal/metrics"
	"taskpilot/internal/models"
	"taskpilot/internal/recommend"
	"taskpilot/internal/utils"
)

const (
	maxAttempts    = 3
	retryBaseDelay = 100 * time.Millisecond
)

// TaskOutcome summarizes one executed task within a workflow run
type TaskOutcome struct {
	TaskID     string            `json:"taskId"`
	Name       string            `json:"name"`
	ModelUsed  string            `json:"modelUsed"`
	Status     models.TaskStatus `json:"status"`
	Attempts   int               `json:"attempts"`
	FailedOver bool              `json:"failedOver"`
	DurationMs float64           `json:"durationMs"`
	Output     string            `json:"output,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// WorkflowResult is the final result of a workflow run
type WorkflowResult struct {
	RunID       string        `json:"runId"`
	Name        string        `json:"name"`
	Tasks       []TaskOutcome `json:"tasks"`
	Completed   int           `json:"completed"`
	Failed      int           `json:"failed"`
	Cancelled   int           `json:"cancelled"`
	StartedAt   time.Time     `json:"startedAt"`
	FinishedAt  time.Time     `json:"finishedAt"`
}

// WorkflowRun tracks an asynchronous workflow execution
type WorkflowRun struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Status    models.TaskStatus `json:"status"`
	Result    *WorkflowResult   `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Executor runs workflows: for each task it picks a model, executes it with
// retry and failover, and records the observation.
type Executor struct {
	engine      *recommend.Engine
	tracker     *recommend.Tracker
	taskService *TaskService
	runner      TaskRunner
	influx      *metrics.InfluxService // optional

	runsMutex sync.RWMutex
	runs      map[string]*WorkflowRun
}

// NewExecutor creates a workflow executor. influx may be nil.
func NewExecutor(engine *recommend.Engine, tracker *recommend.Tracker, taskService *TaskService, runner TaskRunner, influx *metrics.InfluxService) *Executor {
	return &Executor{
		engine:      engine,
		tracker:     tracker,
		taskService: taskService,
		runner:      runner,
		influx:      influx,
		runs:        make(map[string]*WorkflowRun),
	}
}

// StartRun registers a workflow run and executes it in the background
func (e *Executor) StartRun(request models.ExecuteWorkflowRequest) *WorkflowRun {
	now := time.Now()
	run := &WorkflowRun{
		ID:        utils.GenerateUUID(),
		Name:      request.Name,
		Status:    models.TaskStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	e.runsMutex.Lock()
	e.runs[run.ID] = run
	e.runsMutex.Unlock()

	go func() {
		e.setRunStatus(run.ID, models.TaskStatusInProgress, nil, nil)
		result, err := e.ExecuteWorkflow(context.Background(), request)
		if err != nil {
			e.setRunStatus(run.ID, models.TaskStatusFailed, nil, err)
			return
		}
		e.setRunStatus(run.ID, models.TaskStatusCompleted, result, nil)
	}()

	return run
}

// GetRun retrieves a workflow run by ID
func (e *Executor) GetRun(runID string) (*WorkflowRun, error) {
	e.runsMutex.RLock()
	defer e.runsMutex.RUnlock()

	run, exists := e.runs[runID]
	if !exists {
		return nil, fmt.Errorf("workflow run not found: %s", runID)
	}
	snapshot := *run
	return &snapshot, nil
}

func (e *Executor) setRunStatus(runID string, status models.TaskStatus, result *WorkflowResult, runErr error) {
	e.runsMutex.Lock()
	defer e.runsMutex.Unlock()

	run, exists := e.runs[runID]
	if !exists {
		return
	}
	run.Status = status
	run.Result = result
	if runErr != nil {
		run.Error = runErr.Error()
	}
	run.UpdatedAt = time.Now()
}

// ExecuteWorkflow runs the workflow's tasks sequentially. Cancellation via
// ctx stops the loop between tasks; remaining tasks are marked cancelled.
func (e *Executor) ExecuteWorkflow(ctx context.Context, request models.ExecuteWorkflowRequest) (*WorkflowResult, error) {
	if len(request.Tasks) == 0 {
		return nil, models.NewAgentError(models.ErrInvalidConfiguration, "workflow has no tasks")
	}

	ectx := models.ExecutionContext{
		MaxMemoryMB:              request.MaxMemoryMB,
		BatteryOptimizationLevel: request.BatteryOptimizationLevel,
	}

	result := &WorkflowResult{
		RunID:     utils.GenerateUUID(),
		Name:      request.Name,
		StartedAt: time.Now(),
	}

	cancelled := false
	for _, taskRequest := range request.Tasks {
		task, err := e.taskService.CreateTask(taskRequest)
		if err != nil {
			return nil, err
		}

		if cancelled || ctx.Err() != nil {
			cancelled = true
			_ = e.taskService.CancelTask(task.ID)
			result.Tasks = append(result.Tasks, TaskOutcome{
				TaskID: task.ID,
				Name:   task.Name,
				Status: models.TaskStatusCancelled,
			})
			result.Cancelled++
			continue
		}

		outcome := e.executeTask(ctx, task, ectx)
		result.Tasks = append(result.Tasks, outcome)
		switch outcome.Status {
		case models.TaskStatusCompleted:
			result.Completed++
		case models.TaskStatusCancelled:
			result.Cancelled++
			cancelled = true
		default:
			result.Failed++
		}
	}

	result.FinishedAt = time.Now()
	return result, nil
}

// executeTask runs a single task: recommend, retry, failover, record
func (e *Executor) executeTask(ctx context.Context, task *models.Task, ectx models.ExecutionContext) TaskOutcome {
	outcome := TaskOutcome{TaskID: task.ID, Name: task.Name}

	recommendation := e.engine.Recommend(task.Category, task.Priority, ectx)
	model := recommendation.Model
	outcome.ModelUsed = model.Name

	_ = e.taskService.SetAssignedModel(task.ID, model.Name)
	if err := e.taskService.UpdateTaskStatus(task.ID, models.TaskStatusInProgress); err != nil {
		outcome.Status = models.TaskStatusFailed
		outcome.Error = err.Error()
		return outcome
	}

	start := time.Now()
	runResult, attempts, err := e.runWithRetry(ctx, task, model)

	// Failover: one attempt on the baseline model before giving up, unless
	// the recommendation already was the baseline fallback.
	if err != nil && !errors.Is(err, context.Canceled) && !recommendation.Fallback {
		baseline := e.engine.Baseline()
		if baseline != nil && baseline.Name != model.Name {
			log.Printf("[EXECUTOR] Task %s failed on %s after %d attempts, failing over to %s: %v",
				task.ID, model.Name, attempts, baseline.Name, err)
			failoverErr := models.WrapAgentError(models.ErrFailoverRequired,
				fmt.Sprintf("primary model %s exhausted retries", model.Name), err)
			log.Printf("[EXECUTOR] %v", failoverErr)

			// The failover budget is a single run, no retry cycle
			attempts++
			runResult, err = e.runner.Run(ctx, task, baseline)
			if err == nil {
				model = baseline
				outcome.ModelUsed = baseline.Name
				outcome.FailedOver = true
				_ = e.taskService.SetAssignedModel(task.ID, baseline.Name)
			}
		}
	}

	outcome.Attempts = attempts
	outcome.DurationMs = float64(time.Since(start).Milliseconds())

	if errors.Is(err, context.Canceled) {
		_ = e.taskService.CancelTask(task.ID)
		outcome.Status = models.TaskStatusCancelled
		return outcome
	}

	success := err == nil
	e.recordObservation(model, runResult, outcome.DurationMs, success)

	if success {
		_ = e.taskService.UpdateTaskStatus(task.ID, models.TaskStatusCompleted)
		outcome.Status = models.TaskStatusCompleted
		outcome.Output = runResult.Output
	} else {
		_ = e.taskService.SetTaskError(task.ID, err)
		outcome.Status = models.TaskStatusFailed
		outcome.Error = err.Error()
	}

	if e.influx != nil {
		stored, getErr := e.taskService.GetTask(task.ID)
		if getErr == nil {
			if writeErr := e.influx.WriteTaskExecution(ctx, stored, model.Name, outcome.DurationMs, success, attempts); writeErr != nil {
				log.Printf("WARNING: Failed to write execution metrics for task %s: %v", task.ID, writeErr)
			}
		}
	}

	return outcome
}

// runWithRetry wraps the runner with up to maxAttempts tries and
// exponential backoff (100ms, 200ms, 400ms).
func (e *Executor) runWithRetry(ctx context.Context, task *models.Task, model *models.AIModelMetadata) (*RunResult, int, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay << (attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, attempt, ctx.Err()
			}
		}

		result, err := e.runner.Run(ctx, task, model)
		if err == nil {
			return result, attempt + 1, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, attempt + 1, err
		}
		lastErr = err
	}
	return nil, maxAttempts, lastErr
}

// recordObservation folds an execution into the performance tracker. The
// simulated runner has no measured accuracy, so the model's static accuracy
// stands in on success.
func (e *Executor) recordObservation(model *models.AIModelMetadata, runResult *RunResult, durationMs float64, success bool) {
	obs := models.PerformanceObservation{
		Success:     success,
		InferenceMs: durationMs,
		ObservedAt:  time.Now(),
	}
	if success {
		obs.Accuracy = model.AverageAccuracy
		if runResult != nil && runResult.InferenceMs > 0 {
			obs.InferenceMs = runResult.InferenceMs
		}
	}
	obs.ResourceEfficiency = 1 - utils.Clamp01(model.Resources.MemoryMB/100)

	perf := e.tracker.Record(model.Name, obs)

	if e.influx != nil {
		if err := e.influx.WriteModelPerformance(context.Background(), perf); err != nil {
			log.Printf("WARNING: Failed to write model performance metrics for %s: %v", model.Name, err)
		}
	}
}

// Baseline exposes the engine's catalog baseline for failover
func (e *Executor) Baseline() *models.AIModelMetadata {
	return e.engine.Baseline()
}
