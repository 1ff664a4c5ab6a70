package services

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"taskpilot/internal/models"
)

// RunResult is the output of one task execution attempt
type RunResult struct {
	Output      string  `json:"output,omitempty"`
	InferenceMs float64 `json:"inferenceMs"`
}

// TaskRunner executes a single task against a chosen model
type TaskRunner interface {
	Run(ctx context.Context, task *models.Task, model *models.AIModelMetadata) (*RunResult, error)
}

// SimulatedRunner stands in for on-device model execution: a fixed delay
// plus a random failure injection at the configured rate.
type SimulatedRunner struct {
	delay       time.Duration
	failureRate float64

	mutex sync.Mutex
	rng   *rand.Rand
}

// NewSimulatedRunner creates a simulated runner. seed fixes the failure
// sequence, which tests rely on.
func NewSimulatedRunner(delay time.Duration, failureRate float64, seed int64) *SimulatedRunner {
	return &SimulatedRunner{
		delay:       delay,
		failureRate: failureRate,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// NewDefaultSimulatedRunner creates the standard 100ms / 10%-failure runner
func NewDefaultSimulatedRunner() *SimulatedRunner {
	return NewSimulatedRunner(100*time.Millisecond, 0.1, time.Now().UnixNano())
}

// Run sleeps for the configured delay and fails at the injection rate
func (r *SimulatedRunner) Run(ctx context.Context, task *models.Task, model *models.AIModelMetadata) (*RunResult, error) {
	select {
	case <-time.After(r.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	r.mutex.Lock()
	failed := r.rng.Float64() < r.failureRate
	r.mutex.Unlock()

	if failed {
		return nil, models.NewAgentError(models.ErrTaskExecutionFailed,
			fmt.Sprintf("simulated execution failure for task %s on model %s", task.ID, model.Name))
	}

	return &RunResult{
		Output:      fmt.Sprintf("task %q completed by %s", task.Name, model.Name),
		InferenceMs: model.Resources.InferenceTimeMs,
	}, nil
}
