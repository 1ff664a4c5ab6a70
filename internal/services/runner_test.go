package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskpilot/internal/catalog"
	"taskpilot/internal/models"
)

func TestSimulatedRunnerNeverFailsAtZeroRate(t *testing.T) {
	runner := NewSimulatedRunner(time.Millisecond, 0, 1)
	model := &catalog.DefaultModels()[0]
	task := &models.Task{ID: "t1", Name: "x"}

	for i := 0; i < 20; i++ {
		result, err := runner.Run(context.Background(), task, model)
		if err != nil {
			t.Fatalf("run %d failed at zero failure rate: %v", i, err)
		}
		if result.InferenceMs != model.Resources.InferenceTimeMs {
			t.Errorf("inference ms = %v, want %v", result.InferenceMs, model.Resources.InferenceTimeMs)
		}
	}
}

func TestSimulatedRunnerAlwaysFailsAtFullRate(t *testing.T) {
	runner := NewSimulatedRunner(time.Millisecond, 1, 1)
	model := &catalog.DefaultModels()[0]
	task := &models.Task{ID: "t1", Name: "x"}

	_, err := runner.Run(context.Background(), task, model)
	if models.CodeOf(err) != models.ErrTaskExecutionFailed {
		t.Errorf("error code = %q, want taskExecutionFailed", models.CodeOf(err))
	}
}

func TestSimulatedRunnerHonorsCancellation(t *testing.T) {
	runner := NewSimulatedRunner(time.Minute, 0, 1)
	model := &catalog.DefaultModels()[0]
	task := &models.Task{ID: "t1", Name: "x"}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := runner.Run(ctx, task, model)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
