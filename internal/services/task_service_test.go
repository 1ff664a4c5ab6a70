package services

import (
	"errors"
	"testing"
	"time"

	"taskpilot/internal/models"
)

func TestCreateTaskDefaults(t *testing.T) {
	service := NewTaskService(nil)

	task, err := service.CreateTask(models.CreateTaskRequest{Name: "sort inbox"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if task.Priority != models.TaskPriorityMedium {
		t.Errorf("priority = %s, want medium", task.Priority)
	}
	if task.Category != models.CategoryGeneral {
		t.Errorf("category = %s, want general", task.Category)
	}
	if task.Status != models.TaskStatusPending {
		t.Errorf("status = %s, want pending", task.Status)
	}
	if task.ID == "" {
		t.Error("task ID was not assigned")
	}
}

func TestCreateTaskRejectsUnknownShape(t *testing.T) {
	service := NewTaskService(nil)

	_, err := service.CreateTask(models.CreateTaskRequest{Name: "x", Priority: "urgent"})
	if models.CodeOf(err) != models.ErrInvalidConfiguration {
		t.Errorf("unknown priority error code = %q, want invalidConfiguration", models.CodeOf(err))
	}

	_, err = service.CreateTask(models.CreateTaskRequest{Name: "x", Category: "misc"})
	if models.CodeOf(err) != models.ErrInvalidConfiguration {
		t.Errorf("unknown category error code = %q, want invalidConfiguration", models.CodeOf(err))
	}
}

func TestStatusLifecycle(t *testing.T) {
	service := NewTaskService(nil)
	task, _ := service.CreateTask(models.CreateTaskRequest{Name: "x"})

	if err := service.UpdateTaskStatus(task.ID, models.TaskStatusInProgress); err != nil {
		t.Fatalf("pending -> inProgress failed: %v", err)
	}
	if err := service.UpdateTaskStatus(task.ID, models.TaskStatusCompleted); err != nil {
		t.Fatalf("inProgress -> completed failed: %v", err)
	}

	stored, _ := service.GetTask(task.ID)
	if stored.CompletedAt == nil {
		t.Error("completedAt was not set on terminal transition")
	}

	// Terminal states are absorbing
	err := service.UpdateTaskStatus(task.ID, models.TaskStatusCancelled)
	if models.CodeOf(err) != models.ErrInvalidConfiguration {
		t.Errorf("completed -> cancelled error code = %q, want invalidConfiguration", models.CodeOf(err))
	}
}

func TestSkippingInProgressIsRejected(t *testing.T) {
	service := NewTaskService(nil)
	task, _ := service.CreateTask(models.CreateTaskRequest{Name: "x"})

	err := service.UpdateTaskStatus(task.ID, models.TaskStatusCompleted)
	if models.CodeOf(err) != models.ErrInvalidConfiguration {
		t.Errorf("pending -> completed error code = %q, want invalidConfiguration", models.CodeOf(err))
	}
}

func TestCancelPendingTask(t *testing.T) {
	service := NewTaskService(nil)
	task, _ := service.CreateTask(models.CreateTaskRequest{Name: "x"})

	if err := service.CancelTask(task.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	stored, _ := service.GetTask(task.ID)
	if stored.Status != models.TaskStatusCancelled {
		t.Errorf("status = %s, want cancelled", stored.Status)
	}
}

func TestSetTaskError(t *testing.T) {
	service := NewTaskService(nil)
	task, _ := service.CreateTask(models.CreateTaskRequest{Name: "x"})
	_ = service.UpdateTaskStatus(task.ID, models.TaskStatusInProgress)

	if err := service.SetTaskError(task.ID, errors.New("model crashed")); err != nil {
		t.Fatalf("SetTaskError failed: %v", err)
	}
	stored, _ := service.GetTask(task.ID)
	if stored.Status != models.TaskStatusFailed {
		t.Errorf("status = %s, want failed", stored.Status)
	}
	if stored.Error != "model crashed" {
		t.Errorf("error = %q, want the runner error message", stored.Error)
	}
}

func TestListTasksOrdering(t *testing.T) {
	service := NewTaskService(nil)

	_, _ = service.CreateTask(models.CreateTaskRequest{Name: "low", Priority: models.TaskPriorityLow})
	_, _ = service.CreateTask(models.CreateTaskRequest{Name: "critical", Priority: models.TaskPriorityCritical})
	_, _ = service.CreateTask(models.CreateTaskRequest{Name: "medium", Priority: models.TaskPriorityMedium})

	tasks := service.ListTasks()
	if len(tasks) != 3 {
		t.Fatalf("task count = %d, want 3", len(tasks))
	}
	if tasks[0].Name != "critical" || tasks[1].Name != "medium" || tasks[2].Name != "low" {
		t.Errorf("order = [%s %s %s], want [critical medium low]", tasks[0].Name, tasks[1].Name, tasks[2].Name)
	}
}

func TestSubscribeReceivesLifecycleEvents(t *testing.T) {
	service := NewTaskService(nil)

	events, cancel := service.Subscribe()
	defer cancel()

	task, _ := service.CreateTask(models.CreateTaskRequest{Name: "x"})
	_ = service.UpdateTaskStatus(task.ID, models.TaskStatusInProgress)
	_ = service.UpdateTaskStatus(task.ID, models.TaskStatusCompleted)

	want := []models.TaskStatus{
		models.TaskStatusPending,
		models.TaskStatusInProgress,
		models.TaskStatusCompleted,
	}
	for i, expected := range want {
		select {
		case event := <-events:
			if event.TaskID != task.ID {
				t.Errorf("event %d task = %s, want %s", i, event.TaskID, task.ID)
			}
			if event.Status != expected {
				t.Errorf("event %d status = %s, want %s", i, event.Status, expected)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
}

func TestGetTaskReturnsCopy(t *testing.T) {
	service := NewTaskService(nil)
	task, _ := service.CreateTask(models.CreateTaskRequest{
		Name:     "x",
		Metadata: map[string]string{"source": "test"},
	})

	copy1, _ := service.GetTask(task.ID)
	copy1.Name = "mutated"
	copy1.Metadata["source"] = "mutated"

	copy2, _ := service.GetTask(task.ID)
	if copy2.Name != "x" || copy2.Metadata["source"] != "test" {
		t.Error("store state was mutated through a returned copy")
	}
}
