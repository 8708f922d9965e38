package monitor_test

import (
	"testing"
	"time"

	"catlink/models"
	"catlink/monitor"
)

func waitForCompletion(t *testing.T, tm *monitor.TaskManager, taskID string) *models.MonitorTask {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		task, ok := tm.GetTask(taskID)
		if !ok {
			t.Fatalf("task %s disappeared", taskID)
		}
		if task.IsCompleted() {
			return task
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("task %s did not complete in time", taskID)
	return nil
}

func TestTaskManager_RunCompletes(t *testing.T) {
	f := newMonitorFixture([]models.ScrapedProduct{
		{URL: "https://r.example/dp/ABCD-WX1", Title: "Floral Midi Dress", Price: 89.99},
	}, nil)
	tm := monitor.NewTaskManager(f.monitor, 2)
	defer tm.Stop()

	task := tm.SubmitRun("revolve", "dresses")
	if task.Status != models.TaskStatusQueued && task.Status != models.TaskStatusProcessing {
		t.Errorf("submitted task status = %s, want queued or processing", task.Status)
	}

	done := waitForCompletion(t, tm, task.ID)
	if done.Status != models.TaskStatusCompleted {
		t.Fatalf("task status = %s (error %q), want completed", done.Status, done.Error)
	}
	if done.Result == nil || done.Result.Scraped != 1 || done.Result.Saved != 1 {
		t.Errorf("task result = %+v, want scraped=1 saved=1", done.Result)
	}
}

func TestTaskManager_UnknownRetailerFails(t *testing.T) {
	f := newMonitorFixture(nil, nil)
	tm := monitor.NewTaskManager(f.monitor, 1)
	defer tm.Stop()

	task := tm.SubmitRun("nordstrom", "dresses")
	done := waitForCompletion(t, tm, task.ID)
	if done.Status != models.TaskStatusFailed {
		t.Errorf("task status = %s, want failed", done.Status)
	}
	if done.Error == "" {
		t.Error("failed task should carry an error message")
	}
}

func TestTaskManager_GetTask(t *testing.T) {
	f := newMonitorFixture(nil, nil)
	tm := monitor.NewTaskManager(f.monitor, 1)
	defer tm.Stop()

	if _, ok := tm.GetTask("run_nope"); ok {
		t.Error("GetTask should report ok=false for an unknown ID")
	}

	task := tm.SubmitRun("revolve", "dresses")
	if got, ok := tm.GetTask(task.ID); !ok || got.ID != task.ID {
		t.Error("GetTask should return the submitted task")
	}
}

func TestTaskManager_CleanupOldTasks(t *testing.T) {
	f := newMonitorFixture(nil, nil)
	tm := monitor.NewTaskManager(f.monitor, 1)
	defer tm.Stop()

	task := tm.SubmitRun("revolve", "dresses")
	waitForCompletion(t, tm, task.ID)

	tm.CleanupOldTasks(time.Hour)
	if _, ok := tm.GetTask(task.ID); !ok {
		t.Error("fresh completed task should survive cleanup")
	}

	tm.CleanupOldTasks(0)
	if _, ok := tm.GetTask(task.ID); ok {
		t.Error("completed task older than maxAge should be removed")
	}
}
