package queue

import (
	"testing"
	"time"

	"github.com/hibiken/asynq"
)

func TestConvertAsynqStatus_PendingLeavesStartedAtZero(t *testing.T) {
	info := &asynq.TaskInfo{
		ID:            "task-1",
		State:         asynq.TaskStatePending,
		NextProcessAt: time.Now().Add(30 * time.Second),
	}

	status := convertAsynqStatus(info)

	if status.Status != "pending" {
		t.Errorf("Expected status pending, got %q", status.Status)
	}
	// NextProcessAt is when asynq will pick the task up, not when work
	// began. Reporting it as a start time would show future timestamps.
	if !status.StartedAt.IsZero() {
		t.Errorf("Expected zero StartedAt for a pending task, got %v", status.StartedAt)
	}
}

func TestConvertAsynqStatus_RetryLeavesStartedAtZero(t *testing.T) {
	info := &asynq.TaskInfo{
		ID:            "task-2",
		State:         asynq.TaskStateRetry,
		LastErr:       "ocr backend unavailable",
		NextProcessAt: time.Now().Add(5 * time.Minute),
	}

	status := convertAsynqStatus(info)

	if status.Status != "failed" || status.Error != "ocr backend unavailable" {
		t.Errorf("Expected failed status with last error, got %+v", status)
	}
	if !status.StartedAt.IsZero() {
		t.Errorf("Expected zero StartedAt for a retrying task, got %v", status.StartedAt)
	}
}

func TestConvertAsynqStatus_Completed(t *testing.T) {
	done := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	info := &asynq.TaskInfo{
		ID:          "task-3",
		State:       asynq.TaskStateCompleted,
		CompletedAt: done,
	}

	status := convertAsynqStatus(info)

	if status.Status != "completed" || status.Progress != 1.0 {
		t.Errorf("Expected completed task at full progress, got %+v", status)
	}
	if !status.FinishedAt.Equal(done) {
		t.Errorf("Expected FinishedAt %v, got %v", done, status.FinishedAt)
	}
}
