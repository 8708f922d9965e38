package models

import (
	"math/rand"
	"time"
)

// TaskStatus represents the status of an async monitor task
type TaskStatus string

const (
	TaskStatusQueued     TaskStatus = "queued"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// MonitorRunResult summarizes one catalog monitor pass
type MonitorRunResult struct {
	Retailer       string `json:"retailer"`
	Category       string `json:"category"`
	Scraped        int    `json:"scraped"`
	Saved          int    `json:"saved"`
	Linked         int    `json:"linked"`
	Unlinked       int    `json:"unlinked"`
	PriceChanges   int    `json:"price_changes"`
	LinkFailures   int    `json:"link_failures"`
}

// MonitorTask represents an async catalog monitor run triggered over the API
type MonitorTask struct {
	ID          string            `json:"id"`
	Retailer    string            `json:"retailer"`
	Category    string            `json:"category"`
	Status      TaskStatus        `json:"status"`
	Message     string            `json:"message"`
	Result      *MonitorRunResult `json:"result,omitempty"`
	Error       string            `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	StartedAt   *time.Time        `json:"started_at,omitempty"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// NewMonitorTask creates a queued monitor task for a retailer/category pair
func NewMonitorTask(retailer, category string) *MonitorTask {
	return &MonitorTask{
		ID:        generateTaskID(),
		Retailer:  retailer,
		Category:  category,
		Status:    TaskStatusQueued,
		Message:   "Monitor run queued",
		CreatedAt: time.Now(),
	}
}

// Start marks the task as processing
func (t *MonitorTask) Start() {
	t.Status = TaskStatusProcessing
	t.Message = "Monitor run in progress"
	now := time.Now()
	t.StartedAt = &now
}

// Complete marks the task as completed with its run summary
func (t *MonitorTask) Complete(result *MonitorRunResult) {
	t.Status = TaskStatusCompleted
	t.Message = "Monitor run completed"
	t.Result = result
	now := time.Now()
	t.CompletedAt = &now
}

// Fail marks the task as failed with error
func (t *MonitorTask) Fail(errMsg string) {
	t.Status = TaskStatusFailed
	t.Message = "Monitor run failed"
	t.Error = errMsg
	now := time.Now()
	t.CompletedAt = &now
}

// IsCompleted returns true if the task is in a final state
func (t *MonitorTask) IsCompleted() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}

// IsActive returns true if the task is still queued or running
func (t *MonitorTask) IsActive() bool {
	return t.Status == TaskStatusQueued || t.Status == TaskStatusProcessing
}

// Duration returns how long the task has been (or was) running
func (t *MonitorTask) Duration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}

	endTime := time.Now()
	if t.CompletedAt != nil {
		endTime = *t.CompletedAt
	}

	return endTime.Sub(*t.StartedAt)
}

// generateTaskID generates a unique task ID
func generateTaskID() string {
	return "run_" + time.Now().Format("20060102150405") + "_" + randomString(8)
}

// randomString generates a random lowercase alphanumeric string
func randomString(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
