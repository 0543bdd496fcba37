package domain

import (
	"time"

	"github.com/google/uuid"
)

// GenerateID creates a unique random ID for tasks and QA records.
func GenerateID() string {
	return uuid.NewString()
}

// TaskType identifies the type of background task
type TaskType string

const (
	// TaskTypeReindexPaper rebuilds the vector entries of a stored paper
	TaskTypeReindexPaper TaskType = "reindex_paper"
)

// TaskStatus represents the current state of a task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// DefaultTaskMaxAttempts bounds retries of a failing task
const DefaultTaskMaxAttempts = 5

// maxRetryBackoff caps the delay between attempts
const maxRetryBackoff = 5 * time.Minute

// Task represents a background job to be processed by workers
type Task struct {
	ID   string   `json:"id"`
	Type TaskType `json:"type"`

	// PaperURL is the paper the task operates on
	PaperURL string `json:"paper_url"`

	Status TaskStatus `json:"status"`

	// Attempts is how many times this task has been attempted
	Attempts    int `json:"attempts"`
	MaxAttempts int `json:"max_attempts"`

	// Error contains the last error message
	Error string `json:"error,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// ScheduledFor is when the task should next be processed
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewTask creates a pending task for a paper
func NewTask(taskType TaskType, paperURL string) *Task {
	now := time.Now()
	return &Task{
		ID:           GenerateID(),
		Type:         taskType,
		PaperURL:     paperURL,
		Status:       TaskStatusPending,
		MaxAttempts:  DefaultTaskMaxAttempts,
		CreatedAt:    now,
		UpdatedAt:    now,
		ScheduledFor: now,
	}
}

// NewReindexTask creates a task that re-indexes a stored paper
func NewReindexTask(paperURL string) *Task {
	return NewTask(TaskTypeReindexPaper, paperURL)
}

// CanRetry returns true if the task can be retried
func (t *Task) CanRetry() bool {
	return t.Attempts < t.MaxAttempts
}

// IsReady returns true if the task is ready to be processed
func (t *Task) IsReady() bool {
	return t.Status == TaskStatusPending && !time.Now().Before(t.ScheduledFor)
}

// MarkProcessing updates the task to processing state
func (t *Task) MarkProcessing() {
	now := time.Now()
	t.Status = TaskStatusProcessing
	t.StartedAt = &now
	t.UpdatedAt = now
	t.Attempts++
}

// MarkCompleted updates the task to completed state
func (t *Task) MarkCompleted() {
	now := time.Now()
	t.Status = TaskStatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now
	t.Error = ""
}

// MarkFailed updates the task to failed state
func (t *Task) MarkFailed(err string) {
	t.Status = TaskStatusFailed
	t.UpdatedAt = time.Now()
	t.Error = err
}

// Retry resets the task for retry with exponential backoff
func (t *Task) Retry(err string) {
	now := time.Now()
	t.Status = TaskStatusPending
	t.UpdatedAt = now
	t.Error = err

	// 1s, 2s, 4s, 8s, ...
	backoff := maxRetryBackoff
	if t.Attempts < 16 {
		backoff = min(time.Duration(1<<t.Attempts)*time.Second, maxRetryBackoff)
	}
	t.ScheduledFor = now.Add(backoff)
}

// Fail records a failed attempt: the task is retried while attempts
// remain and marked failed otherwise.
func (t *Task) Fail(err string) {
	if t.CanRetry() {
		t.Retry(err)
		return
	}
	t.MarkFailed(err)
}
