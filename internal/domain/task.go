package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the completion state of a task.
type TaskStatus string

// Valid task statuses.
const (
	TaskStatusActive   TaskStatus = "active"
	TaskStatusComplete TaskStatus = "complete"
)

// TaskPriority is the urgency level of a task.
type TaskPriority string

// Valid task priorities.
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Task-specific validation errors.
var (
	// ErrTaskIDEmpty is returned when a task ID is empty or nil.
	ErrTaskIDEmpty = errors.New("task ID cannot be empty")

	// ErrTaskUserIDEmpty is returned when a task's user ID is empty or nil.
	ErrTaskUserIDEmpty = errors.New("task user ID cannot be empty")

	// ErrTaskTitleEmpty is returned when a task's title is empty after trimming.
	ErrTaskTitleEmpty = errors.New("task title cannot be empty")

	// ErrInvalidTaskStatus is returned when a task status is not active/complete.
	ErrInvalidTaskStatus = errors.New("invalid task status")

	// ErrInvalidTaskPriority is returned when a task priority is not low/medium/high.
	ErrInvalidTaskPriority = errors.New("invalid task priority")
)

// ValidateTaskStatus checks that s is a known task status.
func ValidateTaskStatus(s TaskStatus) error {
	switch s {
	case TaskStatusActive, TaskStatusComplete:
		return nil
	default:
		return ErrInvalidTaskStatus
	}
}

// ValidateTaskPriority checks that p is a known task priority.
func ValidateTaskPriority(p TaskPriority) error {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return nil
	default:
		return ErrInvalidTaskPriority
	}
}

// Attachment is a binary file bound to a task. It has no independent
// lifecycle: attachments live and die with their parent task row, stored
// as a JSONB array.
type Attachment struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Task represents a single to-do item owned by exactly one user.
// CategoryID, if set, must reference a category of the same user; that
// cross-field rule is enforced at write time by the task service.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	Title       string       `json:"title"`
	Status      TaskStatus   `json:"status"`
	CompletedAt *time.Time   `json:"completed_at"`
	CategoryID  *uuid.UUID   `json:"category_id"`
	DueDate     *time.Time   `json:"due_date"`
	DueTime     string       `json:"due_time,omitempty"` // "HH:MM", stored as given
	Priority    TaskPriority `json:"priority"`
	Description string       `json:"description"`
	Attachments []Attachment `json:"attachments"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewTask creates a new Task with defaults applied: status active, priority
// medium (when empty), description trimmed. Returns an error if validation
// fails.
func NewTask(userID uuid.UUID, title string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		Status:      TaskStatusActive,
		Priority:    TaskPriorityMedium,
		Description: "",
		Attachments: []Attachment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if t.UserID == uuid.Nil {
		return ErrTaskUserIDEmpty
	}

	if strings.TrimSpace(t.Title) == "" {
		return ErrTaskTitleEmpty
	}

	if err := ValidateTaskStatus(t.Status); err != nil {
		return err
	}

	return ValidateTaskPriority(t.Priority)
}

// Touch updates the UpdatedAt timestamp.
func (t *Task) Touch() {
	t.UpdatedAt = time.Now().UTC()
}
