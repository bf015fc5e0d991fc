package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/todox-app/todox-api/internal/domain"
	"github.com/todox-app/todox-api/internal/store"
)

// Time-window filters for task listings. The window bounds creation time:
// "today" since local midnight, "week" since Monday of the current week,
// "month" since the first of the month.
const (
	WindowAll   = "all"
	WindowToday = "today"
	WindowWeek  = "week"
	WindowMonth = "month"
)

// CategoryNone is the category filter value selecting tasks without a category.
const CategoryNone = "none"

// TaskListResult bundles a task listing with its status counts.
type TaskListResult struct {
	Tasks         []*domain.Task
	ActiveCount   int
	CompleteCount int
}

// TaskCreation carries the caller-provided fields for a new task. Zero
// values fall back to domain defaults (status active, priority medium).
type TaskCreation struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
	CategoryID  *uuid.UUID
	DueDate     *time.Time
	DueTime     string
	CompletedAt *time.Time
}

// TaskChanges carries a partial update. Unset fields are left untouched;
// fields set to null clear the stored value where that is meaningful
// (category, due date, completion time).
type TaskChanges struct {
	Title       Optional[string]
	Description Optional[string]
	Status      Optional[domain.TaskStatus]
	Priority    Optional[domain.TaskPriority]
	CategoryID  Optional[uuid.UUID]
	DueDate     Optional[time.Time]
	DueTime     Optional[string]
	CompletedAt Optional[time.Time]
}

// TaskService provides task operations. All operations are scoped to the
// calling user; a task owned by someone else behaves like a missing task.
type TaskService interface {
	// List returns the user's tasks in the given time window, optionally
	// narrowed by category ("" for all, CategoryNone for uncategorized, or
	// a category ID), together with status counts over the same filter.
	List(ctx context.Context, userID uuid.UUID, window, category string) (*TaskListResult, error)

	// Calendar returns tasks whose due date falls in the inclusive
	// [start, end] range. Either bound may be nil for an open-ended range.
	Calendar(
		ctx context.Context,
		userID uuid.UUID,
		start, end *time.Time,
		category string,
	) ([]*domain.Task, error)

	// Create builds and saves a new task for the user.
	Create(ctx context.Context, userID uuid.UUID, input TaskCreation) (*domain.Task, error)

	// Update applies a partial update to the user's task and returns the
	// updated task.
	Update(
		ctx context.Context,
		userID, taskID uuid.UUID,
		changes TaskChanges,
	) (*domain.Task, error)

	// Delete removes the user's task.
	Delete(ctx context.Context, userID, taskID uuid.UUID) error

	// BulkDelete removes the user's tasks with the given IDs and returns
	// how many were actually deleted.
	BulkDelete(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)

	// BulkUpdate sets status (and completion time) on the user's tasks with
	// the given IDs and returns how many were modified.
	BulkUpdate(
		ctx context.Context,
		userID uuid.UUID,
		ids []uuid.UUID,
		status *domain.TaskStatus,
		completedAt *time.Time,
	) (int64, error)
}

// taskService implements TaskService on top of the task and category stores.
type taskService struct {
	taskStore     store.TaskStore
	categoryStore store.CategoryStore
	logger        *slog.Logger
	now           func() time.Time // Injectable for testing
}

var _ TaskService = (*taskService)(nil)

// NewTaskService creates a new TaskService.
func NewTaskService(
	taskStore store.TaskStore,
	categoryStore store.CategoryStore,
	logger *slog.Logger,
) TaskService {
	return &taskService{
		taskStore:     taskStore,
		categoryStore: categoryStore,
		logger:        logger.With("component", "task_service"),
		now:           time.Now,
	}
}

// List implements TaskService.List.
func (s *taskService) List(
	ctx context.Context,
	userID uuid.UUID,
	window, category string,
) (*TaskListResult, error) {
	createdAfter, err := windowStart(window, s.now())
	if err != nil {
		return nil, err
	}

	categoryID, withoutCategory, err := parseCategoryFilter(category)
	if err != nil {
		return nil, err
	}

	filter := store.TaskFilter{
		UserID:          userID,
		CreatedAfter:    createdAfter,
		CategoryID:      categoryID,
		WithoutCategory: withoutCategory,
	}

	tasks, err := s.taskStore.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	counts, err := s.taskStore.CountByStatus(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	return &TaskListResult{
		Tasks:         tasks,
		ActiveCount:   counts.Active,
		CompleteCount: counts.Complete,
	}, nil
}

// Calendar implements TaskService.Calendar.
func (s *taskService) Calendar(
	ctx context.Context,
	userID uuid.UUID,
	start, end *time.Time,
	category string,
) ([]*domain.Task, error) {
	categoryID, withoutCategory, err := parseCategoryFilter(category)
	if err != nil {
		return nil, err
	}

	tasks, err := s.taskStore.ListCalendar(ctx, store.CalendarFilter{
		UserID:          userID,
		From:            start,
		To:              end,
		CategoryID:      categoryID,
		WithoutCategory: withoutCategory,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar tasks: %w", err)
	}
	return tasks, nil
}

// Create implements TaskService.Create.
func (s *taskService) Create(
	ctx context.Context,
	userID uuid.UUID,
	input TaskCreation,
) (*domain.Task, error) {
	task, err := domain.NewTask(userID, input.Title)
	if err != nil {
		return nil, err
	}

	task.Description = input.Description
	task.DueDate = input.DueDate
	task.DueTime = input.DueTime
	if input.Status != "" {
		task.Status = input.Status
	}
	if input.Priority != "" {
		task.Priority = input.Priority
	}
	if input.CategoryID != nil {
		if err := s.checkCategory(ctx, userID, *input.CategoryID); err != nil {
			return nil, err
		}
		task.CategoryID = input.CategoryID
	}
	if task.Status == domain.TaskStatusComplete {
		completedAt := s.now().UTC()
		if input.CompletedAt != nil {
			completedAt = *input.CompletedAt
		}
		task.CompletedAt = &completedAt
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		s.logger.Error("failed to create task",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// Update implements TaskService.Update. A status change rewrites the
// completion time: complete stamps it (unless the caller provided one),
// active clears it.
func (s *taskService) Update(
	ctx context.Context,
	userID, taskID uuid.UUID,
	changes TaskChanges,
) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, userID, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}

	if changes.Title.Set && changes.Title.Value != nil {
		task.Title = *changes.Title.Value
	}
	if changes.Description.Set {
		task.Description = deref(changes.Description.Value, "")
	}
	if changes.Priority.Set && changes.Priority.Value != nil {
		task.Priority = *changes.Priority.Value
	}
	if changes.DueDate.Set {
		task.DueDate = changes.DueDate.Value
	}
	if changes.DueTime.Set {
		task.DueTime = deref(changes.DueTime.Value, "")
	}
	if changes.CategoryID.Set {
		if changes.CategoryID.Value != nil {
			if err := s.checkCategory(ctx, userID, *changes.CategoryID.Value); err != nil {
				return nil, err
			}
		}
		task.CategoryID = changes.CategoryID.Value
	}
	if changes.Status.Set && changes.Status.Value != nil {
		task.Status = *changes.Status.Value
		switch task.Status {
		case domain.TaskStatusComplete:
			if changes.CompletedAt.Set && changes.CompletedAt.Value != nil {
				task.CompletedAt = changes.CompletedAt.Value
			} else if task.CompletedAt == nil {
				completedAt := s.now().UTC()
				task.CompletedAt = &completedAt
			}
		case domain.TaskStatusActive:
			task.CompletedAt = nil
		}
	} else if changes.CompletedAt.Set {
		task.CompletedAt = changes.CompletedAt.Value
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	task.Touch()
	if err := s.taskStore.Update(ctx, task); err != nil {
		s.logger.Error("failed to update task",
			"error", err,
			"user_id", userID,
			"task_id", taskID)
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// Delete implements TaskService.Delete.
func (s *taskService) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	if err := s.taskStore.Delete(ctx, userID, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// BulkDelete implements TaskService.BulkDelete.
func (s *taskService) BulkDelete(
	ctx context.Context,
	userID uuid.UUID,
	ids []uuid.UUID,
) (int64, error) {
	deleted, err := s.taskStore.BulkDelete(ctx, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk delete tasks: %w", err)
	}
	return deleted, nil
}

// BulkUpdate implements TaskService.BulkUpdate. Marking tasks complete
// stamps the completion time when the caller did not provide one; marking
// them active always clears it.
func (s *taskService) BulkUpdate(
	ctx context.Context,
	userID uuid.UUID,
	ids []uuid.UUID,
	status *domain.TaskStatus,
	completedAt *time.Time,
) (int64, error) {
	if status != nil {
		if err := domain.ValidateTaskStatus(*status); err != nil {
			return 0, err
		}
		switch *status {
		case domain.TaskStatusComplete:
			if completedAt == nil {
				now := s.now().UTC()
				completedAt = &now
			}
		case domain.TaskStatusActive:
			completedAt = nil
		}
	}

	modified, err := s.taskStore.BulkUpdateStatus(ctx, userID, ids, status, completedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk update tasks: %w", err)
	}
	return modified, nil
}

// checkCategory verifies the category exists and belongs to the user.
func (s *taskService) checkCategory(
	ctx context.Context,
	userID, categoryID uuid.UUID,
) error {
	_, err := s.categoryStore.GetByID(ctx, userID, categoryID)
	if err != nil {
		if errors.Is(err, store.ErrCategoryNotFound) {
			return fmt.Errorf("%w: %s", ErrUnknownCategory, categoryID)
		}
		return fmt.Errorf("failed to check category: %w", err)
	}
	return nil
}

// windowStart maps a time-window filter to a creation-time lower bound.
// Returns nil for WindowAll. Weeks start on Monday.
func windowStart(window string, now time.Time) (*time.Time, error) {
	switch window {
	case "", WindowAll:
		return nil, nil
	case WindowToday:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return &start, nil
	case WindowWeek:
		weekday := int(now.Weekday())
		if weekday == 0 { // Sunday belongs to the week that started 6 days ago
			weekday = 7
		}
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
			AddDate(0, 0, -(weekday - 1))
		return &start, nil
	case WindowMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return &start, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidTimeWindow, window)
	}
}

// parseCategoryFilter interprets the category query value: empty selects all
// tasks, CategoryNone selects uncategorized tasks, anything else must be a
// category ID.
func parseCategoryFilter(category string) (*uuid.UUID, bool, error) {
	switch category {
	case "":
		return nil, false, nil
	case CategoryNone:
		return nil, true, nil
	default:
		id, err := uuid.Parse(category)
		if err != nil {
			return nil, false, fmt.Errorf("%w: invalid category filter %q", domain.ErrInvalidID, category)
		}
		return &id, false, nil
	}
}

func deref[T any](v *T, fallback T) T {
	if v != nil {
		return *v
	}
	return fallback
}
