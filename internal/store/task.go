package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/todox-app/todox-api/internal/domain"
)

// TaskFilter narrows task listings. UserID is mandatory; every query is
// owner-scoped. CreatedAfter bounds creation time (time-window filters),
// CategoryID filters by category equality and WithoutCategory selects tasks
// with no category. CategoryID and WithoutCategory are mutually exclusive.
type TaskFilter struct {
	UserID          uuid.UUID
	CreatedAfter    *time.Time
	CategoryID      *uuid.UUID
	WithoutCategory bool
}

// CalendarFilter selects tasks whose due date falls in the inclusive
// [From, To] range. Either bound may be nil for an open-ended range.
type CalendarFilter struct {
	UserID          uuid.UUID
	From            *time.Time
	To              *time.Time
	CategoryID      *uuid.UUID
	WithoutCategory bool
}

// StatusCounts reports how many tasks matched a filter per status.
type StatusCounts struct {
	Active   int
	Complete int
}

// TaskStore defines the interface for task data persistence.
// Every operation is scoped to the owning user: an existing task queried
// with the wrong user behaves exactly like a missing task.
type TaskStore interface {
	// Create saves a new task. Returns ErrInvalidEntity if the referenced
	// user or category row does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by ID, scoped to the given owner.
	// Returns ErrTaskNotFound if it does not exist or belongs to another user.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error)

	// Update persists all mutable fields of the task, matched by (id, user).
	// Returns ErrTaskNotFound when no row matches.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes the task matched by (id, user).
	// Returns ErrTaskNotFound when no row matches.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// List returns tasks matching the filter, newest first.
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)

	// CountByStatus counts tasks matching the filter, grouped by status.
	CountByStatus(ctx context.Context, filter TaskFilter) (StatusCounts, error)

	// ListCalendar returns tasks in the due-date range, ordered by due date
	// ascending with creation time descending as tiebreak.
	ListCalendar(ctx context.Context, filter CalendarFilter) ([]*domain.Task, error)

	// BulkDelete removes the owner's tasks whose IDs appear in ids and
	// returns the number actually deleted. IDs owned by other users are
	// silently skipped.
	BulkDelete(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)

	// BulkUpdateStatus sets status and completedAt on the owner's tasks
	// whose IDs appear in ids and returns the number modified. When status
	// is provided, completedAt is always written alongside it (nil clears
	// the column); with a nil status, a nil completedAt leaves the column
	// untouched.
	BulkUpdateStatus(
		ctx context.Context,
		userID uuid.UUID,
		ids []uuid.UUID,
		status *domain.TaskStatus,
		completedAt *time.Time,
	) (int64, error)
}
