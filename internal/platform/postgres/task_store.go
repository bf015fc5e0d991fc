package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/todox-app/todox-api/internal/domain"
	"github.com/todox-app/todox-api/internal/platform/logger"
	"github.com/todox-app/todox-api/internal/store"
)

const taskColumns = `id, user_id, title, status, completed_at, category_id,
	due_date, due_time, priority, description, attachments, created_at, updated_at`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Create implements store.TaskStore.Create
// Returns store.ErrInvalidEntity if the referenced user or category row
// does not exist (foreign key violation).
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	attachments, err := marshalAttachments(task.Attachments)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.UserID,
		task.Title,
		task.Status,
		task.CompletedAt,
		task.CategoryID,
		task.DueDate,
		nullableString(task.DueTime),
		task.Priority,
		task.Description,
		attachments,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("error", err.Error()),
				slog.String("task_id", task.ID.String()))
			return fmt.Errorf("%w: referenced user or category not found",
				store.ErrInvalidEntity)
		}

		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("user_id", task.UserID.String()))
		return fmt.Errorf("failed to create task: %w", err)
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", task.UserID.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(
	ctx context.Context,
	userID, id uuid.UUID,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, fmt.Errorf("failed to get task by ID: %w", err)
	}

	return task, nil
}

// Update implements store.TaskStore.Update
// All mutable columns are written; the service layer is responsible for
// merging partial updates into the loaded task first.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	attachments, err := marshalAttachments(task.Attachments)
	if err != nil {
		return err
	}

	query := `
		UPDATE tasks
		SET title = $1, status = $2, completed_at = $3, category_id = $4,
			due_date = $5, due_time = $6, priority = $7, description = $8,
			attachments = $9, updated_at = $10
		WHERE id = $11 AND user_id = $12
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Status,
		task.CompletedAt,
		task.CategoryID,
		task.DueDate,
		nullableString(task.DueTime),
		task.Priority,
		task.Description,
		attachments,
		task.UpdatedAt,
		task.ID,
		task.UserID,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: referenced category not found", store.ErrInvalidEntity)
		}
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return fmt.Errorf("failed to update task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		log.Debug("task not found for update", slog.String("task_id", task.ID.String()))
		return store.ErrTaskNotFound
	}

	return nil
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(
		ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`,
		id,
		userID,
	)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		log.Debug("task not found for delete", slog.String("task_id", id.String()))
		return store.ErrTaskNotFound
	}

	log.Info("task deleted successfully",
		slog.String("task_id", id.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// List implements store.TaskStore.List
// Results are ordered newest first.
func (s *PostgresTaskStore) List(
	ctx context.Context,
	filter store.TaskFilter,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where, args := buildTaskFilter(filter)
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + where + ` ORDER BY created_at DESC`

	return s.queryTasks(ctx, log, query, args...)
}

// CountByStatus implements store.TaskStore.CountByStatus
func (s *PostgresTaskStore) CountByStatus(
	ctx context.Context,
	filter store.TaskFilter,
) (store.StatusCounts, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where, args := buildTaskFilter(filter)
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'active'),
			COUNT(*) FILTER (WHERE status = 'complete')
		FROM tasks WHERE ` + where

	var counts store.StatusCounts
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&counts.Active,
		&counts.Complete,
	); err != nil {
		log.Error("failed to count tasks by status", slog.String("error", err.Error()))
		return store.StatusCounts{}, fmt.Errorf("failed to count tasks by status: %w", err)
	}

	return counts, nil
}

// ListCalendar implements store.TaskStore.ListCalendar
// Tasks are ordered by due date ascending, then creation time descending.
func (s *PostgresTaskStore) ListCalendar(
	ctx context.Context,
	filter store.CalendarFilter,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	conds := []string{"user_id = $1"}
	args := []any{filter.UserID}

	if filter.From != nil {
		args = append(args, *filter.From)
		conds = append(conds, fmt.Sprintf("due_date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conds = append(conds, fmt.Sprintf("due_date <= $%d", len(args)))
	}
	if filter.WithoutCategory {
		conds = append(conds, "category_id IS NULL")
	} else if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		conds = append(conds, fmt.Sprintf("category_id = $%d", len(args)))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` +
		strings.Join(conds, " AND ") +
		` ORDER BY due_date ASC, created_at DESC`

	return s.queryTasks(ctx, log, query, args...)
}

// BulkDelete implements store.TaskStore.BulkDelete
func (s *PostgresTaskStore) BulkDelete(
	ctx context.Context,
	userID uuid.UUID,
	ids []uuid.UUID,
) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(ids) == 0 {
		return 0, nil
	}

	result, err := s.db.ExecContext(
		ctx,
		`DELETE FROM tasks WHERE user_id = $1 AND id = ANY($2)`,
		userID,
		ids,
	)
	if err != nil {
		log.Error("failed to bulk delete tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, fmt.Errorf("failed to bulk delete tasks: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	log.Info("tasks bulk deleted",
		slog.String("user_id", userID.String()),
		slog.Int64("deleted_count", deleted))
	return deleted, nil
}

// BulkUpdateStatus implements store.TaskStore.BulkUpdateStatus
func (s *PostgresTaskStore) BulkUpdateStatus(
	ctx context.Context,
	userID uuid.UUID,
	ids []uuid.UUID,
	status *domain.TaskStatus,
	completedAt *time.Time,
) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(ids) == 0 {
		return 0, nil
	}
	// Nothing to change; running the UPDATE anyway would bump updated_at
	// and report every matched row as modified.
	if status == nil && completedAt == nil {
		return 0, nil
	}

	sets := []string{"updated_at = now()"}
	args := []any{userID, ids}

	if status != nil {
		args = append(args, *status)
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
		// A status change always rewrites completed_at so tasks reverted to
		// active lose their completion timestamp.
		if completedAt != nil {
			args = append(args, *completedAt)
			sets = append(sets, fmt.Sprintf("completed_at = $%d", len(args)))
		} else {
			sets = append(sets, "completed_at = NULL")
		}
	} else if completedAt != nil {
		args = append(args, *completedAt)
		sets = append(sets, fmt.Sprintf("completed_at = $%d", len(args)))
	}

	query := `UPDATE tasks SET ` + strings.Join(sets, ", ") +
		` WHERE user_id = $1 AND id = ANY($2)`

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to bulk update tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, fmt.Errorf("failed to bulk update tasks: %w", err)
	}

	modified, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	log.Info("tasks bulk updated",
		slog.String("user_id", userID.String()),
		slog.Int64("modified_count", modified))
	return modified, nil
}

// queryTasks runs a task SELECT and scans all rows.
func (s *PostgresTaskStore) queryTasks(
	ctx context.Context,
	log *slog.Logger,
	query string,
	args ...any,
) ([]*domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	return tasks, nil
}

// buildTaskFilter renders a store.TaskFilter as a WHERE clause with
// positional args.
func buildTaskFilter(filter store.TaskFilter) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{filter.UserID}

	if filter.CreatedAfter != nil {
		args = append(args, *filter.CreatedAfter)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.WithoutCategory {
		conds = append(conds, "category_id IS NULL")
	} else if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		conds = append(conds, fmt.Sprintf("category_id = $%d", len(args)))
	}

	return strings.Join(conds, " AND "), args
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask scans one task row, unpacking nullable columns and the
// attachments JSONB array.
func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task        domain.Task
		status      string
		priority    string
		completedAt sql.NullTime
		categoryID  uuid.NullUUID
		dueDate     sql.NullTime
		dueTime     sql.NullString
		attachments []byte
	)

	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&status,
		&completedAt,
		&categoryID,
		&dueDate,
		&dueTime,
		&priority,
		&task.Description,
		&attachments,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.Priority = domain.TaskPriority(priority)
	if completedAt.Valid {
		t := completedAt.Time
		task.CompletedAt = &t
	}
	if categoryID.Valid {
		id := categoryID.UUID
		task.CategoryID = &id
	}
	if dueDate.Valid {
		t := dueDate.Time
		task.DueDate = &t
	}
	if dueTime.Valid {
		task.DueTime = dueTime.String
	}

	task.Attachments = []domain.Attachment{}
	if len(attachments) > 0 {
		if err := json.Unmarshal(attachments, &task.Attachments); err != nil {
			return nil, fmt.Errorf("failed to decode attachments: %w", err)
		}
	}

	return &task, nil
}

// marshalAttachments encodes the attachment list for the JSONB column.
func marshalAttachments(attachments []domain.Attachment) ([]byte, error) {
	if attachments == nil {
		attachments = []domain.Attachment{}
	}
	data, err := json.Marshal(attachments)
	if err != nil {
		return nil, fmt.Errorf("failed to encode attachments: %w", err)
	}
	return data, nil
}

// nullableString maps "" to NULL for optional text columns.
func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
