package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todox-app/todox-api/internal/domain"
	"github.com/todox-app/todox-api/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestTaskService(
	tasks *fakeTaskStore,
	categories *fakeCategoryStore,
	now time.Time,
) *taskService {
	return &taskService{
		taskStore:     tasks,
		categoryStore: categories,
		logger:        testLogger(),
		now:           func() time.Time { return now },
	}
}

func TestWindowStart(t *testing.T) {
	t.Parallel()

	// 2025-06-18 is a Wednesday.
	wednesday := time.Date(2025, 6, 18, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		window  string
		now     time.Time
		want    *time.Time
		wantErr error
	}{
		{
			name:   "all returns no bound",
			window: WindowAll,
			now:    wednesday,
			want:   nil,
		},
		{
			name:   "empty means all",
			window: "",
			now:    wednesday,
			want:   nil,
		},
		{
			name:   "today is local midnight",
			window: WindowToday,
			now:    wednesday,
			want:   timePtr(time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:   "week anchors on monday",
			window: WindowWeek,
			now:    wednesday,
			want:   timePtr(time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:   "monday is its own week start",
			window: WindowWeek,
			now:    time.Date(2025, 6, 16, 8, 0, 0, 0, time.UTC),
			want:   timePtr(time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:   "sunday belongs to the preceding monday",
			window: WindowWeek,
			now:    time.Date(2025, 6, 22, 23, 59, 0, 0, time.UTC),
			want:   timePtr(time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:   "month starts on the first",
			window: WindowMonth,
			now:    wednesday,
			want:   timePtr(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:    "unknown window rejected",
			window:  "fortnight",
			now:     wednesday,
			wantErr: ErrInvalidTimeWindow,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := windowStart(tt.window, tt.now)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.True(t, tt.want.Equal(*got), "want %v, got %v", tt.want, got)
			}
		})
	}
}

func TestTaskServiceCreate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("applies defaults and reads back equal", func(t *testing.T) {
		t.Parallel()
		tasks := newFakeTaskStore()
		svc := newTestTaskService(tasks, newFakeCategoryStore(), now)

		created, err := svc.Create(ctx, userID, TaskCreation{Title: "  buy milk  "})
		require.NoError(t, err)

		assert.Equal(t, "buy milk", created.Title)
		assert.Equal(t, domain.TaskStatusActive, created.Status)
		assert.Equal(t, domain.TaskPriorityMedium, created.Priority)
		assert.Empty(t, created.Description)
		assert.Nil(t, created.CompletedAt)

		loaded, err := tasks.GetByID(ctx, userID, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, loaded)
	})

	t.Run("stamps completion time for complete status", func(t *testing.T) {
		t.Parallel()
		svc := newTestTaskService(newFakeTaskStore(), newFakeCategoryStore(), now)

		created, err := svc.Create(ctx, userID, TaskCreation{
			Title:  "done already",
			Status: domain.TaskStatusComplete,
		})
		require.NoError(t, err)
		require.NotNil(t, created.CompletedAt)
		assert.Equal(t, now, *created.CompletedAt)
	})

	t.Run("rejects category of another user", func(t *testing.T) {
		t.Parallel()
		categories := newFakeCategoryStore()
		other, err := domain.NewCategory(uuid.New(), "theirs")
		require.NoError(t, err)
		require.NoError(t, categories.Create(ctx, other))

		svc := newTestTaskService(newFakeTaskStore(), categories, now)
		_, err = svc.Create(ctx, userID, TaskCreation{
			Title:      "trespassing",
			CategoryID: &other.ID,
		})
		assert.ErrorIs(t, err, ErrUnknownCategory)
	})

	t.Run("rejects invalid priority", func(t *testing.T) {
		t.Parallel()
		svc := newTestTaskService(newFakeTaskStore(), newFakeCategoryStore(), now)

		_, err := svc.Create(ctx, userID, TaskCreation{
			Title:    "urgent-ish",
			Priority: "urgent",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidTaskPriority)
	})
}

func TestTaskServiceUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	seed := func(t *testing.T, tasks *fakeTaskStore) *domain.Task {
		t.Helper()
		task, err := domain.NewTask(userID, "original")
		require.NoError(t, err)
		task.Description = "keep me"
		require.NoError(t, tasks.Create(ctx, task))
		return task
	}

	t.Run("merges only provided fields", func(t *testing.T) {
		t.Parallel()
		tasks := newFakeTaskStore()
		task := seed(t, tasks)
		svc := newTestTaskService(tasks, newFakeCategoryStore(), now)

		updated, err := svc.Update(ctx, userID, task.ID, TaskChanges{
			Title: Some("renamed"),
		})
		require.NoError(t, err)
		assert.Equal(t, "renamed", updated.Title)
		assert.Equal(t, "keep me", updated.Description)
	})

	t.Run("completing stamps time, reactivating clears it", func(t *testing.T) {
		t.Parallel()
		tasks := newFakeTaskStore()
		task := seed(t, tasks)
		svc := newTestTaskService(tasks, newFakeCategoryStore(), now)

		updated, err := svc.Update(ctx, userID, task.ID, TaskChanges{
			Status: Some(domain.TaskStatusComplete),
		})
		require.NoError(t, err)
		require.NotNil(t, updated.CompletedAt)
		assert.Equal(t, now, *updated.CompletedAt)

		updated, err = svc.Update(ctx, userID, task.ID, TaskChanges{
			Status: Some(domain.TaskStatusActive),
		})
		require.NoError(t, err)
		assert.Nil(t, updated.CompletedAt)
	})

	t.Run("null clears the due date", func(t *testing.T) {
		t.Parallel()
		tasks := newFakeTaskStore()
		task := seed(t, tasks)
		due := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
		task.DueDate = &due
		require.NoError(t, tasks.Update(ctx, task))

		svc := newTestTaskService(tasks, newFakeCategoryStore(), now)
		updated, err := svc.Update(ctx, userID, task.ID, TaskChanges{
			DueDate: Null[time.Time](),
		})
		require.NoError(t, err)
		assert.Nil(t, updated.DueDate)
	})

	t.Run("other user's task is not found", func(t *testing.T) {
		t.Parallel()
		tasks := newFakeTaskStore()
		task := seed(t, tasks)
		svc := newTestTaskService(tasks, newFakeCategoryStore(), now)

		_, err := svc.Update(ctx, uuid.New(), task.ID, TaskChanges{
			Title: Some("stolen"),
		})
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}

func TestTaskServiceBulkOperations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()
	otherID := uuid.New()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	seedTasks := func(t *testing.T, tasks *fakeTaskStore) (mine, theirs *domain.Task) {
		t.Helper()
		mine, err := domain.NewTask(userID, "mine")
		require.NoError(t, err)
		require.NoError(t, tasks.Create(ctx, mine))

		theirs, err = domain.NewTask(otherID, "theirs")
		require.NoError(t, err)
		require.NoError(t, tasks.Create(ctx, theirs))
		return mine, theirs
	}

	t.Run("bulk delete only touches the caller's tasks", func(t *testing.T) {
		t.Parallel()
		tasks := newFakeTaskStore()
		mine, theirs := seedTasks(t, tasks)
		svc := newTestTaskService(tasks, newFakeCategoryStore(), now)

		deleted, err := svc.BulkDelete(ctx, userID, []uuid.UUID{mine.ID, theirs.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		_, err = tasks.GetByID(ctx, otherID, theirs.ID)
		assert.NoError(t, err, "other user's task must survive")
	})

	t.Run("bulk complete stamps the completion time", func(t *testing.T) {
		t.Parallel()
		tasks := newFakeTaskStore()
		mine, _ := seedTasks(t, tasks)
		svc := newTestTaskService(tasks, newFakeCategoryStore(), now)

		status := domain.TaskStatusComplete
		modified, err := svc.BulkUpdate(ctx, userID, []uuid.UUID{mine.ID}, &status, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1), modified)

		loaded, err := tasks.GetByID(ctx, userID, mine.ID)
		require.NoError(t, err)
		require.NotNil(t, loaded.CompletedAt)
		assert.Equal(t, now, *loaded.CompletedAt)
	})

	t.Run("bulk reactivate clears the completion time", func(t *testing.T) {
		t.Parallel()
		tasks := newFakeTaskStore()
		mine, _ := seedTasks(t, tasks)
		mine.Status = domain.TaskStatusComplete
		completed := now.Add(-time.Hour)
		mine.CompletedAt = &completed
		require.NoError(t, tasks.Update(ctx, mine))

		svc := newTestTaskService(tasks, newFakeCategoryStore(), now)
		status := domain.TaskStatusActive
		_, err := svc.BulkUpdate(ctx, userID, []uuid.UUID{mine.ID}, &status, &completed)
		require.NoError(t, err)

		loaded, err := tasks.GetByID(ctx, userID, mine.ID)
		require.NoError(t, err)
		assert.Nil(t, loaded.CompletedAt)
	})

	t.Run("bulk update rejects unknown status", func(t *testing.T) {
		t.Parallel()
		tasks := newFakeTaskStore()
		mine, _ := seedTasks(t, tasks)
		svc := newTestTaskService(tasks, newFakeCategoryStore(), now)

		status := domain.TaskStatus("archived")
		_, err := svc.BulkUpdate(ctx, userID, []uuid.UUID{mine.ID}, &status, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidTaskStatus)
	})

	t.Run("bulk update without fields modifies nothing", func(t *testing.T) {
		t.Parallel()
		tasks := newFakeTaskStore()
		mine, _ := seedTasks(t, tasks)
		svc := newTestTaskService(tasks, newFakeCategoryStore(), now)

		modified, err := svc.BulkUpdate(ctx, userID, []uuid.UUID{mine.ID}, nil, nil)
		require.NoError(t, err)
		assert.Zero(t, modified, "a request with no fields must not count matched tasks as modified")

		loaded, err := tasks.GetByID(ctx, userID, mine.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusActive, loaded.Status)
		assert.Nil(t, loaded.CompletedAt)
	})
}

func TestTaskServiceList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()
	now := time.Date(2025, 6, 18, 15, 0, 0, 0, time.UTC) // Wednesday

	tasks := newFakeTaskStore()
	categories := newFakeCategoryStore()

	category, err := domain.NewCategory(userID, "errands")
	require.NoError(t, err)
	require.NoError(t, categories.Create(ctx, category))

	old, err := domain.NewTask(userID, "from last month")
	require.NoError(t, err)
	old.CreatedAt = time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC)
	require.NoError(t, tasks.Create(ctx, old))

	recent, err := domain.NewTask(userID, "this week")
	require.NoError(t, err)
	recent.CreatedAt = time.Date(2025, 6, 17, 9, 0, 0, 0, time.UTC)
	recent.CategoryID = &category.ID
	recent.Status = domain.TaskStatusComplete
	require.NoError(t, tasks.Create(ctx, recent))

	svc := newTestTaskService(tasks, categories, now)

	t.Run("week window excludes older tasks", func(t *testing.T) {
		t.Parallel()
		result, err := svc.List(ctx, userID, WindowWeek, "")
		require.NoError(t, err)
		require.Len(t, result.Tasks, 1)
		assert.Equal(t, "this week", result.Tasks[0].Title)
		assert.Equal(t, 0, result.ActiveCount)
		assert.Equal(t, 1, result.CompleteCount)
	})

	t.Run("category none selects uncategorized", func(t *testing.T) {
		t.Parallel()
		result, err := svc.List(ctx, userID, WindowAll, CategoryNone)
		require.NoError(t, err)
		require.Len(t, result.Tasks, 1)
		assert.Equal(t, "from last month", result.Tasks[0].Title)
	})

	t.Run("category id filter", func(t *testing.T) {
		t.Parallel()
		result, err := svc.List(ctx, userID, WindowAll, category.ID.String())
		require.NoError(t, err)
		require.Len(t, result.Tasks, 1)
		assert.Equal(t, "this week", result.Tasks[0].Title)
	})

	t.Run("garbage category filter rejected", func(t *testing.T) {
		t.Parallel()
		_, err := svc.List(ctx, userID, WindowAll, "not-a-uuid")
		assert.Error(t, err)
	})
}

func timePtr(t time.Time) *time.Time { return &t }
