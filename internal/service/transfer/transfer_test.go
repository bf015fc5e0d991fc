package transfer

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todox-app/todox-api/internal/domain"
	"github.com/todox-app/todox-api/internal/service"
	"github.com/todox-app/todox-api/internal/store"
)

// memTaskStore is a minimal in-memory TaskStore for transfer tests.
type memTaskStore struct {
	mu    sync.Mutex
	tasks []*domain.Task
}

var _ store.TaskStore = (*memTaskStore)(nil)

func (m *memTaskStore) Create(_ context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *task
	m.tasks = append(m.tasks, &copied)
	return nil
}

func (m *memTaskStore) GetByID(_ context.Context, userID, id uuid.UUID) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, task := range m.tasks {
		if task.ID == id && task.UserID == userID {
			copied := *task
			return &copied, nil
		}
	}
	return nil, store.ErrTaskNotFound
}

func (m *memTaskStore) Update(_ context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.tasks {
		if existing.ID == task.ID && existing.UserID == task.UserID {
			copied := *task
			m.tasks[i] = &copied
			return nil
		}
	}
	return store.ErrTaskNotFound
}

func (m *memTaskStore) Delete(_ context.Context, userID, id uuid.UUID) error {
	return store.ErrTaskNotFound
}

func (m *memTaskStore) List(_ context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Task
	for _, task := range m.tasks {
		if task.UserID == filter.UserID {
			copied := *task
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memTaskStore) CountByStatus(
	_ context.Context,
	filter store.TaskFilter,
) (store.StatusCounts, error) {
	return store.StatusCounts{}, nil
}

func (m *memTaskStore) ListCalendar(
	_ context.Context,
	filter store.CalendarFilter,
) ([]*domain.Task, error) {
	return nil, nil
}

func (m *memTaskStore) BulkDelete(
	_ context.Context,
	userID uuid.UUID,
	ids []uuid.UUID,
) (int64, error) {
	return 0, nil
}

func (m *memTaskStore) BulkUpdateStatus(
	_ context.Context,
	userID uuid.UUID,
	ids []uuid.UUID,
	status *domain.TaskStatus,
	completedAt *time.Time,
) (int64, error) {
	return 0, nil
}

// memCategoryStore is a minimal in-memory CategoryStore for transfer tests.
type memCategoryStore struct {
	mu         sync.Mutex
	categories []*domain.Category
}

var _ store.CategoryStore = (*memCategoryStore)(nil)

func (m *memCategoryStore) Create(_ context.Context, category *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.categories {
		if existing.UserID == category.UserID && existing.Name == category.Name {
			return store.ErrCategoryExists
		}
	}
	copied := *category
	m.categories = append(m.categories, &copied)
	return nil
}

func (m *memCategoryStore) GetByID(
	_ context.Context,
	userID, id uuid.UUID,
) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, category := range m.categories {
		if category.ID == id && category.UserID == userID {
			copied := *category
			return &copied, nil
		}
	}
	return nil, store.ErrCategoryNotFound
}

func (m *memCategoryStore) GetByName(
	_ context.Context,
	userID uuid.UUID,
	name string,
) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, category := range m.categories {
		if category.UserID == userID && category.Name == name {
			copied := *category
			return &copied, nil
		}
	}
	return nil, store.ErrCategoryNotFound
}

func (m *memCategoryStore) ListByUser(
	_ context.Context,
	userID uuid.UUID,
) ([]*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Category
	for _, category := range m.categories {
		if category.UserID == userID {
			copied := *category
			out = append(out, &copied)
		}
	}
	return out, nil
}

// memStorage is an in-memory blob.Storage for transfer tests.
type memStorage struct {
	cloud bool
	blobs map[string][]byte
}

func newMemStorage(cloud bool) *memStorage {
	return &memStorage{cloud: cloud, blobs: make(map[string][]byte)}
}

func (m *memStorage) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.blobs[key] = data
	if m.cloud {
		return "https://example.blob.core.windows.net/uploads/" + key + "?sig=abc", nil
	}
	return "/api/uploads/" + key, nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	delete(m.blobs, key)
	return nil
}

func (m *memStorage) Cloud() bool { return m.cloud }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(cloud bool) (*transferService, *memTaskStore, *memStorage) {
	tasks := &memTaskStore{}
	categories := &memCategoryStore{}
	storage := newMemStorage(cloud)
	svc := &transferService{
		taskStore:     tasks,
		categoryStore: categories,
		categories:    service.NewCategoryService(categories, testLogger()),
		storage:       storage,
		logger:        testLogger(),
		now:           func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) },
	}
	return svc, tasks, storage
}

func seedTask(
	t *testing.T,
	svc *transferService,
	userID uuid.UUID,
	mutate func(*domain.Task),
) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(userID, "seeded")
	require.NoError(t, err)
	if mutate != nil {
		mutate(task)
	}
	require.NoError(t, svc.taskStore.Create(context.Background(), task))
	return task
}

func TestJSONExportImportRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()
	svc, _, _ := newTestService(false)

	category, err := svc.categories.ResolveOrCreate(ctx, userID, "Errands")
	require.NoError(t, err)

	due := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	seedTask(t, svc, userID, func(task *domain.Task) {
		task.Title = "buy milk"
		task.Status = domain.TaskStatusComplete
		completed := time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC)
		task.CompletedAt = &completed
		task.CategoryID = &category.ID
		task.DueDate = &due
		task.DueTime = "09:30"
		task.Priority = domain.TaskPriorityHigh
		task.Description = "two liters"
	})

	exported, err := svc.Export(ctx, userID, FormatJSON)
	require.NoError(t, err)
	require.NotEmpty(t, exported.Data, "local backend returns bytes inline")

	// Import into a fresh account on a fresh store.
	importSvc, importTasks, _ := newTestService(false)
	importerID := uuid.New()
	result, err := importSvc.Import(ctx, importerID, "tasks.json", "application/json", exported.Data)
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	require.Len(t, result.Imported, 1)

	imported := result.Imported[0]
	assert.Equal(t, "buy milk", imported.Title)
	assert.Equal(t, domain.TaskStatusComplete, imported.Status)
	assert.Equal(t, domain.TaskPriorityHigh, imported.Priority)
	assert.Equal(t, "two liters", imported.Description)
	assert.Equal(t, "09:30", imported.DueTime)
	require.NotNil(t, imported.DueDate)
	assert.True(t, due.Equal(*imported.DueDate))
	require.NotNil(t, imported.CategoryID)

	resolved, err := importSvc.categories.ResolveOrCreate(ctx, importerID, "Errands")
	require.NoError(t, err)
	assert.Equal(t, resolved.ID, *imported.CategoryID, "category recreated by name")

	saved, err := importTasks.GetByID(ctx, importerID, imported.ID)
	require.NoError(t, err)
	assert.Equal(t, imported, saved)
}

func TestCSVExportImportRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()
	svc, _, _ := newTestService(false)

	seedTask(t, svc, userID, func(task *domain.Task) {
		task.Title = "write report"
		task.Priority = domain.TaskPriorityLow
	})

	exported, err := svc.Export(ctx, userID, FormatCSV)
	require.NoError(t, err)

	importSvc, _, _ := newTestService(false)
	result, err := importSvc.Import(ctx, uuid.New(), "tasks.csv", "text/csv", exported.Data)
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	require.Len(t, result.Imported, 1)
	assert.Equal(t, "write report", result.Imported[0].Title)
	assert.Equal(t, domain.TaskPriorityLow, result.Imported[0].Priority)
}

func TestXLSXExportImportRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()
	svc, _, _ := newTestService(false)

	seedTask(t, svc, userID, func(task *domain.Task) {
		task.Title = "plan trip"
	})

	exported, err := svc.Export(ctx, userID, FormatExcel)
	require.NoError(t, err)

	importSvc, _, _ := newTestService(false)
	result, err := importSvc.Import(
		ctx,
		uuid.New(),
		"tasks.xlsx",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		exported.Data,
	)
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	require.Len(t, result.Imported, 1)
	assert.Equal(t, "plan trip", result.Imported[0].Title)
}

func TestImportJSONShapes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	bare := []byte(`[{"title": "a"}, {"title": "b"}]`)
	wrapped := []byte(`{"tasks": [{"title": "a"}, {"title": "b"}]}`)

	svc1, _, _ := newTestService(false)
	bareResult, err := svc1.Import(ctx, uuid.New(), "t.json", "application/json", bare)
	require.NoError(t, err)

	svc2, _, _ := newTestService(false)
	wrappedResult, err := svc2.Import(ctx, uuid.New(), "t.json", "application/json", wrapped)
	require.NoError(t, err)

	require.Len(t, bareResult.Imported, 2)
	require.Len(t, wrappedResult.Imported, 2)
	for i := range bareResult.Imported {
		assert.Equal(t, bareResult.Imported[i].Title, wrappedResult.Imported[i].Title)
		assert.Equal(t, bareResult.Imported[i].Status, wrappedResult.Imported[i].Status)
	}
}

func TestImportRejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tests := []struct {
		name    string
		payload string
	}{
		{"stringified objects", `[{"title": "[object Object]"}]`},
		{"scalar", `42`},
		{"object without tasks", `{"items": []}`},
		{"truncated", `[{"title": "a"`},
		{"empty", ``},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, _, _ := newTestService(false)
			_, err := svc.Import(ctx, uuid.New(), "t.json", "application/json", []byte(tt.payload))
			assert.ErrorIs(t, err, ErrMalformedJSON)
		})
	}
}

func TestImportCollectsRowErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := newTestService(false)

	payload := []byte(`[
		{"title": "good one"},
		{"description": "no title here"},
		{"title": "bad status", "status": "paused"},
		{"title": "bad date", "dueDate": "tomorrow"}
	]`)

	result, err := svc.Import(ctx, uuid.New(), "t.json", "application/json", payload)
	require.NoError(t, err, "row failures must not abort the import")

	assert.Len(t, result.Imported, 1)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0].Error, "title")
	assert.Contains(t, result.Errors[1].Error, "status")
	assert.Contains(t, result.Errors[2].Error, "date")
}

func TestRecordLookupAliases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		record Record
		field  string
		want   string
	}{
		{"lowerCamel key", Record{"dueDate": "2025-01-01"}, "dueDate", "2025-01-01"},
		{"export header key", Record{"Due Date": "2025-01-01"}, "dueDate", "2025-01-01"},
		{
			"lowerCamel wins over header",
			Record{"dueDate": "2025-01-01", "Due Date": "2025-12-31"},
			"dueDate",
			"2025-01-01",
		},
		{"missing key", Record{}, "dueDate", ""},
		{"explicit null", Record{"dueDate": nil}, "dueDate", ""},
		{"non-string scalar", Record{"title": 42}, "title", "42"},
		{"whitespace trimmed", Record{"title": "  padded  "}, "title", "padded"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.record.lookup(tt.field))
		})
	}
}

func TestExportUploadsWhenCloud(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()
	svc, _, storage := newTestService(true)
	seedTask(t, svc, userID, nil)

	exported, err := svc.Export(ctx, userID, FormatCSV)
	require.NoError(t, err)

	assert.Empty(t, exported.Data, "cloud backend returns a URL, not bytes")
	assert.Contains(t, exported.DownloadURL, "exports/"+userID.String()+"/")
	assert.Len(t, storage.blobs, 1)
}

func TestExportLogsForEveryBackend(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	for _, cloud := range []bool{false, true} {
		cloud := cloud
		name := "local"
		if cloud {
			name = "cloud"
		}
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			svc, _, _ := newTestService(cloud)

			var logs strings.Builder
			svc.logger = slog.New(slog.NewTextHandler(&logs, nil))

			seedTask(t, svc, userID, nil)
			_, err := svc.Export(ctx, userID, FormatCSV)
			require.NoError(t, err)

			assert.Contains(t, logs.String(), "tasks exported")
		})
	}
}

func TestBackup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	t.Run("local backend returns bytes", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newTestService(false)
		seedTask(t, svc, userID, nil)

		backup, err := svc.Backup(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 1, backup.TotalTasks)
		assert.NotEmpty(t, backup.Data)
		assert.Contains(t, string(backup.Data), `"totalTasks": 1`)
	})

	t.Run("cloud backend uploads under backups prefix", func(t *testing.T) {
		t.Parallel()
		svc, _, storage := newTestService(true)
		seedTask(t, svc, userID, nil)

		backup, err := svc.Backup(ctx, userID)
		require.NoError(t, err)
		assert.Contains(t, backup.DownloadURL, "backups/"+userID.String()+"/")
		assert.Len(t, storage.blobs, 1)
	})
}
