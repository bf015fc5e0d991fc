package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/todox-app/todox-api/internal/domain"
	"github.com/todox-app/todox-api/internal/platform/blob"
	"github.com/todox-app/todox-api/internal/service"
	"github.com/todox-app/todox-api/internal/store"
)

// Export formats.
const (
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatExcel = "excel"
)

// ErrUnsupportedFormat indicates an export format or import content type
// this service cannot handle.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ExportResult is an export artifact: inline bytes when the local backend
// is active, a time-limited download URL otherwise.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
	DownloadURL string
}

// ImportError records one rejected import row together with its source data.
type ImportError struct {
	Data  Record `json:"data"`
	Error string `json:"error"`
}

// ImportResult reports the outcome of an import: saved tasks plus the
// per-row failures. Imports never roll back; partial success is expected.
type ImportResult struct {
	Imported []*domain.Task
	Errors   []ImportError
}

// BackupResult is a backup artifact, delivered like an export: inline bytes
// locally, a download URL from the cloud backend.
type BackupResult struct {
	Filename    string
	Data        []byte
	DownloadURL string
	TotalTasks  int
}

// backupDocument is the JSON shape of a backup file.
type backupDocument struct {
	UserID     uuid.UUID      `json:"userId"`
	BackupDate time.Time      `json:"backupDate"`
	TotalTasks int            `json:"totalTasks"`
	Tasks      []*domain.Task `json:"tasks"`
}

// Service moves a user's tasks across the system boundary.
type Service interface {
	// Export renders all of the user's tasks in the given format. With the
	// cloud backend the artifact is uploaded under a short-lived URL;
	// locally the bytes are returned inline.
	Export(ctx context.Context, userID uuid.UUID, format string) (*ExportResult, error)

	// Import parses the uploaded file (dispatching on content type), then
	// saves each row as a task. Row failures are collected, not fatal.
	Import(
		ctx context.Context,
		userID uuid.UUID,
		filename, contentType string,
		data []byte,
	) (*ImportResult, error)

	// Backup produces a JSON snapshot of all the user's tasks, attachments
	// and IDs included.
	Backup(ctx context.Context, userID uuid.UUID) (*BackupResult, error)
}

type transferService struct {
	taskStore     store.TaskStore
	categoryStore store.CategoryStore
	categories    service.CategoryService
	storage       blob.Storage
	logger        *slog.Logger
	now           func() time.Time // Injectable for testing
}

var _ Service = (*transferService)(nil)

// NewService creates a new transfer Service.
func NewService(
	taskStore store.TaskStore,
	categoryStore store.CategoryStore,
	categories service.CategoryService,
	storage blob.Storage,
	logger *slog.Logger,
) Service {
	return &transferService{
		taskStore:     taskStore,
		categoryStore: categoryStore,
		categories:    categories,
		storage:       storage,
		logger:        logger.With("component", "transfer_service"),
		now:           time.Now,
	}
}

// Export implements Service.Export.
func (s *transferService) Export(
	ctx context.Context,
	userID uuid.UUID,
	format string,
) (*ExportResult, error) {
	tasks, err := s.taskStore.List(ctx, store.TaskFilter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	names, err := s.categoryNames(ctx, userID)
	if err != nil {
		return nil, err
	}

	var (
		data        []byte
		contentType string
		extension   string
	)
	switch format {
	case FormatCSV:
		data, err = encodeCSV(exportRows(tasks, names))
		contentType, extension = "text/csv", "csv"
	case FormatExcel:
		data, err = encodeXLSX(exportRows(tasks, names))
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		extension = "xlsx"
	case FormatJSON:
		data, err = encodeJSON(exportTasks(tasks, names))
		contentType, extension = "application/json", "json"
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("tasks_export_%s.%s", s.now().UTC().Format("2006-01-02"), extension)
	result := &ExportResult{Filename: filename, ContentType: contentType}

	s.logger.Info("tasks exported",
		"user_id", userID,
		"format", format,
		"task_count", len(tasks))

	if !s.storage.Cloud() {
		result.Data = data
		return result, nil
	}

	key := fmt.Sprintf("%s/%s/%d_%s", blob.PurposeExports, userID, s.now().UnixMilli(), filename)
	url, err := s.storage.Upload(ctx, key, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload export: %w", err)
	}
	result.DownloadURL = url

	return result, nil
}

// Import implements Service.Import.
func (s *transferService) Import(
	ctx context.Context,
	userID uuid.UUID,
	filename, contentType string,
	data []byte,
) (*ImportResult, error) {
	records, err := s.parse(filename, contentType, data)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Imported: []*domain.Task{}, Errors: []ImportError{}}
	for _, record := range records {
		task, err := s.importRecord(ctx, userID, record)
		if err != nil {
			result.Errors = append(result.Errors, ImportError{Data: record, Error: err.Error()})
			continue
		}
		result.Imported = append(result.Imported, task)
	}

	s.logger.Info("tasks imported",
		"user_id", userID,
		"imported_count", len(result.Imported),
		"error_count", len(result.Errors))
	return result, nil
}

// Backup implements Service.Backup.
func (s *transferService) Backup(ctx context.Context, userID uuid.UUID) (*BackupResult, error) {
	tasks, err := s.taskStore.List(ctx, store.TaskFilter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	now := s.now().UTC()
	document := backupDocument{
		UserID:     userID,
		BackupDate: now,
		TotalTasks: len(tasks),
		Tasks:      tasks,
	}
	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal backup: %w", err)
	}

	filename := fmt.Sprintf("backup_%s.json", now.Format("2006-01-02"))
	result := &BackupResult{Filename: filename, TotalTasks: len(tasks)}

	if !s.storage.Cloud() {
		result.Data = data
		return result, nil
	}

	key := fmt.Sprintf("%s/%s/%d_%s", blob.PurposeBackups, userID, now.UnixMilli(), filename)
	url, err := s.storage.Upload(ctx, key, data, "application/json")
	if err != nil {
		return nil, fmt.Errorf("failed to upload backup: %w", err)
	}
	result.DownloadURL = url

	s.logger.Info("backup created",
		"user_id", userID,
		"task_count", len(tasks))
	return result, nil
}

// parse dispatches on content type, falling back to the file extension for
// generic types.
func (s *transferService) parse(filename, contentType string, data []byte) ([]Record, error) {
	mediaType := contentType
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = mediaType[:i]
	}
	mediaType = strings.TrimSpace(strings.ToLower(mediaType))

	switch mediaType {
	case "text/csv", "application/vnd.ms-excel":
		return decodeCSV(data)
	case "application/json":
		return decodeJSON(data)
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return decodeXLSX(data)
	}

	switch strings.ToLower(path.Ext(filename)) {
	case ".csv":
		return decodeCSV(data)
	case ".json":
		return decodeJSON(data)
	case ".xlsx":
		return decodeXLSX(data)
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, contentType)
}

// importRecord turns one record into a saved task.
func (s *transferService) importRecord(
	ctx context.Context,
	userID uuid.UUID,
	record Record,
) (*domain.Task, error) {
	title := record.lookup("title")
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	task, err := domain.NewTask(userID, title)
	if err != nil {
		return nil, err
	}
	task.Description = record.lookup("description")
	task.DueTime = record.lookup("dueTime")

	if status := record.lookup("status"); status != "" {
		task.Status = domain.TaskStatus(strings.ToLower(status))
		if err := domain.ValidateTaskStatus(task.Status); err != nil {
			return nil, fmt.Errorf("%w: %q", err, status)
		}
	}
	if priority := record.lookup("priority"); priority != "" {
		task.Priority = domain.TaskPriority(strings.ToLower(priority))
		if err := domain.ValidateTaskPriority(task.Priority); err != nil {
			return nil, fmt.Errorf("%w: %q", err, priority)
		}
	}

	task.DueDate, err = parseDate(record.lookup("dueDate"))
	if err != nil {
		return nil, fmt.Errorf("invalid due date: %w", err)
	}

	if task.Status == domain.TaskStatusComplete {
		completedAt, err := parseDate(record.lookup("completedAt"))
		if err != nil {
			return nil, fmt.Errorf("invalid completion date: %w", err)
		}
		if completedAt == nil {
			now := s.now().UTC()
			completedAt = &now
		}
		task.CompletedAt = completedAt
	}

	if name := record.lookup("category"); name != "" {
		category, err := s.categories.ResolveOrCreate(ctx, userID, name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve category %q: %w", name, err)
		}
		task.CategoryID = &category.ID
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}
	return task, nil
}

// categoryNames loads the user's categories keyed by ID.
func (s *transferService) categoryNames(
	ctx context.Context,
	userID uuid.UUID,
) (map[uuid.UUID]string, error) {
	categories, err := s.categoryStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	names := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}

// exportRows renders tasks as tabular rows in the export column order.
// Absent values render as empty strings.
func exportRows(tasks []*domain.Task, names map[uuid.UUID]string) [][]string {
	rows := make([][]string, 0, len(tasks)+1)
	rows = append(rows, exportColumns)
	for _, t := range tasks {
		rows = append(rows, []string{
			t.Title,
			string(t.Status),
			categoryName(t, names),
			formatDate(t.DueDate),
			t.DueTime,
			string(t.Priority),
			t.Description,
			formatTimestamp(&t.CreatedAt),
			formatTimestamp(&t.UpdatedAt),
			formatTimestamp(t.CompletedAt),
		})
	}
	return rows
}

// exportTasks renders tasks in the JSON export shape, with explicit nulls
// for absent values.
func exportTasks(tasks []*domain.Task, names map[uuid.UUID]string) []taskExport {
	out := make([]taskExport, 0, len(tasks))
	for _, t := range tasks {
		entry := taskExport{
			Title:       t.Title,
			Status:      string(t.Status),
			Priority:    string(t.Priority),
			Description: t.Description,
			CreatedAt:   formatTimestamp(&t.CreatedAt),
			UpdatedAt:   formatTimestamp(&t.UpdatedAt),
		}
		if name := categoryName(t, names); name != "" {
			entry.Category = &name
		}
		if t.DueDate != nil {
			date := formatDate(t.DueDate)
			entry.DueDate = &date
		}
		if t.DueTime != "" {
			entry.DueTime = &t.DueTime
		}
		if t.CompletedAt != nil {
			ts := formatTimestamp(t.CompletedAt)
			entry.CompletedAt = &ts
		}
		out = append(out, entry)
	}
	return out
}

func categoryName(t *domain.Task, names map[uuid.UUID]string) string {
	if t.CategoryID == nil {
		return ""
	}
	return names[*t.CategoryID]
}
