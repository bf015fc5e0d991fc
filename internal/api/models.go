package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/todox-app/todox-api/internal/domain"
	"github.com/todox-app/todox-api/internal/service"
	"github.com/todox-app/todox-api/internal/service/transfer"
)

// --- Auth ---

// RegisterRequest is the payload for user registration.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest is the payload for user login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public shape of a user.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthResponse carries a bearer token together with the user it belongs to.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// ProfileResponse wraps the authenticated user's profile.
type ProfileResponse struct {
	User UserResponse `json:"user"`
}

// NewUserResponse converts a domain user to its public shape.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Avatar:    user.AvatarURL,
		CreatedAt: user.CreatedAt,
	}
}

// --- Tasks ---

// AttachmentResponse is the public shape of a task attachment.
type AttachmentResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// TaskResponse is the public shape of a task. Dates are date-only strings;
// timestamps are RFC 3339.
type TaskResponse struct {
	ID          uuid.UUID            `json:"id"`
	Title       string               `json:"title"`
	Status      domain.TaskStatus    `json:"status"`
	CompletedAt *time.Time           `json:"completedAt"`
	CategoryID  *uuid.UUID           `json:"categoryId"`
	DueDate     *string              `json:"dueDate"`
	DueTime     string               `json:"dueTime,omitempty"`
	Priority    domain.TaskPriority  `json:"priority"`
	Description string               `json:"description"`
	Attachments []AttachmentResponse `json:"attachments"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// NewTaskResponse converts a domain task to its public shape.
func NewTaskResponse(task *domain.Task) TaskResponse {
	attachments := make([]AttachmentResponse, 0, len(task.Attachments))
	for _, a := range task.Attachments {
		attachments = append(attachments, AttachmentResponse{
			ID:         a.ID,
			Name:       a.Name,
			URL:        a.URL,
			Type:       a.Type,
			Size:       a.Size,
			UploadedAt: a.UploadedAt,
		})
	}

	var dueDate *string
	if task.DueDate != nil {
		formatted := task.DueDate.UTC().Format("2006-01-02")
		dueDate = &formatted
	}

	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Status:      task.Status,
		CompletedAt: task.CompletedAt,
		CategoryID:  task.CategoryID,
		DueDate:     dueDate,
		DueTime:     task.DueTime,
		Priority:    task.Priority,
		Description: task.Description,
		Attachments: attachments,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// NewTaskResponses converts a slice of domain tasks.
func NewTaskResponses(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, NewTaskResponse(task))
	}
	return out
}

// TaskListResponse is the task listing payload, counts included.
type TaskListResponse struct {
	Tasks         []TaskResponse `json:"tasks"`
	ActiveCount   int            `json:"activeCount"`
	CompleteCount int            `json:"completeCount"`
}

// CreateTaskRequest is the payload for creating a task.
type CreateTaskRequest struct {
	Title       string     `json:"title"       validate:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status"      validate:"omitempty,oneof=active complete"`
	Priority    string     `json:"priority"    validate:"omitempty,oneof=low medium high"`
	CategoryID  *uuid.UUID `json:"categoryId"`
	DueDate     *string    `json:"dueDate"`
	DueTime     string     `json:"dueTime"`
	CompletedAt *time.Time `json:"completedAt"`
}

// UpdateTaskRequest is the payload for a partial task update. Absent keys
// leave fields untouched; explicit nulls clear them where that makes sense.
type UpdateTaskRequest struct {
	Title       service.Optional[string]    `json:"title"`
	Description service.Optional[string]    `json:"description"`
	Status      service.Optional[string]    `json:"status"`
	Priority    service.Optional[string]    `json:"priority"`
	CategoryID  service.Optional[uuid.UUID] `json:"categoryId"`
	DueDate     service.Optional[string]    `json:"dueDate"`
	DueTime     service.Optional[string]    `json:"dueTime"`
	CompletedAt service.Optional[time.Time] `json:"completedAt"`
}

// BulkDeleteRequest is the payload for bulk task deletion.
type BulkDeleteRequest struct {
	TaskIDs []uuid.UUID `json:"taskIds" validate:"required,min=1"`
}

// BulkDeleteResponse reports how many tasks a bulk delete removed.
type BulkDeleteResponse struct {
	DeletedCount int64 `json:"deletedCount"`
}

// BulkUpdateRequest is the payload for bulk status updates.
type BulkUpdateRequest struct {
	TaskIDs     []uuid.UUID `json:"taskIds"     validate:"required,min=1"`
	Status      *string     `json:"status"      validate:"omitempty,oneof=active complete"`
	CompletedAt *time.Time  `json:"completedAt"`
}

// BulkUpdateResponse reports how many tasks a bulk update touched.
type BulkUpdateResponse struct {
	ModifiedCount int64 `json:"modifiedCount"`
}

// --- Categories ---

// CategoryResponse is the public shape of a category.
type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewCategoryResponse converts a domain category to its public shape.
func NewCategoryResponse(category *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:        category.ID,
		Name:      category.Name,
		CreatedAt: category.CreatedAt,
	}
}

// CreateCategoryRequest is the payload for creating a category.
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// --- Transfer ---

// ImportResponse reports an import's outcome: the saved tasks plus any
// per-row failures.
type ImportResponse struct {
	ImportedTasks []TaskResponse         `json:"importedTasks"`
	Errors        []transfer.ImportError `json:"errors,omitempty"`
}

// ExportURLResponse carries the download URL of a cloud-stored export.
type ExportURLResponse struct {
	DownloadURL string `json:"downloadUrl"`
}

// BackupResponse reports a backup stored in the cloud backend.
type BackupResponse struct {
	BackupURL  string `json:"backupUrl"`
	TotalTasks int    `json:"totalTasks"`
}

// AttachmentUploadResponse wraps a freshly uploaded attachment.
type AttachmentUploadResponse struct {
	Attachment AttachmentResponse `json:"attachment"`
}
