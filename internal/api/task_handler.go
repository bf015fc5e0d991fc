package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/todox-app/todox-api/internal/api/shared"
	"github.com/todox-app/todox-api/internal/domain"
	"github.com/todox-app/todox-api/internal/service"
)

// TaskHandler handles task CRUD, bulk and calendar API requests.
type TaskHandler struct {
	taskService service.TaskService
	validator   *validator.Validate
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		validator:   validator.New(),
	}
}

// List handles GET /tasks?filter=&category=.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	result, err := h.taskService.List(
		r.Context(),
		userID,
		r.URL.Query().Get("filter"),
		r.URL.Query().Get("category"),
	)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Tasks:         NewTaskResponses(result.Tasks),
		ActiveCount:   result.ActiveCount,
		CompleteCount: result.CompleteCount,
	})
}

// Calendar handles GET /tasks/calendar?startDate=&endDate=&category=.
func (h *TaskHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	start, err := parseDateParam(r.URL.Query().Get("startDate"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid startDate")
		return
	}
	end, err := parseDateParam(r.URL.Query().Get("endDate"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid endDate")
		return
	}

	tasks, err := h.taskService.Calendar(r.Context(), userID, start, end, r.URL.Query().Get("category"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load calendar tasks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string][]TaskResponse{
		"tasks": NewTaskResponses(tasks),
	})
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+SanitizeValidationError(err))
		return
	}

	dueDate, err := parseDateValue(req.DueDate)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid dueDate")
		return
	}

	task, err := h.taskService.Create(r.Context(), userID, service.TaskCreation{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
		Priority:    domain.TaskPriority(req.Priority),
		CategoryID:  req.CategoryID,
		DueDate:     dueDate,
		DueTime:     req.DueTime,
		CompletedAt: req.CompletedAt,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewTaskResponse(task))
}

// Update handles PUT /tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	changes, err := taskChangesFromRequest(req)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.taskService.Update(r.Context(), userID, taskID, changes)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.taskService.Delete(r.Context(), userID, taskID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"message": "Task deleted"})
}

// BulkDelete handles POST /tasks/bulk-delete.
func (h *TaskHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req BulkDeleteRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "taskIds is required")
		return
	}

	deleted, err := h.taskService.BulkDelete(r.Context(), userID, req.TaskIDs)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete tasks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, BulkDeleteResponse{DeletedCount: deleted})
}

// BulkUpdate handles POST /tasks/bulk-update.
func (h *TaskHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req BulkUpdateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+SanitizeValidationError(err))
		return
	}

	var status *domain.TaskStatus
	if req.Status != nil {
		s := domain.TaskStatus(*req.Status)
		status = &s
	}

	modified, err := h.taskService.BulkUpdate(r.Context(), userID, req.TaskIDs, status, req.CompletedAt)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update tasks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, BulkUpdateResponse{ModifiedCount: modified})
}

// taskChangesFromRequest converts the wire-level partial update into service
// changes, parsing the date fields.
func taskChangesFromRequest(req UpdateTaskRequest) (service.TaskChanges, error) {
	changes := service.TaskChanges{
		Title:       req.Title,
		Description: req.Description,
		DueTime:     req.DueTime,
		CompletedAt: req.CompletedAt,
	}

	if req.Status.Set {
		changes.Status = convertOptional(req.Status, func(s string) domain.TaskStatus {
			return domain.TaskStatus(s)
		})
	}
	if req.Priority.Set {
		changes.Priority = convertOptional(req.Priority, func(s string) domain.TaskPriority {
			return domain.TaskPriority(s)
		})
	}
	changes.CategoryID = req.CategoryID

	if req.DueDate.Set {
		if req.DueDate.Value == nil {
			changes.DueDate = service.Null[time.Time]()
		} else {
			parsed, err := parseDateValue(req.DueDate.Value)
			if err != nil || parsed == nil {
				return service.TaskChanges{}, fmt.Errorf("invalid dueDate")
			}
			changes.DueDate = service.Some(*parsed)
		}
	}

	return changes, nil
}

// convertOptional maps a set Optional[string] through fn, preserving nulls.
func convertOptional[T any](opt service.Optional[string], fn func(string) T) service.Optional[T] {
	if opt.Value == nil {
		return service.Null[T]()
	}
	return service.Some(fn(*opt.Value))
}

// parseDateValue parses a date-only or RFC 3339 string. Nil and empty
// values yield nil.
func parseDateValue(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, *value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date %q", *value)
}

// parseDateParam parses an optional date query parameter.
func parseDateParam(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	return parseDateValue(&value)
}
