package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/todox-app/todox-api/internal/api/shared"
	"github.com/todox-app/todox-api/internal/service/transfer"
)

// maxImportBytes caps import uploads at 10MB.
const maxImportBytes = 10 << 20

// TransferHandler handles task export, import and backup API requests.
type TransferHandler struct {
	transferService transfer.Service
}

// NewTransferHandler creates a new TransferHandler with the given dependencies.
func NewTransferHandler(transferService transfer.Service) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

// Export handles GET /tasks/export/{format}. Inline artifacts are written
// as a file download; cloud-stored ones come back as a download URL.
func (h *TransferHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	result, err := h.transferService.Export(r.Context(), userID, chi.URLParam(r, "format"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to export tasks")
		return
	}

	if result.DownloadURL != "" {
		shared.RespondWithJSON(w, r, http.StatusOK, ExportURLResponse{DownloadURL: result.DownloadURL})
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}

// Import handles POST /tasks/import. Expects a multipart form with a "file"
// field carrying CSV, JSON or XLSX content.
func (h *TransferHandler) Import(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	data, filename, contentType, ok := readUploadedFile(w, r, "file", maxImportBytes)
	if !ok {
		return
	}

	result, err := h.transferService.Import(r.Context(), userID, filename, contentType, data)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to import tasks")
		return
	}

	response := ImportResponse{ImportedTasks: NewTaskResponses(result.Imported)}
	if len(result.Errors) > 0 {
		response.Errors = result.Errors
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, response)
}

// Backup handles POST /tasks/backup.
func (h *TransferHandler) Backup(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	result, err := h.transferService.Backup(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create backup")
		return
	}

	if result.DownloadURL != "" {
		shared.RespondWithJSON(w, r, http.StatusOK, BackupResponse{
			BackupURL:  result.DownloadURL,
			TotalTasks: result.TotalTasks,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}
