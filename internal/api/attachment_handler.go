package api

import (
	"net/http"
	"strings"

	"github.com/todox-app/todox-api/internal/api/shared"
	"github.com/todox-app/todox-api/internal/service"
)

// maxAttachmentBytes caps attachment uploads at 10MB.
const maxAttachmentBytes = 10 << 20

// attachmentContentTypes is the allow-list for attachment uploads: images,
// documents, spreadsheets, plain text and archives.
var attachmentContentTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/gif":       {},
	"image/webp":      {},
	"application/pdf": {},
	"text/plain":      {},
	"text/csv":        {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/vnd.ms-excel": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       {},
	"application/zip": {},
}

// AttachmentHandler handles task attachment API requests.
type AttachmentHandler struct {
	attachmentService service.AttachmentService
}

// NewAttachmentHandler creates a new AttachmentHandler with the given dependencies.
func NewAttachmentHandler(attachmentService service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService}
}

// Upload handles POST /tasks/{taskId}/attachments. Expects a multipart form
// with a "file" field.
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserIDAndPathUUID(w, r, "taskId")
	if !ok {
		return
	}

	data, filename, contentType, ok := readUploadedFile(w, r, "file", maxAttachmentBytes)
	if !ok {
		return
	}

	if _, allowed := attachmentContentTypes[strings.ToLower(contentType)]; !allowed {
		HandleAPIError(w, r, service.ErrUnsupportedFileType, "")
		return
	}

	attachment, err := h.attachmentService.Upload(r.Context(), userID, taskID, filename, contentType, data)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to upload attachment")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AttachmentUploadResponse{
		Attachment: AttachmentResponse{
			ID:         attachment.ID,
			Name:       attachment.Name,
			URL:        attachment.URL,
			Type:       attachment.Type,
			Size:       attachment.Size,
			UploadedAt: attachment.UploadedAt,
		},
	})
}

// Delete handles DELETE /tasks/{taskId}/attachments/{attachmentId}.
func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserIDAndPathUUID(w, r, "taskId")
	if !ok {
		return
	}

	attachmentID, err := getPathUUID(r, "attachmentId")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.attachmentService.Delete(r.Context(), userID, taskID, attachmentID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete attachment")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"message": "Attachment deleted"})
}
