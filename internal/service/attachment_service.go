package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/todox-app/todox-api/internal/domain"
	"github.com/todox-app/todox-api/internal/platform/blob"
	"github.com/todox-app/todox-api/internal/store"
)

// AttachmentService manages the binary files bound to tasks. Attachments
// require the cloud storage backend; the local fallback never holds them.
type AttachmentService interface {
	// Upload stores the file in cloud storage and appends it to the task's
	// attachment list. Returns ErrStorageUnavailable when only local storage
	// is configured, and store.ErrTaskNotFound when the task does not exist
	// or belongs to another user.
	Upload(
		ctx context.Context,
		userID, taskID uuid.UUID,
		filename, contentType string,
		data []byte,
	) (*domain.Attachment, error)

	// Delete removes the attachment from the task's list and best-effort
	// deletes the stored blob. A failed blob delete is logged but does not
	// fail the operation; the task row is always updated.
	Delete(ctx context.Context, userID, taskID, attachmentID uuid.UUID) error
}

type attachmentService struct {
	taskStore store.TaskStore
	storage   blob.Storage
	logger    *slog.Logger
	now       func() time.Time // Injectable for testing
}

var _ AttachmentService = (*attachmentService)(nil)

// NewAttachmentService creates a new AttachmentService.
func NewAttachmentService(
	taskStore store.TaskStore,
	storage blob.Storage,
	logger *slog.Logger,
) AttachmentService {
	return &attachmentService{
		taskStore: taskStore,
		storage:   storage,
		logger:    logger.With("component", "attachment_service"),
		now:       time.Now,
	}
}

// Upload implements AttachmentService.Upload.
func (s *attachmentService) Upload(
	ctx context.Context,
	userID, taskID uuid.UUID,
	filename, contentType string,
	data []byte,
) (*domain.Attachment, error) {
	if !s.storage.Cloud() {
		return nil, ErrStorageUnavailable
	}

	task, err := s.taskStore.GetByID(ctx, userID, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}

	uploadedAt := s.now().UTC()
	key := fmt.Sprintf("%s/%s/%s/%d_%s",
		blob.PurposeAttachments, userID, taskID, uploadedAt.UnixMilli(), filename)

	url, err := s.storage.Upload(ctx, key, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload attachment: %w", err)
	}

	attachment := domain.Attachment{
		ID:         uuid.New(),
		Name:       filename,
		URL:        url,
		Type:       contentType,
		Size:       int64(len(data)),
		UploadedAt: uploadedAt,
	}

	task.Attachments = append(task.Attachments, attachment)
	task.Touch()
	if err := s.taskStore.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to save attachment: %w", err)
	}

	s.logger.Info("attachment uploaded",
		"user_id", userID,
		"task_id", taskID,
		"attachment_id", attachment.ID,
		"size", attachment.Size)
	return &attachment, nil
}

// Delete implements AttachmentService.Delete.
func (s *attachmentService) Delete(
	ctx context.Context,
	userID, taskID, attachmentID uuid.UUID,
) error {
	task, err := s.taskStore.GetByID(ctx, userID, taskID)
	if err != nil {
		return fmt.Errorf("failed to load task: %w", err)
	}

	index := -1
	for i, a := range task.Attachments {
		if a.ID == attachmentID {
			index = i
			break
		}
	}
	if index == -1 {
		return fmt.Errorf("%w: %s", store.ErrAttachmentNotFound, attachmentID)
	}

	// The blob delete is best effort. The attachment record is removed even
	// when storage fails, leaving at worst an orphaned blob that ages out
	// with its SAS URL.
	attachment := task.Attachments[index]
	if key, err := blob.KeyFromURL(attachment.URL); err != nil {
		s.logger.Warn("could not derive storage key from attachment URL",
			"error", err,
			"attachment_id", attachmentID)
	} else if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to delete attachment blob",
			"error", err,
			"attachment_id", attachmentID,
			"key", key)
	}

	task.Attachments = append(task.Attachments[:index], task.Attachments[index+1:]...)
	task.Touch()
	if err := s.taskStore.Update(ctx, task); err != nil {
		return fmt.Errorf("failed to save task after attachment removal: %w", err)
	}

	return nil
}
