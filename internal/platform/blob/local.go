package blob

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/todox-app/todox-api/internal/platform/logger"
)

// localURLPrefix is where the HTTP server mounts the uploads directory.
const localURLPrefix = "/api/uploads/"

// localStorage writes objects beneath the uploads directory and returns
// relative paths served by the static file handler.
type localStorage struct {
	baseDir string
	logger  *slog.Logger
}

var _ Storage = (*localStorage)(nil)

// newLocalStorage creates the local-disk backend, creating the uploads
// directory if needed.
func newLocalStorage(baseDir string, log *slog.Logger) (*localStorage, error) {
	if log == nil {
		log = slog.Default()
	}
	if baseDir == "" {
		baseDir = "uploads"
	}

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory %s: %w", baseDir, err)
	}

	return &localStorage{
		baseDir: baseDir,
		logger:  log.With(slog.String("component", "local_storage")),
	}, nil
}

// Cloud implements Storage.Cloud.
func (s *localStorage) Cloud() bool { return false }

// Upload implements Storage.Upload.
func (s *localStorage) Upload(
	ctx context.Context,
	key string,
	data []byte,
	contentType string,
) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	path, err := s.resolve(key)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Error("failed to write file",
			slog.String("error", err.Error()),
			slog.String("key", key))
		return "", fmt.Errorf("failed to write file %s: %w", key, err)
	}

	log.Debug("file stored locally",
		slog.String("key", key),
		slog.Int("size", len(data)))
	return localURLPrefix + key, nil
}

// Delete implements Storage.Delete. Deleting a missing file is a no-op.
func (s *localStorage) Delete(ctx context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", key, err)
	}
	return nil
}

// resolve maps a key to a filesystem path, rejecting traversal outside the
// uploads directory.
func (s *localStorage) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key: %s", key)
	}
	return filepath.Join(s.baseDir, clean), nil
}

// BaseDir exposes the uploads directory so the HTTP server can mount it
// for static serving.
func (s *localStorage) BaseDir() string { return s.baseDir }
