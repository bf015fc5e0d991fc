// Package blob selects and implements the binary storage backend: Azure
// Blob Storage when an account is configured, the local uploads directory
// otherwise. Both backends expose the same upload/delete/URL contract, so
// services never know which one they talk to.
package blob

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/todox-app/todox-api/internal/config"
)

// Purpose partitions stored objects and determines how long their
// download URLs stay valid.
type Purpose string

// Storage purposes. The purpose is always the first segment of a key.
const (
	PurposeAvatars     Purpose = "avatars"
	PurposeAttachments Purpose = "attachments"
	PurposeBackups     Purpose = "backups"
	PurposeExports     Purpose = "exports"
)

// URLLifetime returns how long a signed URL for this purpose remains valid.
func (p Purpose) URLLifetime() time.Duration {
	switch p {
	case PurposeBackups:
		return 30 * 24 * time.Hour
	case PurposeExports:
		return time.Hour
	default: // avatars, attachments
		return 365 * 24 * time.Hour
	}
}

var knownPurposes = map[string]struct{}{
	string(PurposeAvatars):     {},
	string(PurposeAttachments): {},
	string(PurposeBackups):     {},
	string(PurposeExports):     {},
}

// ErrNoKey is returned by KeyFromURL when no storage key can be recovered
// from the given URL.
var ErrNoKey = errors.New("no storage key in URL")

// Storage is the uniform contract over the cloud and local backends.
type Storage interface {
	// Upload stores data under key and returns a URL from which it can be
	// read: a time-limited signed URL for the cloud backend, a relative
	// path for the local one. The key's first segment must be a Purpose.
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Delete removes the object stored under key. Deleting a missing
	// object is not an error.
	Delete(ctx context.Context, key string) error

	// Cloud reports whether this backend issues signed cloud URLs.
	// Attachments require a cloud backend; avatars, backups and exports
	// fall back to local storage or direct responses.
	Cloud() bool
}

// New selects the storage backend from configuration: Azure when an account
// name (production, managed identity) or connection string (development) is
// present, the local uploads directory otherwise.
func New(cfg config.Config, logger *slog.Logger) (Storage, error) {
	st := cfg.Storage

	useIdentity := cfg.Server.Env == "production"
	if (useIdentity && st.AccountName != "") || (!useIdentity && st.ConnectionString != "") {
		azure, err := newAzureStorage(st, useIdentity, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize azure storage: %w", err)
		}
		return azure, nil
	}

	return newLocalStorage(st.UploadsDir, logger)
}

// KeyFromURL recovers a storage key from a URL previously returned by
// Upload. The key starts at the first path segment naming a known purpose,
// which holds for both signed cloud URLs
// (https://acct.blob.core.windows.net/container/attachments/u/t/f?sas) and
// local paths (/api/uploads/avatars/u/f).
//
// This is an inverse mapping over URL shape: if Upload ever changes its
// key layout this must change with it, which is why it is covered by tests.
func KeyFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNoKey, rawURL)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, segment := range segments {
		if _, ok := knownPurposes[segment]; ok {
			return strings.Join(segments[i:], "/"), nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNoKey, rawURL)
}
