package blob

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	azbloblib "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"

	"github.com/todox-app/todox-api/internal/config"
	"github.com/todox-app/todox-api/internal/platform/logger"
)

// azureStorage stores objects as block blobs in a single container and
// returns SAS URLs scoped to the purpose's lifetime.
type azureStorage struct {
	client    *azblob.Client
	container string
	logger    *slog.Logger

	ensureOnce sync.Once
	ensureErr  error
}

var _ Storage = (*azureStorage)(nil)

// newAzureStorage builds the Azure backend. In production mode it
// authenticates with the default credential chain (managed identity);
// otherwise it uses the configured connection string.
func newAzureStorage(
	cfg config.StorageConfig,
	useIdentity bool,
	log *slog.Logger,
) (*azureStorage, error) {
	if log == nil {
		log = slog.Default()
	}

	var (
		client *azblob.Client
		err    error
	)

	if useIdentity {
		cred, credErr := azidentity.NewDefaultAzureCredential(nil)
		if credErr != nil {
			return nil, fmt.Errorf("failed to obtain azure credential: %w", credErr)
		}
		serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net", cfg.AccountName)
		client, err = azblob.NewClient(serviceURL, cred, nil)
	} else {
		client, err = azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create azure blob client: %w", err)
	}

	return &azureStorage{
		client:    client,
		container: cfg.ContainerName,
		logger:    log.With(slog.String("component", "azure_storage")),
	}, nil
}

// Cloud implements Storage.Cloud.
func (s *azureStorage) Cloud() bool { return true }

// Upload implements Storage.Upload. The container is created on first use
// with public blob read access, so plain blob URLs stay readable when a
// SAS cannot be minted (identity-based auth has no account key).
func (s *azureStorage) Upload(
	ctx context.Context,
	key string,
	data []byte,
	contentType string,
) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.ensureContainer(ctx); err != nil {
		return "", err
	}

	_, err := s.client.UploadBuffer(ctx, s.container, key, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &azbloblib.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		log.Error("failed to upload blob",
			slog.String("error", err.Error()),
			slog.String("key", key))
		return "", fmt.Errorf("failed to upload blob %s: %w", key, err)
	}

	blobClient := s.client.ServiceClient().
		NewContainerClient(s.container).
		NewBlobClient(key)

	expiry := time.Now().UTC().Add(purposeOf(key).URLLifetime())
	sasURL, err := blobClient.GetSASURL(
		sas.BlobPermissions{Read: true},
		expiry,
		nil,
	)
	if err != nil {
		// No shared key available (managed identity); the container allows
		// public blob reads so the unsigned URL still works.
		log.Debug("falling back to unsigned blob URL",
			slog.String("key", key),
			slog.String("reason", err.Error()))
		return blobClient.URL(), nil
	}

	log.Debug("blob uploaded",
		slog.String("key", key),
		slog.Int("size", len(data)),
		slog.Time("url_expiry", expiry))
	return sasURL, nil
}

// Delete implements Storage.Delete. Deleting a missing blob is a no-op.
func (s *azureStorage) Delete(ctx context.Context, key string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.client.DeleteBlob(ctx, s.container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil
		}
		log.Error("failed to delete blob",
			slog.String("error", err.Error()),
			slog.String("key", key))
		return fmt.Errorf("failed to delete blob %s: %w", key, err)
	}

	return nil
}

// ensureContainer creates the container once per process.
func (s *azureStorage) ensureContainer(ctx context.Context) error {
	s.ensureOnce.Do(func() {
		access := container.PublicAccessTypeBlob
		_, err := s.client.CreateContainer(ctx, s.container, &azblob.CreateContainerOptions{
			Access: &access,
		})
		if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			s.ensureErr = fmt.Errorf("failed to create container %s: %w", s.container, err)
		}
	})
	return s.ensureErr
}

// purposeOf extracts the purpose from a key's first segment, defaulting to
// attachments (the longest-lived URL class) for unknown prefixes.
func purposeOf(key string) Purpose {
	segment, _, _ := strings.Cut(key, "/")
	if _, ok := knownPurposes[segment]; ok {
		return Purpose(segment)
	}
	return PurposeAttachments
}
