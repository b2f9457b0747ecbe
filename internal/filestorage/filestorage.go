package filestorage

import (
	"context"
	"errors"
	"io"

	"birthdaybook/pkg/config"
	phxlog "birthdaybook/pkg/log"

	"go.uber.org/zap"
)

// ErrNotConfigured is returned when a provider is missing required settings.
var ErrNotConfigured = errors.New("file storage provider not configured")

// FileStorageProvider stores profile pictures.
type FileStorageProvider interface {
	// UploadFile stores fileContent under objectName and returns the stored name.
	UploadFile(ctx context.Context, objectName string, fileContent io.Reader, contentType string) (storedObjectName string, err error)
	// DeleteFile removes objectName. Missing objects are not an error.
	DeleteFile(ctx context.Context, objectName string) error
	// GetURL returns a URL a browser can load the object from.
	GetURL(ctx context.Context, objectName string) (string, error)
}

// DefaultFileStorageProvider holds the initialized default provider.
var DefaultFileStorageProvider FileStorageProvider

// InitFileStorage initializes the default file storage provider based on configuration.
// Remote providers that fail to initialize fall back to local disk so the
// account page keeps working.
func InitFileStorage(ctx context.Context) error {
	providerType := config.Cfg.FileStorageProvider
	phxlog.L.Info("Initializing file storage", zap.String("provider_type", providerType))

	var (
		provider FileStorageProvider
		err      error
	)
	switch providerType {
	case "s3":
		provider, err = InitializeS3Provider(ctx)
	case "gcs":
		provider, err = InitializeGCSProvider(ctx)
	case "local", "":
		provider, err = NewLocalStorageProvider(config.Cfg.UploadDir, LocalURLPrefix)
	default:
		err = errors.New("unsupported FILE_STORAGE_PROVIDER " + providerType)
	}

	if err != nil {
		phxlog.L.Error("Failed to initialize file storage provider, falling back to local disk.",
			zap.String("provider_type", providerType), zap.Error(err))
		provider, err = NewLocalStorageProvider(config.Cfg.UploadDir, LocalURLPrefix)
		if err != nil {
			return err
		}
	}

	DefaultFileStorageProvider = provider
	phxlog.L.Info("File storage provider initialized successfully.", zap.String("provider_type", providerType))
	return nil
}
