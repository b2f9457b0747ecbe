package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"birthdaybook/pkg/config"
	phxlog "birthdaybook/pkg/log"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GCSStorageProvider implements FileStorageProvider using Google Cloud Storage.
type GCSStorageProvider struct {
	client     *storage.Client
	bucketName string
}

// InitializeGCSProvider creates the client. GCS_CREDENTIALS_FILE, when set,
// overrides Application Default Credentials.
func InitializeGCSProvider(ctx context.Context) (*GCSStorageProvider, error) {
	bucketName := config.Cfg.GCSBucketName
	if bucketName == "" {
		return nil, fmt.Errorf("%w: GCS_BUCKET_NAME is required", ErrNotConfigured)
	}

	var opts []option.ClientOption
	if config.Cfg.GCSCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(config.Cfg.GCSCredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Cloud Storage client: %w", err)
	}

	phxlog.L.Info("Google Cloud Storage provider initialized", zap.String("bucketName", bucketName))
	return &GCSStorageProvider{client: client, bucketName: bucketName}, nil
}

func (g *GCSStorageProvider) UploadFile(ctx context.Context, objectName string, fileContent io.Reader, contentType string) (string, error) {
	wc := g.client.Bucket(g.bucketName).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := io.Copy(wc, fileContent); err != nil {
		wc.Close()
		return "", fmt.Errorf("failed to copy file content to GCS object writer: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS object writer: %w", err)
	}
	return objectName, nil
}

func (g *GCSStorageProvider) DeleteFile(ctx context.Context, objectName string) error {
	err := g.client.Bucket(g.bucketName).Object(objectName).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete object '%s' from GCS bucket '%s': %w", objectName, g.bucketName, err)
	}
	return nil
}

func (g *GCSStorageProvider) GetURL(ctx context.Context, objectName string) (string, error) {
	signedURL, err := g.client.Bucket(g.bucketName).SignedURL(objectName, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(presignedURLTTL),
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL for GCS object '%s': %w", objectName, err)
	}
	return signedURL, nil
}
