package filestorage

import (
	"context"
	"fmt"
	"io"
	"time"

	"birthdaybook/pkg/config"
	phxlog "birthdaybook/pkg/log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsGoConfig "github.com/aws/aws-sdk-go-v2/config" // Alias para evitar conflito com pkg/config
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

const presignedURLTTL = time.Hour

// S3StorageProvider implements FileStorageProvider using Amazon S3.
// Objects stay private; browsers get presigned GET URLs.
type S3StorageProvider struct {
	client     *s3.Client
	uploader   *manager.Uploader
	presigner  *s3.PresignClient
	bucketName string
}

// InitializeS3Provider initializes the S3 client from AWS_S3_BUCKET and AWS_REGION.
func InitializeS3Provider(ctx context.Context) (*S3StorageProvider, error) {
	bucket := config.Cfg.AWSS3Bucket
	region := config.Cfg.AWSRegion
	if bucket == "" || region == "" {
		return nil, fmt.Errorf("%w: AWS_S3_BUCKET and AWS_REGION are required", ErrNotConfigured)
	}

	sdkConfig, err := awsGoConfig.LoadDefaultConfig(ctx, awsGoConfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config for S3: %w", err)
	}

	client := s3.NewFromConfig(sdkConfig)
	phxlog.L.Info("Amazon S3 storage provider initialized", zap.String("bucket", bucket), zap.String("region", region))
	return &S3StorageProvider{
		client:     client,
		uploader:   manager.NewUploader(client),
		presigner:  s3.NewPresignClient(client),
		bucketName: bucket,
	}, nil
}

func (s *S3StorageProvider) UploadFile(ctx context.Context, objectName string, fileContent io.Reader, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectName),
		Body:   fileContent,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload file to S3 (bucket: %s, key: %s): %w", s.bucketName, objectName, err)
	}
	return objectName, nil
}

// DeleteFile is idempotent: S3 reports success for missing keys.
func (s *S3StorageProvider) DeleteFile(ctx context.Context, objectName string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectName),
	})
	if err != nil {
		return fmt.Errorf("failed to delete S3 object %s: %w", objectName, err)
	}
	return nil
}

func (s *S3StorageProvider) GetURL(ctx context.Context, objectName string) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectName),
	}, s3.WithPresignExpires(presignedURLTTL))
	if err != nil {
		return "", fmt.Errorf("failed to presign S3 object %s: %w", objectName, err)
	}
	return req.URL, nil
}
