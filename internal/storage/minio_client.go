package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"blogcore/internal/config"

	"github.com/charmbracelet/log"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Storage is the object store adapter for media blobs.
type Storage interface {
	// EnsureBucket creates the media bucket if it does not exist yet.
	EnsureBucket(ctx context.Context) error
	// PutObject writes data at objectName, replacing any previous object.
	PutObject(ctx context.Context, objectName string, data []byte, contentType string, metadata map[string]string) error
	// SignedURL fails if the object does not exist.
	SignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
	// RemoveObject succeeds for objects that are already gone.
	RemoveObject(ctx context.Context, objectName string) error
}

type MinIOClient struct {
	client *minio.Client
	bucket string
	region string
	logger *log.Logger
}

func NewMinIOClient(cfg *config.Config, logger *log.Logger) (*MinIOClient, error) {
	client, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
		Secure: cfg.MinIO.UseSSL,
		Region: cfg.MinIO.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinIOClient{
		client: client,
		bucket: cfg.MinIO.BucketName,
		region: cfg.MinIO.Region,
		logger: logger.WithPrefix("minio"),
	}, nil
}

// EnsureBucket is run once at startup, before the server accepts traffic.
// Concurrent provisioning by another instance is tolerated.
func (m *MinIOClient) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", m.bucket, err)
	}
	if exists {
		return nil
	}

	err = m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: m.region})
	if err != nil {
		if exists, checkErr := m.client.BucketExists(ctx, m.bucket); checkErr == nil && exists {
			return nil
		}
		return fmt.Errorf("create bucket %s: %w", m.bucket, err)
	}

	m.logger.Info("media bucket created", "bucket", m.bucket)
	return nil
}

func (m *MinIOClient) PutObject(ctx context.Context, objectName string, data []byte, contentType string, metadata map[string]string) error {
	_, err := m.client.PutObject(ctx, m.bucket, objectName, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{
			ContentType:  contentType,
			UserMetadata: metadata,
		})
	if err != nil {
		return fmt.Errorf("upload %s: %w", objectName, err)
	}
	return nil
}

func (m *MinIOClient) SignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	if _, err := m.client.StatObject(ctx, m.bucket, objectName, minio.StatObjectOptions{}); err != nil {
		return "", fmt.Errorf("stat %s: %w", objectName, err)
	}

	signed, err := m.client.PresignedGetObject(ctx, m.bucket, objectName, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", objectName, err)
	}

	return signed.String(), nil
}

func (m *MinIOClient) RemoveObject(ctx context.Context, objectName string) error {
	err := m.client.RemoveObject(ctx, m.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("remove %s: %w", objectName, err)
	}
	return nil
}
