package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/pitchlabs/salescoach/internal/domain/entities"
	"github.com/pitchlabs/salescoach/pkg/config"
)

// archiveExpiry is how long presigned transcript links stay valid.
const archiveExpiry = 7 * 24 * time.Hour

// MinIOClient wraps MinIO operations for transcript archives.
type MinIOClient struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinIOClient creates a new MinIO client and ensures the archive bucket
// exists. Transcript archives stay private; access is via presigned URLs.
func NewMinIOClient(cfg *config.StorageConfig) (*MinIOClient, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	client := &MinIOClient{
		client:    minioClient,
		bucket:    cfg.BucketName,
		publicURL: cfg.PublicURL,
	}

	if err := client.ensureBucket(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}
	return client, nil
}

func (m *MinIOClient) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

// ArchiveTranscript writes the session transcript as JSON and returns an
// access URL.
func (m *MinIOClient) ArchiveTranscript(ctx context.Context, sessionID uuid.UUID, entries []entities.TranscriptEntry) (string, error) {
	body, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode transcript: %w", err)
	}

	objectName := fmt.Sprintf("transcripts/%s.json", sessionID)
	_, err = m.client.PutObject(ctx, m.bucket, objectName, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload transcript: %w", err)
	}

	return m.objectURL(ctx, objectName)
}

// objectURL builds a presigned URL, rewritten to the public endpoint when
// MinIO sits behind a reverse proxy.
func (m *MinIOClient) objectURL(ctx context.Context, objectName string) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, objectName, archiveExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	raw := u.String()

	if m.publicURL != "" {
		internal := u.Scheme + "://" + u.Host
		raw = strings.Replace(raw, internal, strings.TrimRight(m.publicURL, "/"), 1)
	}
	return raw, nil
}
