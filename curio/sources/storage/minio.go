package storage

import (
	"context"
	"curio/curio/config"
	"curio/curio/utils/logging"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// ObjectStore keeps user-uploaded files and hands back their public URLs.
type ObjectStore interface {
	UploadAvatar(ctx context.Context, userID int, filename, contentType string, r io.Reader, size int64) (string, error)
}

type MinIOClient struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewMinIOClient(ctx context.Context, cfg config.Config) (*MinIOClient, error) {
	client, err := minio.New(
		cfg.MinIOEndpoint,
		&minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
			Secure: cfg.MinIOSecure,
		},
	)
	if err != nil {
		return nil, err
	}
	// Create bucket if not exists
	exists, err := client.BucketExists(ctx, cfg.MinIOBucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinIOBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
		logging.AppLogger.Info("created bucket", zap.String("bucket", cfg.MinIOBucket))
	}

	base := cfg.MinIOPublicURL
	if base == "" {
		scheme := "http"
		if cfg.MinIOSecure {
			scheme = "https"
		}
		base = scheme + "://" + cfg.MinIOEndpoint
	}
	return &MinIOClient{client: client, bucket: cfg.MinIOBucket, publicURL: base}, nil
}

// UploadAvatar stores an avatar image under a fresh key and returns its public URL.
func (m *MinIOClient) UploadAvatar(ctx context.Context, userID int, filename, contentType string, r io.Reader, size int64) (string, error) {
	defer logging.LogDuration(ctx, "minio_upload_avatar")()

	key := AvatarKey(userID, filename)
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	return PublicURL(m.publicURL, m.bucket, key), nil
}

// AvatarKey builds avatars/<user>-<random>.<ext>, keeping the original extension.
func AvatarKey(userID int, filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("avatars/%d-%s.%s", userID, uuid.NewString(), ext)
}

func PublicURL(base, bucket, key string) string {
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + key
}
