package media

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Uploader is the media-hosting boundary: it stores a local file and returns
// its public URL.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// MinioStore implements Uploader on top of a MinIO bucket.
type MinioStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// Ensure MinioStore implements Uploader
var _ Uploader = (*MinioStore)(nil)

// NewMinioStore creates the client and ensures the bucket exists.
func NewMinioStore(ctx context.Context, endpoint, accessKey, secretKey, bucket, baseURL string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	return &MinioStore{client: client, bucket: bucket, baseURL: baseURL}, nil
}

// Upload stores the file under a fresh object key and removes the local copy
// afterwards, whether or not the upload succeeded.
func (s *MinioStore) Upload(ctx context.Context, localPath string) (string, error) {
	ext := filepath.Ext(localPath)
	key := uuid.New().String() + ext

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.FPutObject(ctx, s.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	os.Remove(localPath)
	if err != nil {
		return "", fmt.Errorf("minio put: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, key), nil
}
