package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioSource downloads objects addressed as s3://bucket/key from any
// S3-compatible endpoint
type MinioSource struct {
	client   *minio.Client
	maxBytes int64
}

func NewMinioSource(endpoint, region, accessKey, secretKey string, useSSL bool, maxBytes int64) (*MinioSource, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is not configured")
	}
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinioSource{client: cli, maxBytes: maxBytes}, nil
}

func (s *MinioSource) Fetch(ctx context.Context, location string, dst io.Writer) error {
	bucket, key, err := splitObjectURL(location, "s3")
	if err != nil {
		return err
	}

	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer obj.Close()

	return copyLimited(dst, obj, s.maxBytes)
}
