package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3 stores attachments in an S3-compatible bucket. Objects are keyed
// <category>/<name>, mirroring the local backend's layout.
type S3 struct {
	client *minio.Client
	bucket string
}

type S3Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		slog.Info("Created storage bucket", "bucket", cfg.Bucket)
	}

	return &S3{client: client, bucket: cfg.Bucket}, nil
}

func (s *S3) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	if err := Validate(input.ContentType, input.Size); err != nil {
		return nil, err
	}

	name := NewObjectName(input.ContentType)
	key := input.Category + "/" + name

	info, err := s.client.PutObject(ctx, s.bucket, key, input.Reader, input.Size,
		minio.PutObjectOptions{ContentType: input.ContentType})
	if err != nil {
		return nil, fmt.Errorf("failed to upload object: %w", err)
	}

	slog.Info("Stored file in object store", "bucket", s.bucket, "key", key, "size", info.Size)
	return &UploadResult{FileName: name, Size: info.Size}, nil
}

func (s *S3) Delete(ctx context.Context, category, fileName string) error {
	key := category + "/" + fileName
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object: %w", err)
	}
	return nil
}

func (s *S3) URL(category, fileName string) string {
	return s.client.EndpointURL().String() + "/" + s.bucket + "/" + category + "/" + fileName
}
