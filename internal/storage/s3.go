// Package storage provides blob storage for avatars and post images.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	appconfig "socialconnect/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// BlobStore is the interface handlers depend on; it exists so tests can
// substitute an in-memory implementation.
type BlobStore interface {
	Upload(ctx context.Context, key string, content []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// S3Store talks to an S3-compatible bucket (AWS S3, R2, MinIO).
type S3Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewS3Store builds a store from application config. Returns an error when
// the required settings are missing so callers can run without uploads.
func NewS3Store(cfg *appconfig.Config) (*S3Store, error) {
	if cfg.S3Bucket == "" || cfg.S3AccessKey == "" || cfg.S3SecretKey == "" {
		return nil, fmt.Errorf("missing required S3 configuration")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)),
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:    client,
		bucket:    cfg.S3Bucket,
		publicURL: cfg.S3PublicURL,
	}, nil
}

// Upload stores content under key and returns its public URL.
func (s *S3Store) Upload(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return fmt.Sprintf("%s/%s", s.publicURL, key), nil
}

// Delete removes the object under key.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// AvatarKey derives a unique object key for a user's avatar upload.
func AvatarKey(userID uint, contentType string) string {
	return fmt.Sprintf("avatars/%d_%d%s", userID, time.Now().Unix(), extFor(contentType))
}

// PostImageKey derives a unique object key for a post image upload.
func PostImageKey(authorID uint, contentType string) string {
	return fmt.Sprintf("posts/%d_%s%s", authorID, uuid.New().String()[:8], extFor(contentType))
}

func extFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	}
	return path.Ext(contentType)
}
