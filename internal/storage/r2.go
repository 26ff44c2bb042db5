package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/blockpress/internal/config"
)

type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// R2Storage stores objects in a Cloudflare R2 bucket through its S3 API.
type R2Storage struct {
	client        objectAPI
	bucket        string
	publicBaseURL string
}

// NewR2Storage 使用静态凭据连接 R2 账户的 S3 兼容端点。
func NewR2Storage(cfg config.StorageConfig) *R2Storage {
	client := s3.New(s3.Options{
		Region:                     "auto",
		BaseEndpoint:               aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)),
		Credentials:                credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretKey, ""),
		UsePathStyle:               true,
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
	})
	return &R2Storage{client: client, bucket: cfg.R2Bucket, publicBaseURL: cfg.R2PublicBaseURL}
}

// Put uploads the object and returns its URL under the public base URL.
func (s *R2Storage) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(cleaned),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("r2 put %s: %w", cleaned, err)
	}

	return s.publicBaseURL + "/" + cleaned, nil
}

// Delete removes the object from the bucket.
func (s *R2Storage) Delete(ctx context.Context, key string) error {
	cleaned, err := cleanKey(key)
	if err != nil {
		return err
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(cleaned),
	}); err != nil {
		return fmt.Errorf("r2 delete %s: %w", cleaned, err)
	}
	return nil
}
