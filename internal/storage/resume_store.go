package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/spec-kit/ats-service/internal/config"
	apperrors "github.com/spec-kit/ats-service/pkg/util"
)

// ResumeStore keeps resume binaries in S3 and hands out time-limited URLs.
// Candidates only hold the object key.
type ResumeStore struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	ttl     time.Duration
}

// NewResumeStore builds the store. With no bucket configured the store is
// created disabled and every call fails with a display-ready error.
func NewResumeStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*ResumeStore, error) {
	if cfg.Bucket == "" {
		logger.Warn("AWS_S3_BUCKET_NAME not provided; resume storage disabled")
		return &ResumeStore{ttl: cfg.PresignTTL()}, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg)
	logger.Info("resume storage configured", zap.String("bucket", cfg.Bucket))
	return &ResumeStore{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		ttl:     cfg.PresignTTL(),
	}, nil
}

// Enabled reports whether a bucket is configured.
func (s *ResumeStore) Enabled() bool {
	return s != nil && s.client != nil
}

// Upload stores a resume and returns its object key.
func (s *ResumeStore) Upload(ctx context.Context, companyID, candidateID, fileName, contentType string, body []byte) (string, error) {
	if !s.Enabled() {
		return "", apperrors.NewValidationError("Resume storage is not configured", nil)
	}

	key := fmt.Sprintf("resumes/%s/%s/%d-%s", companyID, candidateID, time.Now().UnixMilli(), fileName)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// PresignedURL returns a time-limited download URL for the given key.
func (s *ResumeStore) PresignedURL(ctx context.Context, key string) (string, error) {
	if !s.Enabled() {
		return "", apperrors.NewValidationError("Resume storage is not configured", nil)
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// Delete removes the object for the given key.
func (s *ResumeStore) Delete(ctx context.Context, key string) error {
	if !s.Enabled() {
		return apperrors.NewValidationError("Resume storage is not configured", nil)
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}
