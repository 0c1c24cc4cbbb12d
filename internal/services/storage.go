package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/docvault/docvault/internal/pkg"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// StorageProvider represents the object store collaborator surface
type StorageProvider interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	GetPresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// UploadResult represents upload result
type UploadResult struct {
	Key      string `json:"key"`
	Location string `json:"location,omitempty"`
	Size     int64  `json:"size"`
	ETag     string `json:"etag,omitempty"`
}

// StorageService handles object store operations
type StorageService struct {
	provider    StorageProvider
	maxFileSize int64
}

// StorageConfig represents storage configuration
type StorageConfig struct {
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	Endpoint  string `json:"endpoint,omitempty"`

	// CredentialEndpoint, when set, switches the provider to short-lived
	// management credentials fetched through a refresh-margin cache.
	CredentialEndpoint string        `json:"credential_endpoint,omitempty"`
	CredentialAPIKey   string        `json:"credential_api_key,omitempty"`
	CredentialMargin   time.Duration `json:"credential_margin,omitempty"`

	MaxFileSize int64 `json:"max_file_size"`
}

// NewStorageService creates a new storage service
func NewStorageService(config *StorageConfig) (*StorageService, error) {
	provider, err := NewS3Provider(config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage provider: %w", err)
	}

	return &StorageService{
		provider:    provider,
		maxFileSize: config.MaxFileSize,
	}, nil
}

// Upload uploads a file to storage
func (s *StorageService) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*UploadResult, error) {
	if s.maxFileSize > 0 && size > s.maxFileSize {
		return nil, pkg.ErrFileTooLarge
	}

	result, err := s.provider.Upload(ctx, key, body, size, contentType)
	if err != nil {
		return nil, pkg.ErrFileUploadFailed.WithCause(err)
	}

	return result, nil
}

// Delete deletes a file from storage
func (s *StorageService) Delete(ctx context.Context, key string) error {
	if err := s.provider.Delete(ctx, key); err != nil {
		return pkg.ErrStorageProviderError.WithCause(err)
	}

	return nil
}

// GetPresignedURL gets a time-bounded URL for a stored object
func (s *StorageService) GetPresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	url, err := s.provider.GetPresignedURL(ctx, key, ttl)
	if err != nil {
		return "", pkg.ErrStorageProviderError.WithCause(err)
	}

	return url, nil
}

// S3Provider implements S3-compatible storage
type S3Provider struct {
	s3Client *s3.S3
	uploader *s3manager.Uploader
	bucket   string
}

// NewS3Provider creates a new S3 provider
func NewS3Provider(config *StorageConfig) (*S3Provider, error) {
	var creds *credentials.Credentials
	if config.CredentialEndpoint != "" {
		cache := NewCredentialCache(
			NewEndpointCredentialSource(config.CredentialEndpoint, config.CredentialAPIKey),
			config.CredentialMargin,
		)
		creds = credentials.NewCredentials(&cachedCredentialsProvider{cache: cache})
	} else {
		creds = credentials.NewStaticCredentials(config.AccessKey, config.SecretKey, "")
	}

	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String(config.Region),
		Endpoint:         aws.String(config.Endpoint),
		Credentials:      creds,
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Provider{
		s3Client: s3.New(sess),
		uploader: s3manager.NewUploader(sess),
		bucket:   config.Bucket,
	}, nil
}

// Upload uploads an object to S3
func (p *S3Provider) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*UploadResult, error) {
	result, err := p.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	out := &UploadResult{
		Key:      key,
		Location: result.Location,
		Size:     size,
	}
	if result.ETag != nil {
		out.ETag = *result.ETag
	}
	return out, nil
}

// Delete deletes an object from S3
func (p *S3Provider) Delete(ctx context.Context, key string) error {
	_, err := p.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}

	return nil
}

// GetPresignedURL gets a presigned GET URL for an S3 object
func (p *S3Provider) GetPresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, _ := p.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	req.SetContext(ctx)

	url, err := req.Presign(ttl)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return url, nil
}
