// Package storage provides object storage backends for attached recipe PDFs.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	infraconfig "github.com/cookbook/api/internal/infrastructure/config"
	"github.com/cookbook/api/internal/infrastructure/printing"
	"go.uber.org/zap"
)

const pdfContentType = "application/pdf"

// S3PDFStorage implements printing.PDFStorage on any S3-compatible store
// (AWS S3, MinIO, RustFS). Download URLs are presigned.
type S3PDFStorage struct {
	client            *s3.Client
	presignClient     *s3.PresignClient
	bucket            string
	prefix            string
	presignExpiration time.Duration
	logger            *zap.Logger
}

// S3PDFStorageOption is a functional option for configuring S3PDFStorage
type S3PDFStorageOption func(*S3PDFStorage)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) S3PDFStorageOption {
	return func(s *S3PDFStorage) {
		s.logger = logger
	}
}

// WithPresignExpiration sets a custom presign expiration duration
func WithPresignExpiration(d time.Duration) S3PDFStorageOption {
	return func(s *S3PDFStorage) {
		s.presignExpiration = d
	}
}

const (
	defaultRegion            = "us-east-1"
	defaultPresignExpiration = 15 * time.Minute
)

// NewS3PDFStorage builds the client from cfg. It does not contact the
// server; call EnsureBucket for that.
func NewS3PDFStorage(cfg *infraconfig.StorageConfig, opts ...S3PDFStorageOption) (*S3PDFStorage, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	for _, req := range []struct{ value, name string }{
		{cfg.Bucket, "bucket"},
		{cfg.AccessKey, "access key"},
		{cfg.SecretKey, "secret key"},
	} {
		if req.value == "" {
			return nil, fmt.Errorf("storage %s is required", req.name)
		}
	}

	endpoint, err := endpointURL(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		// MinIO and RustFS reject the SDK's default flexible checksums
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	s := &S3PDFStorage{
		client:            client,
		presignClient:     s3.NewPresignClient(client),
		bucket:            cfg.Bucket,
		prefix:            strings.Trim(cfg.Prefix, "/"),
		presignExpiration: cfg.PresignExpiration,
		logger:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.presignExpiration <= 0 {
		s.presignExpiration = defaultPresignExpiration
	}
	return s, nil
}

// endpointURL adds the scheme a bare host:port endpoint lacks.
// Empty means the AWS default endpoint.
func endpointURL(endpoint string, useSSL bool) (string, error) {
	if endpoint == "" {
		return "", nil
	}
	if !strings.Contains(endpoint, "://") {
		scheme := "http://"
		if useSSL {
			scheme = "https://"
		}
		endpoint = scheme + endpoint
	}
	if _, err := url.Parse(endpoint); err != nil {
		return "", fmt.Errorf("invalid storage endpoint: %w", err)
	}
	return endpoint, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
// Call this during application startup to ensure the bucket is ready.
func (s *S3PDFStorage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating storage bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Store uploads the PDF under req.Key
func (s *S3PDFStorage) Store(ctx context.Context, req *printing.StoreRequest) (*printing.StoreResult, error) {
	if req == nil || req.Key == "" {
		return nil, printing.NewRenderError(printing.ErrCodeStorageFailed, "storage key is required", nil)
	}
	if len(req.PDFData) == 0 {
		return nil, printing.NewRenderError(printing.ErrCodeStorageFailed, "PDF data is empty", nil)
	}

	objectKey := s.objectKey(req.Key)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(req.PDFData),
		ContentLength: aws.Int64(int64(len(req.PDFData))),
		ContentType:   aws.String(pdfContentType),
	})
	if err != nil {
		return nil, printing.NewRenderError(printing.ErrCodeStorageFailed, "failed to upload object", err)
	}

	s.logger.Info("PDF stored",
		zap.String("bucket", s.bucket),
		zap.String("key", objectKey),
		zap.Int("size", len(req.PDFData)))

	return &printing.StoreResult{
		Key:  req.Key,
		Size: int64(len(req.PDFData)),
	}, nil
}

// Get downloads the PDF stored under key
func (s *S3PDFStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if key == "" {
		return nil, errors.New("storage key is required")
	}

	out, err := s.client.GetObject(ctx, s.getInput(key))
	if err != nil {
		if isNotFound(err) {
			return nil, printing.ErrFileNotFound
		}
		return nil, printing.NewRenderError(printing.ErrCodeStorageFailed, "failed to download object", err)
	}
	return out.Body, nil
}

// Delete removes the PDF stored under key. S3 deletes are idempotent.
func (s *S3PDFStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil && !isNotFound(err) {
		return printing.NewRenderError(printing.ErrCodeStorageFailed, "failed to delete object", err)
	}
	return nil
}

// GetURL returns a presigned download URL valid for the configured expiration
func (s *S3PDFStorage) GetURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}

	presignReq, err := s.presignClient.PresignGetObject(ctx, s.getInput(key), s3.WithPresignExpires(s.presignExpiration))
	if err != nil {
		return "", fmt.Errorf("failed to generate download URL: %w", err)
	}
	return presignReq.URL, nil
}

// GetBucket returns the bucket name
func (s *S3PDFStorage) GetBucket() string {
	return s.bucket
}

func (s *S3PDFStorage) getInput(key string) *s3.GetObjectInput {
	return &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(s.objectKey(key))}
}

func (s *S3PDFStorage) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return true
	}
	// Some S3-compatible services report a missing key differently
	return strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "NoSuchKey")
}

var _ printing.PDFStorage = (*S3PDFStorage)(nil)
