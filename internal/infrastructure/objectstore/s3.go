package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/maestro/hello-world-dag/internal/domain"
	"github.com/maestro/hello-world-dag/internal/ports"
)

var (
	_ ports.ObjectReader = (*S3Client)(nil)
	_ ports.ObjectReader = (*Memory)(nil)
)

// S3Client reads objects from AWS S3 or an S3 compatible store.
type S3Client struct {
	client *s3.Client
}

// S3Config represents S3 configuration. Static credentials are optional; the
// default AWS credential chain is used when they are empty.
type S3Config struct {
	Region          string
	Endpoint        string // Optional for custom endpoints like MinIO or LocalStack
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	MaxAttempts     int
}

func NewS3Client(ctx context.Context, s3Config S3Config) (*S3Client, error) {
	if (s3Config.AccessKeyID == "") != (s3Config.SecretAccessKey == "") {
		return nil, fmt.Errorf("access key ID and secret access key must be set together")
	}

	var opts []func(*config.LoadOptions) error

	// Without a region the SDK falls back to AWS_REGION and shared config.
	if s3Config.Region != "" {
		opts = append(opts, config.WithRegion(s3Config.Region))
	}

	if s3Config.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s3Config.AccessKeyID,
			s3Config.SecretAccessKey,
			"",
		)))
	}

	if s3Config.MaxAttempts > 0 {
		opts = append(opts, config.WithRetryMaxAttempts(s3Config.MaxAttempts))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s3Config.Endpoint != "" {
			o.BaseEndpoint = aws.String(s3Config.Endpoint)
		}
		o.UsePathStyle = s3Config.UsePathStyle
	})

	return &S3Client{client: client}, nil
}

// GetObject returns the full content of bucket/key.
func (s *S3Client) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: s3://%s/%s", domain.ErrObjectNotFound, bucket, key)
		}
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}

	return data, nil
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return true
		}
	}

	return false
}
