package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jiayou/auth-service/internal/application/documents"
)

type S3Config struct {
	// Endpoint overrides the AWS endpoint (MinIO, R2). Empty means AWS.
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// S3DocumentStore signs direct browser uploads into a single bucket.
type S3DocumentStore struct {
	presigner *s3.PresignClient
	bucket    string
}

func NewS3DocumentStore(ctx context.Context, cfg S3Config) (*S3DocumentStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3: bucket is required")
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3DocumentStore{
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
	}, nil
}

// PresignUpload returns a PUT URL for key. The content type is part of the
// signature, so the client must send the returned headers unchanged.
func (s *S3DocumentStore) PresignUpload(ctx context.Context, key, contentType string, ttl time.Duration) (documents.PresignedUpload, error) {
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return documents.PresignedUpload{}, fmt.Errorf("failed to presign PUT: %w", err)
	}

	return documents.PresignedUpload{
		URL:     req.URL,
		Method:  req.Method,
		Headers: map[string]string{"Content-Type": contentType},
	}, nil
}
