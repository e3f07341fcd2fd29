// Package objectstore uploads public assets through the S3 protocol. It targets
// Supabase Storage's S3 endpoint, or any S3-compatible service.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/zaeom/storefront-bfa-go/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("objectstore")

// putObjectAPI is the subset of the S3 client used here.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Options configure the S3 store.
type Options struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	// PublicBaseURL prefixes object paths in returned URLs.
	PublicBaseURL string
}

// S3 stores objects in one bucket.
type S3 struct {
	client        putObjectAPI
	bucket        string
	publicBaseURL string
	logger        *zap.Logger
}

// NewS3 builds a path-style client with static credentials.
func NewS3(ctx context.Context, opts Options, logger *zap.Logger) (*S3, error) {
	if opts.AccessKeyID == "" || opts.SecretAccessKey == "" {
		return nil, &domain.ErrNotConfigured{Component: "S3 credentials"}
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKeyID,
			opts.SecretAccessKey,
			"",
		)),
		awsconfig.WithRetryMaxAttempts(1), // uploads are not retried
	)
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = true
	})

	return newS3(client, opts.Bucket, opts.PublicBaseURL, logger), nil
}

func newS3(client putObjectAPI, bucket, publicBaseURL string, logger *zap.Logger) *S3 {
	return &S3{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}
}

// PublicURL is the unauthenticated download URL of objectPath.
func (s *S3) PublicURL(objectPath string) string {
	return s.publicBaseURL + "/" + strings.TrimLeft(objectPath, "/")
}

// Upload stores body at objectPath, failing if the object already exists.
func (s *S3) Upload(ctx context.Context, objectPath, contentType string, body io.Reader, cacheControl time.Duration) error {
	ctx, span := tracer.Start(ctx, "S3.Upload")
	defer span.End()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(strings.TrimLeft(objectPath, "/")),
		Body:         body,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("max-age=" + strconv.Itoa(int(cacheControl.Seconds()))),
		IfNoneMatch:  aws.String("*"),
	})
	if err != nil {
		s.logger.Error("objectstore: upload failed",
			zap.String("bucket", s.bucket),
			zap.String("path", objectPath),
			zap.Error(err),
		)
		if errors.Is(err, context.DeadlineExceeded) {
			return &domain.ErrTimeout{Operation: "s3 upload"}
		}
		return &domain.ErrExternalService{Service: "s3", Err: err}
	}

	s.logger.Debug("objectstore: upload OK",
		zap.String("bucket", s.bucket),
		zap.String("path", objectPath),
	)
	return nil
}
