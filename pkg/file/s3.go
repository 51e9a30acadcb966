package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/dmitrymomot/logrelay/pkg/logevent"
	"github.com/dmitrymomot/logrelay/pkg/relay"
)

// S3Client defines the S3 operations used by S3Archiver.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Archiver writes every batch as one NDJSON object. Objects are created
// with If-None-Match: *, so a batch retried after a lost response is
// detected instead of overwritten. It is safe for concurrent use.
type S3Archiver struct {
	client        S3Client
	bucket        string
	prefix        string
	uploadTimeout time.Duration
}

// S3Config contains configuration for the S3 archive.
type S3Config struct {
	Bucket         string        `env:"ARCHIVE_S3_BUCKET"`                              // Bucket receives the archive objects.
	Region         string        `env:"ARCHIVE_S3_REGION" envDefault:"us-east-1"`       // Region of the bucket.
	AccessKeyID    string        `env:"ARCHIVE_S3_ACCESS_KEY_ID"`                       // AccessKeyID is optional, the default credential chain is used when empty.
	SecretKey      string        `env:"ARCHIVE_S3_SECRET_KEY"`                          // SecretKey pairs with AccessKeyID.
	Endpoint       string        `env:"ARCHIVE_S3_ENDPOINT"`                            // Endpoint for S3-compatible services.
	ForcePathStyle bool          `env:"ARCHIVE_S3_FORCE_PATH_STYLE" envDefault:"false"` // ForcePathStyle is needed by services like MinIO.
	Prefix         string        `env:"ARCHIVE_PREFIX" envDefault:"logs"`               // Prefix of every object key.
	UploadTimeout  time.Duration `env:"ARCHIVE_UPLOAD_TIMEOUT" envDefault:"0s"`         // UploadTimeout bounds a single upload, 0 relies on the caller's context.
}

// S3Option defines a function that configures S3Archiver.
type S3Option func(*s3Options)

type s3Options struct {
	httpClient      *http.Client
	s3Client        S3Client
	s3ConfigOptions []func(*config.LoadOptions) error
	s3ClientOptions []func(*s3.Options)
}

// WithS3Client sets a custom pre-configured S3 client.
// Useful for testing with mocks.
func WithS3Client(client S3Client) S3Option {
	return func(o *s3Options) {
		o.s3Client = client
	}
}

// WithHTTPClient sets a custom HTTP client for S3 requests.
func WithHTTPClient(client *http.Client) S3Option {
	return func(o *s3Options) {
		o.httpClient = client
	}
}

// WithS3ConfigOption adds a custom AWS config option.
func WithS3ConfigOption(option func(*config.LoadOptions) error) S3Option {
	return func(o *s3Options) {
		o.s3ConfigOptions = append(o.s3ConfigOptions, option)
	}
}

// WithS3ClientOption adds a custom S3 client option.
func WithS3ClientOption(option func(*s3.Options)) S3Option {
	return func(o *s3Options) {
		o.s3ClientOptions = append(o.s3ClientOptions, option)
	}
}

// NewS3Archiver creates a relay client archiving to cfg.Bucket.
func NewS3Archiver(ctx context.Context, cfg S3Config, opts ...S3Option) (*S3Archiver, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, ErrInvalidConfig
	}

	options := &s3Options{}
	for _, opt := range opts {
		opt(options)
	}

	client := options.s3Client
	if client == nil {
		awsOptions := []func(*config.LoadOptions) error{
			config.WithRegion(cfg.Region),
		}

		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			awsOptions = append(awsOptions,
				config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID,
					cfg.SecretKey,
					"",
				)),
			)
		}

		if options.httpClient != nil {
			awsOptions = append(awsOptions, config.WithHTTPClient(options.httpClient))
		}

		awsOptions = append(awsOptions, options.s3ConfigOptions...)

		awsConfig, err := config.LoadDefaultConfig(ctx, awsOptions...)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedToLoadConfig, err)
		}

		client = s3.NewFromConfig(awsConfig, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			o.UsePathStyle = cfg.ForcePathStyle

			for _, opt := range options.s3ClientOptions {
				opt(o)
			}
		})
	}

	return &S3Archiver{
		client:        client,
		bucket:        cfg.Bucket,
		prefix:        cfg.Prefix,
		uploadTimeout: cfg.UploadTimeout,
	}, nil
}

// Submit uploads batch to its archive key.
func (a *S3Archiver) Submit(ctx context.Context, batch []logevent.Event) error {
	key, err := ObjectKey(a.prefix, batch)
	if err != nil {
		return err
	}
	body, err := encodeBatch(batch)
	if err != nil {
		return err
	}

	if a.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.uploadTimeout)
		defer cancel()
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(ContentType),
		IfNoneMatch:   aws.String("*"),
	})
	if err != nil {
		return classifyS3Error(err, "upload "+key)
	}
	return nil
}

// Healthcheck returns a readiness check checking that the bucket is reachable.
func (a *S3Archiver) Healthcheck() func(context.Context) error {
	return func(ctx context.Context) error {
		if _, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(a.bucket)}); err != nil {
			return errors.Join(ErrHealthcheckFailed, classifyS3Error(err, "head bucket"))
		}
		return nil
	}
}

// classifyS3Error converts S3 errors to domain-specific errors. Failed
// preconditions mean the object was written by an earlier attempt.
func classifyS3Error(err error, operation string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s operation", ErrOperationTimeout, operation)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s operation", ErrOperationCanceled, operation)
	}

	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return ErrBucketNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch code {
		case "PreconditionFailed":
			return errors.Join(relay.ErrDuplicateAccepted, fmt.Errorf("%w: %s", ErrObjectExists, operation))
		case "ConditionalRequestConflict":
			return errors.Join(relay.ErrStaleSequence, fmt.Errorf("%w: %s", ErrObjectConflict, operation))
		case "AccessDenied":
			return fmt.Errorf("%w: %s operation", ErrAccessDenied, operation)
		case "RequestTimeout":
			return fmt.Errorf("%w: %s operation", ErrRequestTimeout, operation)
		case "SlowDown", "ServiceUnavailable":
			return fmt.Errorf("%w: %s operation", ErrServiceUnavailable, operation)
		case "NoSuchBucket", "NotFound":
			return ErrBucketNotFound
		default:
			return fmt.Errorf("%s operation failed (code: %s): %w", operation, code, err)
		}
	}

	return fmt.Errorf("%s operation failed: %w", operation, err)
}
