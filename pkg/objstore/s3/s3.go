// Package s3 implements objstore.Backend for AWS S3 and S3-compatible
// storage (MinIO, Cloudflare R2, Supabase Storage's S3 endpoint).
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/castforge/castforge/pkg/objstore"
)

const (
	backendName      = "s3"
	defaultAWSRegion = "us-east-1"
)

// Config describes the bucket connection.
type Config struct {
	Bucket string
	Region string

	// Endpoint points at an S3-compatible service. Empty means AWS S3.
	Endpoint string

	// ForcePathStyle is required by most S3-compatible stores.
	ForcePathStyle bool

	// Explicit credentials. When empty the SDK default chain applies.
	AccessKeyID     string
	SecretAccessKey string

	// PublicBaseURL, when set, is used to build the locators returned by
	// URL (e.g. a CDN or public-bucket address). Defaults to the virtual
	// hosted-style AWS URL.
	PublicBaseURL string
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Bucket) == "" {
		return fmt.Errorf("bucket is required")
	}
	return nil
}

// Backend implements objstore.Backend on one bucket.
type Backend struct {
	client *s3.Client
	cfg    Config
}

var _ objstore.Backend = (*Backend)(nil)

// New creates an S3 backend. The SDK default credential chain is used
// unless explicit credentials are configured.
func New(ctx context.Context, cfg Config) (*Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, &objstore.Error{Op: "New", Backend: backendName, Err: err}
	}
	if awsCfg.Region == "" && cfg.Endpoint == "" {
		awsCfg.Region = defaultAWSRegion
	}

	s3Opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.UsePathStyle = cfg.ForcePathStyle
		},
	}
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	return &Backend{client: s3.NewFromConfig(awsCfg, s3Opts...), cfg: cfg}, nil
}

func (b *Backend) Close() error { return nil }

func (b *Backend) Put(ctx context.Context, key string, body []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(b.cfg.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := b.client.PutObject(ctx, input); err != nil {
		return b.wrapError("Put", key, err)
	}
	return nil
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, b.wrapError("Get", key, err)
	}
	defer func() { _ = out.Body.Close() }()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, b.wrapError("Get", key, err)
	}
	return body, nil
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		wrapped := b.wrapError("Delete", key, err)
		if objstore.IsNotFound(wrapped) {
			return nil
		}
		return wrapped
	}
	return nil
}

func (b *Backend) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.cfg.Bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, b.wrapError("List", prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

func (b *Backend) URL(key string) string {
	key = strings.TrimPrefix(key, "/")
	if b.cfg.PublicBaseURL != "" {
		return strings.TrimRight(b.cfg.PublicBaseURL, "/") + "/" + key
	}
	if b.cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(b.cfg.Endpoint, "/"), b.cfg.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", b.cfg.Bucket, key)
}

// wrapError converts S3 errors to objstore errors with appropriate
// sentinels.
func (b *Backend) wrapError(op, key string, err error) error {
	wrapped := &objstore.Error{Op: op, Backend: backendName, Key: key, Err: err}

	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		wrapped.Err = objstore.ErrNotFound
		return wrapped
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			wrapped.Err = objstore.ErrNotFound
		case "AccessDenied", "Forbidden":
			wrapped.Err = objstore.ErrAccessDenied
		case "ServiceUnavailable", "InternalError", "SlowDown":
			wrapped.Err = objstore.ErrUnavailable
		}
	}
	return wrapped
}
