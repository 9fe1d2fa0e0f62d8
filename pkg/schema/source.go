package schema

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// maxSchemaSize bounds how much of a schema object is read.
const maxSchemaSize = 4 << 20

// ObjectGetter is the subset of the S3 client used by Loader.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Loader reads and validates schemas from files and S3 objects.
type Loader struct {
	s3     ObjectGetter
	logger *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithS3 enables s3://bucket/key sources.
func WithS3(client ObjectGetter) LoaderOption {
	return func(l *Loader) {
		l.s3 = client
	}
}

// WithLogger sets the logger used to report skipped fields.
func WithLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the schema at src, parses it and validates it.
// src is a file path or an s3://bucket/key URL.
func (l *Loader) Load(ctx context.Context, src string) (*Schema, error) {
	data, err := l.read(ctx, src)
	if err != nil {
		return nil, err
	}

	s, err := Parse(data, DetectFormat(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	for _, f := range s.Unsupported() {
		l.logger.Warn("schema field has unsupported type",
			zap.String("source", src),
			zap.String("key", f.Key),
			zap.String("type", f.RawType),
		)
	}
	return s, nil
}

func (l *Loader) read(ctx context.Context, src string) ([]byte, error) {
	if rest, ok := strings.CutPrefix(src, "s3://"); ok {
		return l.readS3(ctx, rest)
	}
	if strings.Contains(src, "://") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, src)
	}
	data, err := os.ReadFile(filepath.Clean(src))
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", src, err)
	}
	return data, nil
}

func (l *Loader) readS3(ctx context.Context, location string) ([]byte, error) {
	if l.s3 == nil {
		return nil, fmt.Errorf("%w: s3://%s (no S3 client configured)", ErrUnsupportedSource, location)
	}
	bucket, key, ok := strings.Cut(location, "/")
	if !ok || bucket == "" || key == "" {
		return nil, fmt.Errorf("%w: s3://%s (expected s3://bucket/key)", ErrUnsupportedSource, location)
	}

	out, err := l.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("schema: get s3://%s: %w", location, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxSchemaSize+1))
	if err != nil {
		return nil, fmt.Errorf("schema: read s3://%s: %w", location, err)
	}
	if len(data) > maxSchemaSize {
		return nil, fmt.Errorf("%w: s3://%s exceeds %d bytes", ErrInvalidSchema, location, maxSchemaSize)
	}
	return data, nil
}

// S3Config configures the client built by NewS3Client.
type S3Config struct {
	Region string

	// Endpoint overrides the service endpoint (MinIO, LocalStack).
	Endpoint string

	// PathStyle forces path-style addressing, required by most S3 emulators.
	PathStyle bool
}

// NewS3Client builds an S3 client whose credentials come from the standard
// AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY / AWS_SESSION_TOKEN variables.
func NewS3Client(cfg S3Config) *s3.Client {
	return s3.New(s3.Options{
		Region:       cfg.Region,
		BaseEndpoint: endpointOrNil(cfg.Endpoint),
		UsePathStyle: cfg.PathStyle,
		Credentials:  aws.NewCredentialsCache(aws.CredentialsProviderFunc(envCredentials)),
	})
}

func endpointOrNil(endpoint string) *string {
	if endpoint == "" {
		return nil
	}
	return aws.String(endpoint)
}

func envCredentials(context.Context) (aws.Credentials, error) {
	id := os.Getenv("AWS_ACCESS_KEY_ID")
	secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.Credentials{}, fmt.Errorf("schema: AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}
	return aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "environment",
	}, nil
}
