// internal/s3/source.go
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"

	"chemnitz-facilities-api/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrObjectNotFound matches fs.ErrNotExist so callers can treat local and
// bucket sources alike.
var ErrObjectNotFound = fmt.Errorf("object not found: %w", fs.ErrNotExist)

// ObjectGetter is the subset of *s3.Client used to read datasets.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Source reads facility dataset files stored under a bucket prefix.
type Source struct {
	Client ObjectGetter
	Bucket string
	Prefix string
}

func NewSource(ctx context.Context, cfg config.S3Config) (*Source, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	sdkConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(sdkConfig, func(o *s3.Options) {
		// MinIO and other S3-compatible stores need path-style addressing.
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Source{Client: client, Bucket: cfg.Bucket, Prefix: cfg.Prefix}, nil
}

// Key returns the object key for a dataset file name.
func (s *Source) Key(name string) string {
	if s.Prefix == "" {
		return name
	}
	return path.Join(s.Prefix, name)
}

// Open returns the body of the named dataset file. The caller closes it.
func (s *Source) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key(name)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("s3://%s/%s: %w", s.Bucket, s.Key(name), ErrObjectNotFound)
		}
		return nil, fmt.Errorf("failed to download s3://%s/%s: %w", s.Bucket, s.Key(name), err)
	}
	return out.Body, nil
}
