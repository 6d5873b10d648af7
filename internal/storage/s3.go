package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Client abstracts the S3 API operations used by [S3Store].
// The [s3.Client] type satisfies this interface.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// S3Options configures an [S3Store].
type S3Options struct {
	Bucket string
	Region string
	// Prefix is prepended to all object keys; pass "" for none.
	Prefix string
	// PublicRead uploads objects and creates buckets with the public-read ACL.
	PublicRead bool
	// Endpoint, when set, switches URLs to path style under that endpoint.
	Endpoint string
}

// S3Store implements ObjectStore backed by Amazon S3.
type S3Store struct {
	client S3Client
	opts   S3Options
}

// NewS3 creates an S3-backed ObjectStore. The client should be pre-configured
// with credentials and region.
func NewS3(client S3Client, opts S3Options) *S3Store {
	opts.Endpoint = strings.TrimRight(opts.Endpoint, "/")
	return &S3Store{client: client, opts: opts}
}

// NewS3Client builds an SDK client from a static key pair. endpoint may be
// empty for AWS.
func NewS3Client(region, endpoint string, creds aws.CredentialsProvider) *s3.Client {
	return s3.New(s3.Options{
		Region:      region,
		Credentials: aws.NewCredentialsCache(creds),
	}, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
}

func (s *S3Store) key(key string) string {
	return joinKey(s.opts.Prefix, key)
}

func (s *S3Store) Bucket() string { return s.opts.Bucket }

func (s *S3Store) Region() string { return s.opts.Region }

// EnsureBucket creates the bucket when HeadBucket reports it missing.
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.opts.Bucket)})
	if err == nil {
		return nil
	}
	if !isS3NotFound(err) {
		return fmt.Errorf("storage: head bucket %s: %w", s.opts.Bucket, err)
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(s.opts.Bucket)}
	if s.opts.PublicRead {
		input.ACL = types.BucketCannedACLPublicRead
	}
	// us-east-1 rejects an explicit location constraint.
	if s.opts.Region != "" && s.opts.Region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.opts.Region),
		}
	}
	if _, err := s.client.CreateBucket(ctx, input); err != nil {
		return fmt.Errorf("storage: create bucket %s: %w", s.opts.Bucket, err)
	}
	return nil
}

// Upload streams the file at path to key via PutObject.
func (s *S3Store) Upload(ctx context.Context, key, path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("storage: upload %s: %w", path, ErrNotFound)
		}
		return fmt.Errorf("storage: upload %s: %w", path, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("storage: stat %s: %w", path, err)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.opts.Bucket),
		Key:           aws.String(s.key(key)),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
	}
	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		input.ContentType = aws.String(ct)
	}
	if s.opts.PublicRead {
		input.ACL = types.ObjectCannedACLPublicRead
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("storage: put %s: %w", key, err)
	}
	return nil
}

// Exists checks whether the named object exists via HeadObject.
func (s *S3Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(s.key(key)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Delete removes the named object. S3 treats missing keys as success.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(s.key(key)),
	})
	return err
}

// URL returns the virtual-hosted style address for key, or a path style
// address under the custom endpoint.
func (s *S3Store) URL(key string) string {
	if s.opts.Endpoint != "" {
		return s.opts.Endpoint + "/" + s.opts.Bucket + "/" + s.key(key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.opts.Bucket, s.opts.Region, s.key(key))
}

// isS3NotFound reports whether err indicates the bucket or object does not exist.
func isS3NotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return true
		}
	}
	return false
}

var _ ObjectStore = (*S3Store)(nil)
