// Package objectstore stores image blobs in an S3 compatible bucket
// (AWS S3 or MinIO).
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// API is the part of *s3.Client the store uses.
type API interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// seams for tests
var (
	loadDefaultAWSConfig  = awsconfig.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) API {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type Options struct {
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	Bucket       string
	PublicURL    string
	UsePathStyle bool
}

type S3 struct {
	api       API
	bucket    string
	publicURL string
}

// NewS3 builds a client with static credentials. No request is made.
func NewS3(ctx context.Context, o Options) (*S3, error) {
	if o.Bucket == "" {
		return nil, errors.New("objectstore: bucket is required")
	}
	o.Region = regionOrDefault(o.Region)
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(o.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	api := newS3ClientFromConfig(cfg, func(so *s3.Options) {
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
		}
		so.UsePathStyle = o.UsePathStyle
	})
	return New(api, o.Bucket, publicBase(o)), nil
}

// New wraps an existing client.
func New(api API, bucket, publicURL string) *S3 {
	return &S3{api: api, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

const defaultRegion = "us-east-1"

func regionOrDefault(r string) string {
	if r == "" {
		return defaultRegion
	}
	return r
}

func publicBase(o Options) string {
	if o.PublicURL != "" {
		return o.PublicURL
	}
	if o.Endpoint == "" {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", o.Bucket, regionOrDefault(o.Region))
	}
	return strings.TrimRight(o.Endpoint, "/") + "/" + o.Bucket
}

func (s *S3) Bucket() string { return s.bucket }

// Exists reports whether key is stored. A 404 is (false, nil); any other
// failure is returned.
func (s *S3) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.api.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("head object %s: %w", key, err)
}

func (s *S3) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

// URL is where clients fetch key from.
func (s *S3) URL(key string) string {
	return s.publicURL + "/" + url.PathEscape(key)
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *S3) EnsureBucket(ctx context.Context) error {
	_, err := s.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return fmt.Errorf("head bucket %s: %w", s.bucket, err)
	}
	if _, err := s.api.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return true
	}
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == 404
}
