// Package s3blob stores scan archives in an S3 bucket via AWS SDK v2. A
// custom endpoint supports self-hosted S3-compatible stores (the development
// setup runs MinIO); leaving it empty targets AWS S3 proper.
package s3blob

import (
	"context"
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ClientConfig holds the connection parameters for the archive bucket.
type ClientConfig struct {
	// Endpoint overrides the S3 endpoint for self-hosted stores,
	// e.g. "http://localhost:9000" for MinIO. Empty means AWS S3.
	Endpoint string

	// Region is the bucket's region (MinIO accepts any value).
	Region string

	// Bucket receives all scan archives.
	Bucket string

	// AccessKey and SecretKey authenticate against the store.
	AccessKey string
	SecretKey string

	// UseSSL selects https when Endpoint is given without a scheme.
	UseSSL bool

	// ForcePathStyle puts the bucket in the request path instead of the
	// subdomain. MinIO requires it.
	ForcePathStyle bool
}

// Client wraps the SDK client together with the archive bucket name.
type Client struct {
	s3     *s3.Client
	bucket string
}

// New builds the S3 client for the archive bucket from the given config.
func New(ctx context.Context, cfg ClientConfig) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3blob: bucket name is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("s3blob: region is required")
	}

	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("s3blob: load aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)

	if cfg.Endpoint != "" {
		endpoint := endpointURL(cfg.Endpoint, cfg.UseSSL)
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	if cfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return &Client{
		s3:     s3.NewFromConfig(awsCfg, s3Opts...),
		bucket: cfg.Bucket,
	}, nil
}

// Health verifies the archive bucket is reachable and accessible.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.s3.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.bucket),
	})
	if err != nil {
		return fmt.Errorf("s3blob: head bucket %s: %w", c.bucket, err)
	}
	return nil
}

// Close is a no-op; the SDK's HTTP client needs no explicit teardown. It
// exists so wiring can treat every backend uniformly.
func (c *Client) Close() error {
	return nil
}

// S3 returns the underlying SDK client for the writer in this package.
func (c *Client) S3() *s3.Client {
	return c.s3
}

// Bucket returns the archive bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}

// endpointURL ensures the endpoint has a scheme, defaulting per useSSL when
// the configured value omits one.
func endpointURL(endpoint string, useSSL bool) string {
	parsed, err := url.Parse(endpoint)
	if err == nil && parsed.Scheme != "" {
		return endpoint
	}
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return scheme + "://" + endpoint
}
