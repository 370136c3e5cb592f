// Package objectstore wraps an S3-compatible object store with the small
// surface mediakit needs: whole-object put/get/delete, bucket bootstrap with
// a public-read policy, and presigned download URLs. There is no multipart
// session management here — every asset handled by this service is a single
// buffered upload, never a streamed multi-gigabyte transfer.
package objectstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithy "github.com/aws/smithy-go"

	"github.com/CodeArtisanRiz/media-blob-kit/internal/logger"
)

// Config configures the object store client.
type Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	KeyPrefix       string
	PresignExpiry   time.Duration

	MaxRetries        uint
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// Client is a thin, whole-object wrapper over an S3-compatible bucket.
type Client struct {
	s3      *s3.Client
	presign *s3.PresignClient
	bucket  string
	prefix  string
	expiry  time.Duration
	retry   retryConfig
	metrics Metrics
}

type retryConfig struct {
	maxRetries        uint
	initialBackoff    time.Duration
	maxBackoff        time.Duration
	backoffMultiplier float64
}

// NewClientFromConfig builds an AWS config from static credentials and an
// optional endpoint override (for MinIO and other S3-compatible providers),
// then wraps it in a Client bound to the configured bucket.
func NewClientFromConfig(ctx context.Context, cfg Config, metrics Metrics) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("objectstore: bucket name is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("objectstore: failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			endpoint := cfg.Endpoint
			o.BaseEndpoint = &endpoint
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}
	initialBackoff := cfg.InitialBackoff
	if initialBackoff == 0 {
		initialBackoff = 100 * time.Millisecond
	}
	maxBackoff := cfg.MaxBackoff
	if maxBackoff == 0 {
		maxBackoff = 2 * time.Second
	}
	backoffMultiplier := cfg.BackoffMultiplier
	if backoffMultiplier == 0 {
		backoffMultiplier = 2.0
	}
	expiry := cfg.PresignExpiry
	if expiry == 0 {
		expiry = 15 * time.Minute
	}

	if metrics == nil {
		metrics = noopMetrics{}
	}

	return &Client{
		s3:      client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		prefix:  cfg.KeyPrefix,
		expiry:  expiry,
		retry: retryConfig{
			maxRetries:        maxRetries,
			initialBackoff:    initialBackoff,
			maxBackoff:        maxBackoff,
			backoffMultiplier: backoffMultiplier,
		},
		metrics: metrics,
	}, nil
}

// Bucket returns the bucket this client is bound to.
func (c *Client) Bucket() string { return c.bucket }

// qualify applies the configured key prefix to an object key.
func (c *Client) qualify(key string) string {
	if c.prefix == "" {
		return key
	}
	return strings.TrimSuffix(c.prefix, "/") + "/" + strings.TrimPrefix(key, "/")
}

// Put uploads data under key with public-read ACL, so the object is reachable
// at its public URL without a signature. mimeType becomes the object's
// Content-Type header.
func (c *Client) Put(ctx context.Context, key string, data []byte, mimeType string) error {
	start := time.Now()
	err := c.withRetry(ctx, func() error {
		_, putErr := c.s3.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(c.bucket),
			Key:         aws.String(c.qualify(key)),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(mimeType),
			ACL:         types.ObjectCannedACLPublicRead,
		})
		return putErr
	})
	c.metrics.ObserveOp("put", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("objectstore: put %q: %w", key, err)
	}
	return nil
}

// Get downloads and returns the full contents of key.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	var data []byte
	err := c.withRetry(ctx, func() error {
		out, getErr := c.s3.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(c.bucket),
			Key:    aws.String(c.qualify(key)),
		})
		if getErr != nil {
			return getErr
		}
		defer out.Body.Close()
		body, readErr := io.ReadAll(out.Body)
		if readErr != nil {
			return readErr
		}
		data = body
		return nil
	})
	c.metrics.ObserveOp("get", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("objectstore: get %q: %w", key, err)
	}
	return data, nil
}

// Delete removes key. Deleting an already-absent key is not an error, per S3
// semantics, matching the "best-effort cleanup" contract used by project and
// file deletion.
func (c *Client) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := c.withRetry(ctx, func() error {
		_, delErr := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(c.bucket),
			Key:    aws.String(c.qualify(key)),
		})
		return delErr
	})
	c.metrics.ObserveOp("delete", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("objectstore: delete %q: %w", key, err)
	}
	return nil
}

// HeadBucket reports whether the configured bucket exists and is reachable.
func (c *Client) HeadBucket(ctx context.Context) error {
	_, err := c.s3.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)})
	return err
}

// EnsureBucket probes the bucket and, if absent, creates it and installs a
// public-read object policy. Idempotent: a second call against an already
// bootstrapped bucket is a no-op head check.
func (c *Client) EnsureBucket(ctx context.Context) error {
	if err := c.HeadBucket(ctx); err == nil {
		return nil
	}

	if _, err := c.s3.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(c.bucket)}); err != nil {
		var apiErr smithy.APIError
		alreadyOwned := errors.As(err, &apiErr) &&
			(apiErr.ErrorCode() == "BucketAlreadyOwnedByYou" || apiErr.ErrorCode() == "BucketAlreadyExists")
		if !alreadyOwned {
			return fmt.Errorf("objectstore: create bucket %q: %w", c.bucket, err)
		}
	}

	policy, err := publicReadPolicy(c.bucket)
	if err != nil {
		return fmt.Errorf("objectstore: build bucket policy: %w", err)
	}
	if _, err := c.s3.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
		Bucket: aws.String(c.bucket),
		Policy: aws.String(policy),
	}); err != nil {
		logger.Warn("objectstore: failed to install public-read bucket policy", "bucket", c.bucket, "error", err)
	}

	return nil
}

func publicReadPolicy(bucket string) (string, error) {
	doc := map[string]any{
		"Version": "2012-10-17",
		"Statement": []map[string]any{
			{
				"Sid":       "PublicReadGetObject",
				"Effect":    "Allow",
				"Principal": "*",
				"Action":    "s3:GetObject",
				"Resource":  fmt.Sprintf("arn:aws:s3:::%s/*", bucket),
			},
		},
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// PresignGet returns a time-limited signed URL for downloading key, valid for
// ttl (or the client's configured default expiry when ttl is zero).
func (c *Client) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = c.expiry
	}
	out, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.qualify(key)),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("objectstore: presign %q: %w", key, err)
	}
	return out.URL, nil
}

// Resolve converts a stored variants_map value — which may be a bare object
// key or an absolute URL left over from an older write path — into a bare
// key. If value contains "/<bucket>/", the suffix after that segment is
// used; otherwise value is parsed as a URL and its path (leading slash
// stripped) is used.
func (c *Client) Resolve(value string) string {
	marker := "/" + c.bucket + "/"
	if idx := strings.Index(value, marker); idx != -1 {
		return value[idx+len(marker):]
	}

	u, err := url.Parse(value)
	if err != nil {
		return value
	}
	return strings.TrimPrefix(u.Path, "/")
}

// withRetry runs op, retrying transient failures with exponential backoff.
func (c *Client) withRetry(ctx context.Context, op func() error) error {
	var lastErr error
	for attempt := uint(0); attempt <= c.retry.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoffFor(attempt - 1)):
			}
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isRetryableError(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

func (c *Client) backoffFor(attempt uint) time.Duration {
	backoff := float64(c.retry.initialBackoff)
	for i := uint(0); i < attempt; i++ {
		backoff *= c.retry.backoffMultiplier
	}
	if backoff > float64(c.retry.maxBackoff) {
		backoff = float64(c.retry.maxBackoff)
	}
	return time.Duration(backoff)
}

// isRetryableError reports whether err represents a transient failure worth
// retrying: network timeouts, throttling, and 5xx-class S3 API errors. Not
// found and access denied are never retried.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch code {
		case "Throttling", "ThrottlingException", "RequestThrottled", "SlowDown",
			"ProvisionedThroughputExceededException":
			return true
		case "InternalError", "ServiceUnavailable", "ServiceException", "InternalServiceException":
			return true
		}
		return false
	}

	return false
}
