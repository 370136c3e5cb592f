//go:build integration

package s3_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/CodeArtisanRiz/media-blob-kit/internal/objectstore"
)

// localstackHelper manages the Localstack container for S3 integration tests.
type localstackHelper struct {
	container testcontainers.Container
	endpoint  string
	client    *s3.Client
}

// newLocalstackHelper starts a Localstack container or connects to an existing one.
func newLocalstackHelper(t *testing.T) *localstackHelper {
	t.Helper()
	ctx := context.Background()

	// Check if external Localstack is configured via environment
	if endpoint := os.Getenv("LOCALSTACK_ENDPOINT"); endpoint != "" {
		helper := &localstackHelper{endpoint: endpoint}
		helper.createClient(t)
		return helper
	}

	req := testcontainers.ContainerRequest{
		Image:        "localstack/localstack:3.0",
		ExposedPorts: []string{"4566/tcp"},
		Env: map[string]string{
			"SERVICES":              "s3",
			"DEFAULT_REGION":        "us-east-1",
			"EAGER_SERVICE_LOADING": "1",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("4566/tcp"),
			wait.ForHTTP("/_localstack/health").
				WithPort("4566/tcp").
				WithStartupTimeout(60*time.Second),
		),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start localstack container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "4566")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get container port: %v", err)
	}

	helper := &localstackHelper{
		container: container,
		endpoint:  fmt.Sprintf("http://%s:%s", host, port.Port()),
	}
	helper.createClient(t)

	return helper
}

// createClient creates a raw S3 client configured for Localstack, used only
// to assert on bucket/object state from outside the client under test.
func (lh *localstackHelper) createClient(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	cfg, err := awsConfig.LoadDefaultConfig(ctx,
		awsConfig.WithRegion("us-east-1"),
		awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			"test", "test", "",
		)),
	)
	if err != nil {
		t.Fatalf("Failed to load AWS config: %v", err)
	}

	lh.client = s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = &lh.endpoint
		o.UsePathStyle = true
	})
}

func (lh *localstackHelper) cleanupBucket(bucketName string) {
	ctx := context.Background()

	listResp, _ := lh.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucketName),
	})
	if listResp != nil {
		for _, obj := range listResp.Contents {
			_, _ = lh.client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(bucketName),
				Key:    obj.Key,
			})
		}
	}

	_, _ = lh.client.DeleteBucket(ctx, &s3.DeleteBucketInput{
		Bucket: aws.String(bucketName),
	})
}

func (lh *localstackHelper) cleanup() {
	if lh.container != nil {
		_ = lh.container.Terminate(context.Background())
	}
}

func newTestClient(t *testing.T, helper *localstackHelper, bucket string) *objectstore.Client {
	t.Helper()
	ctx := context.Background()

	client, err := objectstore.NewClientFromConfig(ctx, objectstore.Config{
		Bucket:          bucket,
		Region:          "us-east-1",
		Endpoint:        helper.endpoint,
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		UsePathStyle:    true,
	}, nil)
	if err != nil {
		t.Fatalf("failed to build objectstore client: %v", err)
	}
	return client
}

// TestClient_EnsureBucket verifies EnsureBucket creates an absent bucket and
// that calling it a second time is a no-op.
func TestClient_EnsureBucket(t *testing.T) {
	ctx := context.Background()
	helper := newLocalstackHelper(t)
	defer helper.cleanup()

	bucket := "mediakit-ensure-test"
	defer helper.cleanupBucket(bucket)

	client := newTestClient(t, helper, bucket)

	if err := client.EnsureBucket(ctx); err != nil {
		t.Fatalf("EnsureBucket (create): %v", err)
	}
	if err := client.EnsureBucket(ctx); err != nil {
		t.Fatalf("EnsureBucket (idempotent): %v", err)
	}
	if err := client.HeadBucket(ctx); err != nil {
		t.Fatalf("HeadBucket after EnsureBucket: %v", err)
	}
}

// TestClient_PutGetDelete exercises the whole-object round trip.
func TestClient_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	helper := newLocalstackHelper(t)
	defer helper.cleanup()

	bucket := "mediakit-putget-test"
	defer helper.cleanupBucket(bucket)

	client := newTestClient(t, helper, bucket)
	if err := client.EnsureBucket(ctx); err != nil {
		t.Fatalf("EnsureBucket: %v", err)
	}

	key := "projects/proj-1/files/original/hello.txt"
	data := []byte("hello mediakit")

	if err := client.Put(ctx, key, data, "text/plain"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := client.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(data) {
		t.Fatalf("Get returned %q, want %q", got, data)
	}

	if err := client.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := client.Get(ctx, key); err == nil {
		t.Fatal("Get after Delete: expected error, got nil")
	}
}

// TestClient_PresignGet verifies a presigned URL is issued and points at the
// expected key.
func TestClient_PresignGet(t *testing.T) {
	ctx := context.Background()
	helper := newLocalstackHelper(t)
	defer helper.cleanup()

	bucket := "mediakit-presign-test"
	defer helper.cleanupBucket(bucket)

	client := newTestClient(t, helper, bucket)
	if err := client.EnsureBucket(ctx); err != nil {
		t.Fatalf("EnsureBucket: %v", err)
	}

	key := "projects/proj-1/files/original/photo.jpg"
	if err := client.Put(ctx, key, []byte("fake-jpeg-bytes"), "image/jpeg"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	signedURL, err := client.PresignGet(ctx, key, 5*time.Minute)
	if err != nil {
		t.Fatalf("PresignGet: %v", err)
	}
	if signedURL == "" {
		t.Fatal("PresignGet returned empty URL")
	}
}

// TestClient_Resolve covers the URL-or-key normalization used when reading
// legacy variants_map entries. This needs no running S3 endpoint: Resolve is
// pure string handling over the client's configured bucket name.
func TestClient_Resolve(t *testing.T) {
	ctx := context.Background()
	client, err := objectstore.NewClientFromConfig(ctx, objectstore.Config{
		Bucket:          "bucket",
		Region:          "us-east-1",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
	}, nil)
	if err != nil {
		t.Fatalf("failed to build objectstore client: %v", err)
	}

	cases := map[string]string{
		"a/b/c.jpg": "a/b/c.jpg",
		"https://bucket.s3.us-east-1.amazonaws.com/a/b/c.jpg": "a/b/c.jpg",
		"https://cdn.example/bucket/a/b/c.jpg":                "a/b/c.jpg",
	}
	for input, want := range cases {
		if got := client.Resolve(input); got != want {
			t.Errorf("Resolve(%q) = %q, want %q", input, got, want)
		}
	}
}
