package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for HTTP, job, and storage operations. These follow
// OpenTelemetry semantic conventions where applicable.
const (
	// HTTP/request attributes
	AttrClientIP   = "client.ip"
	AttrHTTPMethod = "http.method"
	AttrHTTPRoute  = "http.route"
	AttrHTTPStatus = "http.status_code"

	// Tenant/resource attributes
	AttrProjectID = "project.id"
	AttrFileID    = "file.id"
	AttrJobID     = "job.id"
	AttrJobType   = "job.type"
	AttrVariant   = "variant.name"

	// Storage backend attributes
	AttrBucket = "storage.bucket"
	AttrKey    = "storage.key"
	AttrRegion = "storage.region"

	// Worker/queue attributes
	AttrQueueOperation = "queue.operation"
)

// Span names for internal operations.
const (
	SpanHTTPRequest  = "http.request"
	SpanJobClaim     = "job.claim"
	SpanJobRender    = "job.render"
	SpanJobComplete  = "job.complete"
	SpanJobFail      = "job.fail"
	SpanStorageGet   = "storage.get"
	SpanStoragePut   = "storage.put"
	SpanStorageHead  = "storage.head"
	SpanReconcileRun = "reconcile.run"
)

// ClientIP returns an attribute for the caller's IP address.
func ClientIP(ip string) attribute.KeyValue {
	return attribute.String(AttrClientIP, ip)
}

// HTTPMethod returns an attribute for the request method.
func HTTPMethod(method string) attribute.KeyValue {
	return attribute.String(AttrHTTPMethod, method)
}

// HTTPRoute returns an attribute for the matched route pattern.
func HTTPRoute(route string) attribute.KeyValue {
	return attribute.String(AttrHTTPRoute, route)
}

// HTTPStatus returns an attribute for the response status code.
func HTTPStatus(code int) attribute.KeyValue {
	return attribute.Int(AttrHTTPStatus, code)
}

// ProjectID returns an attribute for the owning project.
func ProjectID(id string) attribute.KeyValue {
	return attribute.String(AttrProjectID, id)
}

// FileID returns an attribute for the asset file.
func FileID(id string) attribute.KeyValue {
	return attribute.String(AttrFileID, id)
}

// JobID returns an attribute for a queued job.
func JobID(id string) attribute.KeyValue {
	return attribute.String(AttrJobID, id)
}

// JobType returns an attribute for a job's payload shape.
func JobType(jobType string) attribute.KeyValue {
	return attribute.String(AttrJobType, jobType)
}

// Variant returns an attribute for a variant name ("thumb", "avatar", ...).
func Variant(name string) attribute.KeyValue {
	return attribute.String(AttrVariant, name)
}

// Bucket returns an attribute for the S3 bucket name.
func Bucket(name string) attribute.KeyValue {
	return attribute.String(AttrBucket, name)
}

// StorageKey returns an attribute for an S3 object key.
func StorageKey(key string) attribute.KeyValue {
	return attribute.String(AttrKey, key)
}

// Region returns an attribute for the storage region.
func Region(region string) attribute.KeyValue {
	return attribute.String(AttrRegion, region)
}

// StartJobSpan starts a span for a worker pool operation on a single job.
func StartJobSpan(ctx context.Context, spanName, jobID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := append([]attribute.KeyValue{JobID(jobID)}, attrs...)
	return StartSpan(ctx, spanName, trace.WithAttributes(allAttrs...))
}

// StartStorageSpan starts a span for an object-store operation.
func StartStorageSpan(ctx context.Context, spanName, bucket, key string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := append([]attribute.KeyValue{Bucket(bucket), StorageKey(key)}, attrs...)
	return StartSpan(ctx, spanName, trace.WithAttributes(allAttrs...))
}
