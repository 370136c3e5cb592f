package logger

import (
	"log/slog"
)

// Standard field keys for structured logging. Use these consistently across
// log statements so aggregation/querying can rely on a stable schema.
const (
	// Distributed tracing
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// HTTP request
	KeyMethod    = "method"     // HTTP method
	KeyRoute     = "route"      // Matched route pattern
	KeyStatus    = "status"     // HTTP status code
	KeyClientIP  = "client_ip"  // Caller's IP address
	KeyRequestID = "request_id" // Per-request correlation ID

	// Tenant/resource identifiers
	KeyProjectID = "project_id" // Owning project
	KeyFileID    = "file_id"    // Asset file
	KeyJobID     = "job_id"     // Queued job
	KeyJobType   = "job_type"   // Job payload shape
	KeyVariant   = "variant"    // Variant name ("thumb", "avatar", ...)

	// Operation metadata
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeySource     = "source"      // Data source: config file, env, defaults
	KeyOperation  = "operation"   // Sub-operation type for complex operations

	// Object storage
	KeyBucket     = "bucket"      // S3 bucket name
	KeyKey        = "key"         // S3 object key
	KeyRegion     = "region"      // Storage region
	KeyAttempt    = "attempt"     // Retry attempt number
	KeyMaxRetries = "max_retries" // Maximum retry attempts
)

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// Method returns a slog.Attr for the HTTP method
func Method(method string) slog.Attr {
	return slog.String(KeyMethod, method)
}

// Route returns a slog.Attr for the matched route pattern
func Route(route string) slog.Attr {
	return slog.String(KeyRoute, route)
}

// Status returns a slog.Attr for an HTTP status code
func Status(code int) slog.Attr {
	return slog.Int(KeyStatus, code)
}

// ClientIP returns a slog.Attr for the caller's IP address
func ClientIP(addr string) slog.Attr {
	return slog.String(KeyClientIP, addr)
}

// RequestIDStr returns a slog.Attr for the request correlation ID
func RequestIDStr(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// ProjectID returns a slog.Attr for the owning project
func ProjectID(id string) slog.Attr {
	return slog.String(KeyProjectID, id)
}

// FileID returns a slog.Attr for an asset file
func FileID(id string) slog.Attr {
	return slog.String(KeyFileID, id)
}

// JobID returns a slog.Attr for a queued job
func JobID(id string) slog.Attr {
	return slog.String(KeyJobID, id)
}

// JobType returns a slog.Attr for a job's payload shape
func JobType(jobType string) slog.Attr {
	return slog.String(KeyJobType, jobType)
}

// Variant returns a slog.Attr for a variant name
func Variant(name string) slog.Attr {
	return slog.String(KeyVariant, name)
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Source returns a slog.Attr for a configuration or data source
func Source(src string) slog.Attr {
	return slog.String(KeySource, src)
}

// Operation returns a slog.Attr for a sub-operation type
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Bucket returns a slog.Attr for an S3 bucket name
func Bucket(name string) slog.Attr {
	return slog.String(KeyBucket, name)
}

// Key returns a slog.Attr for an S3 object key
func Key(k string) slog.Attr {
	return slog.String(KeyKey, k)
}

// Region returns a slog.Attr for a storage region
func Region(r string) slog.Attr {
	return slog.String(KeyRegion, r)
}

// Attempt returns a slog.Attr for a retry attempt number
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}

// MaxRetries returns a slog.Attr for the maximum retry attempts
func MaxRetries(n int) slog.Attr {
	return slog.Int(KeyMaxRetries, n)
}
