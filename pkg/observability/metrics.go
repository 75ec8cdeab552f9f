package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricAPIRequestsTotal   = "sonarexport.api.requests.total"
	metricAPIRequestDuration = "sonarexport.api.request.duration.seconds"
	metricAPIErrorsTotal     = "sonarexport.api.errors.total"
	metricAPIResponseBytes   = "sonarexport.api.response.bytes"

	attrEndpoint = "endpoint"
	attrStatus   = "status"
)

// Request outcome labels.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// durationBucketBoundaries covers 10ms to 120s: a single API page is fast,
// but large measure trees on a loaded server can take tens of seconds.
var durationBucketBoundaries = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120}

// sizeBucketBoundaries covers 1KiB to 64MiB response bodies.
var sizeBucketBoundaries = []float64{1 << 10, 16 << 10, 128 << 10, 1 << 20, 8 << 20, 32 << 20, 64 << 20}

// APIMetrics holds the Rate, Error, Duration instruments for quality server
// API calls, labelled by endpoint path.
type APIMetrics struct {
	requestsTotal   metric.Int64Counter
	requestDuration metric.Float64Histogram
	errorsTotal     metric.Int64Counter
	responseBytes   metric.Int64Histogram
}

// NewAPIMetrics creates API metric instruments from the given meter.
func NewAPIMetrics(mt metric.Meter) (*APIMetrics, error) {
	b := newMetricBuilder(mt)

	am := &APIMetrics{
		requestsTotal: b.counter(metricAPIRequestsTotal,
			"Total number of quality server API requests", "{request}"),
		requestDuration: b.histogram(metricAPIRequestDuration,
			"API request duration in seconds", "s", durationBucketBoundaries...),
		errorsTotal: b.counter(metricAPIErrorsTotal,
			"Total number of failed API requests", "{error}"),
		responseBytes: b.int64Histogram(metricAPIResponseBytes,
			"API response body size in bytes", "By", sizeBucketBoundaries...),
	}

	if b.err != nil {
		return nil, b.err
	}

	return am, nil
}

// RecordRequest records a completed request with its endpoint, status, and duration.
// Safe to call on a nil receiver (no-op).
func (am *APIMetrics) RecordRequest(ctx context.Context, endpoint, status string, duration time.Duration) {
	if am == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrEndpoint, endpoint),
		attribute.String(attrStatus, status),
	)

	am.requestsTotal.Add(ctx, 1, attrs)
	am.requestDuration.Record(ctx, duration.Seconds(), attrs)

	if status == StatusError {
		am.errorsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String(attrEndpoint, endpoint),
		))
	}
}

// RecordResponseBytes records the size of a fully read response body.
// Safe to call on a nil receiver (no-op).
func (am *APIMetrics) RecordResponseBytes(ctx context.Context, endpoint string, size int64) {
	if am == nil {
		return
	}

	am.responseBytes.Record(ctx, size, metric.WithAttributes(attribute.String(attrEndpoint, endpoint)))
}
