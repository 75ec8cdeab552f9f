package observability

import (
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// httpStatusClientError is the lowest status code treated as a failed call.
const httpStatusClientError = 400

// Transport is an [http.RoundTripper] that creates a client span per
// outgoing request, injects W3C trace context into the request headers and
// records API RED metrics. Span names use "METHOD /path".
type Transport struct {
	base    http.RoundTripper
	tracer  trace.Tracer
	metrics *APIMetrics
}

// NewTransport wraps base (http.DefaultTransport when nil). metrics may be nil.
func NewTransport(base http.RoundTripper, tracer trace.Tracer, metrics *APIMetrics) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}

	return &Transport{base: base, tracer: tracer, metrics: metrics}
}

// RoundTrip implements [http.RoundTripper].
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	endpoint := req.URL.Path
	start := time.Now()

	ctx, span := t.tracer.Start(req.Context(), req.Method+" "+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.HTTPRequestMethodKey.String(req.Method),
			semconv.URLPath(endpoint),
			semconv.ServerAddress(req.URL.Hostname()),
		),
	)
	defer span.End()

	outgoing := req.Clone(ctx)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(outgoing.Header))

	resp, err := t.base.RoundTrip(outgoing)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		t.metrics.RecordRequest(ctx, endpoint, StatusError, time.Since(start))

		return nil, fmt.Errorf("round trip %s: %w", endpoint, err)
	}

	span.SetAttributes(semconv.HTTPResponseStatusCode(resp.StatusCode))

	status := StatusOK
	if resp.StatusCode >= httpStatusClientError {
		status = StatusError

		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
	}

	t.metrics.RecordRequest(ctx, endpoint, status, time.Since(start))

	return resp, nil
}
