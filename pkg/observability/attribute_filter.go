package observability

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// exportedPrefixes are the attribute namespaces spans may carry to the exporter.
var exportedPrefixes = []string{
	"sonarexport.",
	"sonar.",
	"report.",
	"error.",
	"http.",
	"url.",
	"server.",
}

// strippedKeys never leave the process even when their namespace is exported.
var strippedKeys = map[string]bool{
	"sonar.token":                       true,
	"http.request.header.authorization": true,
	"http.request.body":                 true,
	"http.response.body":                true,
}

// exportable reports whether an attribute key may reach the span exporter.
func exportable(key string) bool {
	if strippedKeys[key] {
		return false
	}

	if key == "error" {
		return true
	}

	return slices.ContainsFunc(exportedPrefixes, func(prefix string) bool {
		return strings.HasPrefix(key, prefix)
	})
}

// NewAttributeFilter wraps delegate so that ended spans only expose
// attributes in the sonarexport, sonar, report, error, http, url and server
// namespaces. Credentials and bodies are stripped even inside those.
func NewAttributeFilter(delegate sdktrace.SpanProcessor) sdktrace.SpanProcessor {
	return attributeFilter{delegate: delegate}
}

type attributeFilter struct {
	delegate sdktrace.SpanProcessor
}

func (f attributeFilter) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	f.delegate.OnStart(parent, s)
}

func (f attributeFilter) OnEnd(s sdktrace.ReadOnlySpan) {
	f.delegate.OnEnd(exportSpan{ReadOnlySpan: s})
}

func (f attributeFilter) Shutdown(ctx context.Context) error {
	err := f.delegate.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("attribute filter shutdown: %w", err)
	}

	return nil
}

func (f attributeFilter) ForceFlush(ctx context.Context) error {
	err := f.delegate.ForceFlush(ctx)
	if err != nil {
		return fmt.Errorf("attribute filter flush: %w", err)
	}

	return nil
}

// exportSpan is the read-only view handed to the delegate.
type exportSpan struct {
	sdktrace.ReadOnlySpan
}

func (s exportSpan) Attributes() []attribute.KeyValue {
	return slices.DeleteFunc(slices.Clone(s.ReadOnlySpan.Attributes()), func(kv attribute.KeyValue) bool {
		return !exportable(string(kv.Key))
	})
}
