package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys set on pipeline spans. Custom keys use the "conduit.*"
// namespace.
const (
	// Provider attributes
	AttrProvider = "conduit.provider"
	AttrModel    = "conduit.model"

	// Run attributes
	AttrStream      = "conduit.stream"
	AttrGenerations = "conduit.generations"
	AttrFragments   = "conduit.fragments"

	// HTTP attributes
	AttrHTTPStatus = "http.response.status_code"

	// Cache attributes
	AttrCacheHit  = "conduit.cache.hit"
	AttrCacheMode = "conduit.cache.mode"

	// Error attributes
	AttrErrorType    = "conduit.error.type"
	AttrErrorMessage = "error.message"
)

// SetProviderAttributes sets provider-related attributes on a span.
func SetProviderAttributes(span trace.Span, provider, model string) {
	span.SetAttributes(
		attribute.String(AttrProvider, provider),
		attribute.String(AttrModel, model),
	)
}

// SetCacheAttributes records the cache mode and lookup outcome.
func SetCacheAttributes(span trace.Span, hit bool, mode string) {
	span.SetAttributes(
		attribute.Bool(AttrCacheHit, hit),
		attribute.String(AttrCacheMode, mode),
	)
}

// SetErrorAttributes records err with a classification and marks the span
// as failed.
func SetErrorAttributes(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}
	span.SetAttributes(attribute.String(AttrErrorType, errorType))
	SetError(span, err)
	SetStatus(span, err)
}

// AddEvent adds a named event to the span.
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
