package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Inject writes the W3C traceparent (and tracestate, baggage) of the span in
// ctx into outgoing provider request headers. Nothing is written when ctx
// carries no sampled span or no propagator is installed.
func Inject(ctx context.Context, headers http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(headers))
}
