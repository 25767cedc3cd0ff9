package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/variantbench/internal/metrics"
)

// StartRequestSpan starts a client span for one attempt against an endpoint.
func StartRequestSpan(ctx context.Context, tracer trace.Tracer, endpoint, method, target string) (context.Context, trace.Span) {
	spanName := method + " request"
	if endpoint != "" {
		spanName = method + " " + endpoint
	}
	ctx, span := tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.full", target),
	)
	if endpoint != "" {
		span.SetAttributes(attribute.String("variantbench.endpoint", endpoint))
	}
	return ctx, span
}

// EndOutcomeSpan records the attempt's outcome on span and ends it.
func EndOutcomeSpan(span trace.Span, o metrics.Outcome) {
	span.SetAttributes(attribute.Float64("variantbench.latency_ms", o.LatencyMs))
	if o.HasResponse() {
		span.SetAttributes(attribute.Int("http.response.status_code", o.StatusCode))
	}
	switch {
	case o.Success:
		span.SetStatus(codes.Ok, "")
	case o.ErrorKind != "":
		span.SetAttributes(attribute.String("error.type", string(o.ErrorKind)))
		span.SetStatus(codes.Error, o.ErrorMessage)
	default:
		span.SetStatus(codes.Error, o.ErrorMessage)
	}
	span.End()
}

// InjectHTTPHeaders injects W3C trace context into HTTP headers.
func InjectHTTPHeaders(ctx context.Context, headers http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(headers))
}
