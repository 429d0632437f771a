package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies business spans started through this package.
const TracerName = "merchantry-backend"

// StartSpan starts a span named after a business operation, e.g.
// "order.confirm". The caller must End the returned span.
func StartSpan(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	opts := []trace.SpanStartOption{trace.WithSpanKind(trace.SpanKindInternal)}
	if len(attrs) > 0 {
		opts = append(opts, trace.WithAttributes(attrs...))
	}
	return tracer.Start(ctx, spanName, opts...)
}

// RecordError records err on the span and marks the span as failed.
// Nil spans and nil errors are ignored.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// String builds a string span attribute.
func String(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// Stringer builds a string span attribute from any fmt.Stringer, which
// covers uuid.UUID and decimal.Decimal without extra conversions at call
// sites.
func Stringer(key string, value fmt.Stringer) attribute.KeyValue {
	return attribute.String(key, value.String())
}

// Int builds an integer span attribute.
func Int(key string, value int) attribute.KeyValue {
	return attribute.Int(key, value)
}

// TraceID returns the active trace id from ctx, or "" when no span is
// recording.
func TraceID(ctx context.Context) string {
	tid := trace.SpanFromContext(ctx).SpanContext().TraceID()
	if !tid.IsValid() {
		return ""
	}
	return tid.String()
}
