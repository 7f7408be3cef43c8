package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/xraph/courier"

// Tracer provides OpenTelemetry tracing for deliveries.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a tracer from the global provider.
func NewTracer() *Tracer {
	return NewTracerFromProvider(otel.GetTracerProvider())
}

// NewTracerFromProvider creates a tracer from tp.
func NewTracerFromProvider(tp trace.TracerProvider) *Tracer {
	return &Tracer{tracer: tp.Tracer(tracerName)}
}

// StartDeliverySpan starts the span covering every attempt of one delivery.
func (t *Tracer) StartDeliverySpan(ctx context.Context, deliveryID, eventID, subscriptionID string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "courier.delivery",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("courier.delivery_id", deliveryID),
			attribute.String("courier.event_id", eventID),
			attribute.String("courier.subscription_id", subscriptionID),
		),
	)
}

// RecordAttempt adds an attempt event to span.
func (t *Tracer) RecordAttempt(span trace.Span, attempt, statusCode, latencyMs int, errMsg string) {
	attrs := []attribute.KeyValue{
		attribute.Int("courier.attempt", attempt),
		attribute.Int("http.status_code", statusCode),
		attribute.Int("courier.latency_ms", latencyMs),
	}
	if errMsg != "" {
		attrs = append(attrs, attribute.String("courier.error", errMsg))
	}
	span.AddEvent("attempt", trace.WithAttributes(attrs...))
}

// EndDeliverySpan ends a delivery span with result attributes.
func (t *Tracer) EndDeliverySpan(span trace.Span, statusCode, attempts int, success bool, errMsg string) {
	span.SetAttributes(
		attribute.Int("http.status_code", statusCode),
		attribute.Int("courier.attempts", attempts),
		attribute.Bool("courier.success", success),
	)
	if !success {
		span.SetStatus(codes.Error, errMsg)
	}
	span.End()
}
