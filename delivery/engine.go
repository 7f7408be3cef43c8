// Package delivery executes webhook deliveries: one HTTP attempt at a time,
// with exponential backoff between failed attempts.
package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/courier/event"
	"github.com/xraph/courier/id"
	"github.com/xraph/courier/observability"
	"github.com/xraph/courier/subscription"
)

// EngineConfig holds engine configuration.
type EngineConfig struct {
	MaxAttempts    int
	RetryDelay     time.Duration
	MaxRetryDelay  time.Duration
	RequestTimeout time.Duration
	HTTPClient     *http.Client
	Metrics        *observability.Metrics
	Tracer         *observability.Tracer
}

// Engine runs the attempt loop for a single (event, subscription) pair.
// It is safe for concurrent use.
type Engine struct {
	sender  *Sender
	retrier *Retrier
	config  EngineConfig
	logger  *slog.Logger
}

// NewEngine creates a delivery engine.
func NewEngine(cfg EngineConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		sender:  NewSenderWithClient(cfg.HTTPClient, cfg.RequestTimeout),
		retrier: NewRetrier(cfg.MaxAttempts, cfg.RetryDelay, cfg.MaxRetryDelay),
		config:  cfg,
		logger:  logger,
	}
}

// Retrier returns the engine's retry policy.
func (e *Engine) Retrier() *Retrier {
	return e.retrier
}

// Deliver sends evt to sub, retrying failed attempts until one succeeds or
// the attempt ceiling is reached. It never returns an error: every failure
// ends up in the returned record. Cancelling ctx stops any backoff wait and
// in-flight request.
func (e *Engine) Deliver(ctx context.Context, sub *subscription.Subscription, evt *event.Event) (rec *Record) {
	rec = &Record{
		ID:             id.NewDeliveryID(),
		EventID:        evt.ID,
		EventType:      evt.Type,
		SubscriptionID: sub.ID,
		URL:            sub.URL,
	}

	var span trace.Span
	if e.config.Tracer != nil {
		ctx, span = e.config.Tracer.StartDeliverySpan(ctx, rec.ID.String(), evt.ID, sub.ID.String())
	}
	if e.config.Metrics != nil {
		e.config.Metrics.InFlightDeliveries.Inc()
	}

	defer func() {
		if r := recover(); r != nil {
			rec.Success = false
			rec.Error = fmt.Sprintf("delivery panic: %v", r)
			e.logger.ErrorContext(ctx, "delivery panicked",
				"delivery_id", rec.ID, "subscription_id", sub.ID, "panic", r)
		}
		rec.CompletedAt = time.Now().UTC()
		e.finish(span, rec)
	}()

	for attempt := 1; ; attempt++ {
		res := e.sender.Send(ctx, sub, evt, uuid.NewString())

		rec.Attempts = attempt
		rec.LatencyMs = res.LatencyMs
		if res.StatusCode != 0 {
			rec.StatusCode = res.StatusCode
		}
		if res.Error != "" {
			rec.Error = res.Error
		}

		if e.config.Metrics != nil {
			e.config.Metrics.RecordAttempt(res.Success(), float64(res.LatencyMs)/1000.0)
		}
		if span != nil {
			e.config.Tracer.RecordAttempt(span, attempt, res.StatusCode, res.LatencyMs, res.Error)
		}

		switch e.retrier.Decide(res, attempt) {
		case Delivered:
			rec.Success = true
			rec.Error = ""
			e.logger.DebugContext(ctx, "delivered",
				"delivery_id", rec.ID,
				"subscription_id", sub.ID,
				"event_id", evt.ID,
				"status", res.StatusCode,
				"attempt", attempt,
				"latency_ms", res.LatencyMs,
			)
			return rec

		case Exhausted:
			e.logger.WarnContext(ctx, "delivery failed permanently",
				"delivery_id", rec.ID,
				"subscription_id", sub.ID,
				"event_id", evt.ID,
				"status", rec.StatusCode,
				"attempts", attempt,
				"error", rec.Error,
			)
			return rec

		case Retry:
			wait := e.retrier.Backoff(attempt)
			e.logger.DebugContext(ctx, "retry scheduled",
				"delivery_id", rec.ID,
				"attempt", attempt,
				"backoff", wait,
				"error", res.Error,
			)
			if err := sleep(ctx, wait); err != nil {
				rec.Error = "delivery aborted: " + err.Error()
				e.logger.WarnContext(ctx, "delivery aborted during backoff",
					"delivery_id", rec.ID, "attempts", attempt, "error", err)
				return rec
			}
		}
	}
}

func (e *Engine) finish(span trace.Span, rec *Record) {
	if e.config.Metrics != nil {
		e.config.Metrics.InFlightDeliveries.Dec()
		e.config.Metrics.RecordDelivery(rec.Status())
	}
	if span != nil {
		e.config.Tracer.EndDeliverySpan(span, rec.StatusCode, rec.Attempts, rec.Success, rec.Error)
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
