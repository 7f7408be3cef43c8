package courier

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/xraph/courier/catalog"
	"github.com/xraph/courier/history"
	"github.com/xraph/courier/observability"
)

// Option configures a Relay instance.
type Option func(*Relay) error

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(r *Relay) error {
		r.config = cfg
		return nil
	}
}

// WithLogger sets the structured logger for the Relay instance.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) error {
		r.logger = logger
		return nil
	}
}

// WithConcurrency caps the deliveries running at once per dispatch.
func WithConcurrency(n int) Option {
	return func(r *Relay) error {
		r.config.Concurrency = n
		return nil
	}
}

// WithRequestTimeout sets the HTTP timeout per delivery attempt.
func WithRequestTimeout(d time.Duration) Option {
	return func(r *Relay) error {
		r.config.RequestTimeout = d
		return nil
	}
}

// WithMaxRetries sets the maximum number of attempts per delivery.
func WithMaxRetries(n int) Option {
	return func(r *Relay) error {
		r.config.MaxRetries = n
		return nil
	}
}

// WithRetryDelay sets the base backoff between attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(r *Relay) error {
		r.config.RetryDelay = d
		return nil
	}
}

// WithMaxRetryDelay caps a single backoff wait.
func WithMaxRetryDelay(d time.Duration) Option {
	return func(r *Relay) error {
		r.config.MaxRetryDelay = d
		return nil
	}
}

// WithHistory enables or disables delivery history.
func WithHistory(enabled bool) Option {
	return func(r *Relay) error {
		r.config.EnableHistory = enabled
		return nil
	}
}

// WithMaxHistoryEntries bounds the default in-memory history.
func WithMaxHistoryEntries(n int) Option {
	return func(r *Relay) error {
		r.config.MaxHistoryEntries = n
		return nil
	}
}

// WithHistoryStore replaces the default in-memory history store.
func WithHistoryStore(s history.Store) Option {
	return func(r *Relay) error {
		r.history = s
		return nil
	}
}

// WithPayloadValidation toggles catalog schema validation in Dispatch.
func WithPayloadValidation(enabled bool) Option {
	return func(r *Relay) error {
		r.config.ValidatePayloads = enabled
		return nil
	}
}

// WithCatalog replaces the default event type catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(r *Relay) error {
		r.catalog = c
		return nil
	}
}

// WithHTTPClient sets the client used for outbound deliveries.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Relay) error {
		r.httpClient = c
		return nil
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Relay) error {
		r.metrics = m
		return nil
	}
}

// WithTracer enables OpenTelemetry spans per delivery.
func WithTracer(t *observability.Tracer) Option {
	return func(r *Relay) error {
		r.tracer = t
		return nil
	}
}
