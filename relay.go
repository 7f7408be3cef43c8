package courier

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/xraph/courier/catalog"
	"github.com/xraph/courier/delivery"
	"github.com/xraph/courier/event"
	"github.com/xraph/courier/history"
	"github.com/xraph/courier/id"
	"github.com/xraph/courier/observability"
	"github.com/xraph/courier/subscription"
)

// Relay fans dispute events out to matching webhook subscriptions.
type Relay struct {
	config     Config
	registry   *subscription.Registry
	catalog    *catalog.Catalog
	engine     *delivery.Engine
	history    history.Store
	httpClient *http.Client
	metrics    *observability.Metrics
	tracer     *observability.Tracer
	logger     *slog.Logger

	// lifecycle is cancelled by Stop once the drain deadline passes.
	lifecycle context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// New creates a new Relay with the given options.
func New(opts ...Option) (*Relay, error) {
	r := &Relay{
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if err := r.config.Validate(); err != nil {
		return nil, err
	}
	r.wireServices()
	return r, nil
}

// wireServices initializes the internal services after options have been applied.
func (r *Relay) wireServices() {
	r.registry = subscription.NewRegistry(r.logger)

	if r.catalog == nil {
		r.catalog = catalog.New()
	}
	if r.history == nil {
		r.history = history.NewMemoryStore(r.config.MaxHistoryEntries)
	}

	r.engine = delivery.NewEngine(delivery.EngineConfig{
		MaxAttempts:    r.config.MaxRetries,
		RetryDelay:     r.config.RetryDelay,
		MaxRetryDelay:  r.config.MaxRetryDelay,
		RequestTimeout: r.config.RequestTimeout,
		HTTPClient:     r.httpClient,
		Metrics:        r.metrics,
		Tracer:         r.tracer,
	}, r.logger)

	r.lifecycle, r.cancel = context.WithCancel(context.Background())
}

// Config returns the effective configuration.
func (r *Relay) Config() Config {
	return r.config
}

// Dispatch delivers evt to every matching subscription and waits for all
// deliveries to finish. Deliveries run concurrently and retry independently;
// one failing subscription never affects another. Completed records are
// appended to history when it is enabled and returned in registration order.
//
// Cancelling ctx does not abort the dispatch. Only Stop can interrupt
// in-flight deliveries.
func (r *Relay) Dispatch(ctx context.Context, evt *event.Event) []*delivery.Record {
	records, err := r.TryDispatch(ctx, evt)
	if err != nil {
		r.logger.WarnContext(ctx, "event dropped", "error", err)
	}
	return records
}

// TryDispatch is Dispatch that reports a refused event instead of logging
// it. The error wraps ErrInvalidEvent for a nil or schema-violating event
// and is ErrStopped once Stop has been called.
func (r *Relay) TryDispatch(ctx context.Context, evt *event.Event) ([]*delivery.Record, error) {
	if err := r.checkEvent(evt); err != nil {
		return nil, err
	}
	if !r.acquire() {
		return nil, ErrStopped
	}
	defer r.wg.Done()

	return r.dispatch(ctx, evt), nil
}

// DispatchAsync runs Dispatch in the background. Stop waits for it.
func (r *Relay) DispatchAsync(ctx context.Context, evt *event.Event) error {
	if err := r.checkEvent(evt); err != nil {
		return err
	}
	if !r.acquire() {
		return ErrStopped
	}

	go func() {
		defer r.wg.Done()
		r.dispatch(context.WithoutCancel(ctx), evt)
	}()
	return nil
}

func (r *Relay) dispatch(ctx context.Context, evt *event.Event) []*delivery.Record {
	if r.metrics != nil {
		r.metrics.EventsDispatchedTotal.Inc()
	}

	var matched []*subscription.Subscription
	for _, sub := range r.registry.List() {
		if subscription.Matches(evt, sub) {
			matched = append(matched, sub)
		}
	}

	r.logger.DebugContext(ctx, "event dispatched",
		"event_id", evt.ID,
		"type", evt.Type,
		"subscriptions", len(matched),
	)
	if len(matched) == 0 {
		return nil
	}

	dctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()
	stop := context.AfterFunc(r.lifecycle, cancel)
	defer stop()

	records := make([]*delivery.Record, len(matched))

	var g errgroup.Group
	if r.config.Concurrency > 0 {
		g.SetLimit(r.config.Concurrency)
	}
	for i, sub := range matched {
		g.Go(func() error {
			records[i] = r.engine.Deliver(dctx, sub, evt)
			return nil
		})
	}
	_ = g.Wait()

	if r.config.EnableHistory {
		r.record(context.WithoutCancel(ctx), records)
	}
	return records
}

// Stop refuses new work and waits for running dispatches. If ctx ends
// first, in-flight deliveries are aborted and recorded as failed.
func (r *Relay) Stop(ctx context.Context) {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		r.logger.WarnContext(ctx, "shutdown deadline reached, aborting deliveries")
		r.cancel()
		<-done
	}
	r.cancel()
}

// acquire registers a running dispatch unless the relay is stopped.
func (r *Relay) acquire() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.stopped {
		return false
	}
	r.wg.Add(1)
	return true
}

// checkEvent rejects nil events and, when enabled, payloads that fail their
// catalog schema.
func (r *Relay) checkEvent(evt *event.Event) error {
	if evt == nil {
		return fmt.Errorf("%w: nil event", ErrInvalidEvent)
	}
	if !r.config.ValidatePayloads {
		return nil
	}
	if err := r.catalog.Validate(evt); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidEvent, evt.ID, err)
	}
	return nil
}

func (r *Relay) record(ctx context.Context, records []*delivery.Record) {
	for _, rec := range records {
		if err := r.history.Append(ctx, rec); err != nil {
			r.logger.ErrorContext(ctx, "append delivery history failed",
				"delivery_id", rec.ID,
				"error", err,
			)
		}
	}
	if r.metrics != nil {
		if n, err := r.history.Len(ctx); err == nil {
			r.metrics.HistorySize.Set(float64(n))
		}
	}
}

// Register adds a subscription.
func (r *Relay) Register(in subscription.Input) (*subscription.Subscription, error) {
	return r.registry.Register(in)
}

// Unregister removes a subscription. It reports whether one was removed.
func (r *Relay) Unregister(subID id.ID) bool {
	return r.registry.Unregister(subID)
}

// Pause stops deliveries to a subscription. It returns false if subID is unknown.
func (r *Relay) Pause(subID id.ID) bool {
	return r.registry.Pause(subID)
}

// Resume re-enables deliveries to a subscription. It returns false if subID is unknown.
func (r *Relay) Resume(subID id.ID) bool {
	return r.registry.Resume(subID)
}

// Subscriptions returns every subscription in registration order.
func (r *Relay) Subscriptions() []*subscription.Subscription {
	return r.registry.List()
}

// Subscription returns a single subscription.
func (r *Relay) Subscription(subID id.ID) (*subscription.Subscription, error) {
	sub, ok := r.registry.Get(subID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSubscriptionNotFound, subID)
	}
	return sub, nil
}

// History returns recorded deliveries matching f, oldest first.
func (r *Relay) History(ctx context.Context, f history.Filter) ([]*delivery.Record, error) {
	return r.history.Query(ctx, f)
}

// ClearHistory discards all recorded deliveries.
func (r *Relay) ClearHistory(ctx context.Context) error {
	if err := r.history.Clear(ctx); err != nil {
		return err
	}
	if r.metrics != nil {
		r.metrics.HistorySize.Set(0)
	}
	return nil
}

// HistoryLen returns the number of retained delivery records.
func (r *Relay) HistoryLen(ctx context.Context) (int, error) {
	return r.history.Len(ctx)
}

// Catalog returns the event type catalog.
func (r *Relay) Catalog() *catalog.Catalog {
	return r.catalog
}
