package courier_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/xraph/courier"
	"github.com/xraph/courier/event"
	"github.com/xraph/courier/history"
	"github.com/xraph/courier/id"
	"github.com/xraph/courier/observability"
	"github.com/xraph/courier/signature"
	"github.com/xraph/courier/subscription"
)

func ctx() context.Context { return context.Background() }

func setup(t *testing.T, opts ...courier.Option) *courier.Relay {
	t.Helper()
	opts = append([]courier.Option{courier.WithRetryDelay(time.Millisecond)}, opts...)
	r, err := courier.New(opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { r.Stop(ctx()) })
	return r
}

func register(t *testing.T, r *courier.Relay, in subscription.Input) *subscription.Subscription {
	t.Helper()
	sub, err := r.Register(in)
	if err != nil {
		t.Fatal(err)
	}
	return sub
}

func raisedEvent(disputeID any) *event.Event {
	return &event.Event{
		Type:      event.TypeDisputeRaised,
		ID:        "0xabc:1",
		Timestamp: 1700000000,
		Data: map[string]any{
			"disputeId":  disputeID,
			"claimant":   "0xClaimant",
			"respondent": "0xRespondent",
		},
	}
}

// countingServer answers with the status returned by status for each hit.
func countingServer(t *testing.T, status func(n int32) int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status(hits.Add(1)))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func ok(int32) int { return http.StatusOK }

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		opt  courier.Option
	}{
		{"zero retries", courier.WithMaxRetries(0)},
		{"negative concurrency", courier.WithConcurrency(-1)},
		{"zero timeout", courier.WithRequestTimeout(0)},
		{"zero history", courier.WithMaxHistoryEntries(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := courier.New(tt.opt)
			if !errors.Is(err, courier.ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := courier.DefaultConfig()
	if cfg.MaxRetries != 3 || cfg.RetryDelay != time.Second || cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("unexpected retry defaults: %+v", cfg)
	}
	if !cfg.EnableHistory || cfg.MaxHistoryEntries != 1000 {
		t.Fatalf("unexpected history defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestDispatchSignsWithSecret(t *testing.T) {
	var (
		mu     sync.Mutex
		body   []byte
		header string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		b, _ := io.ReadAll(req.Body)
		mu.Lock()
		body, header = b, req.Header.Get(signature.HeaderSignature)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := setup(t)
	sub := register(t, r, subscription.Input{
		URL:        srv.URL,
		Secret:     "s3cr3t",
		EventTypes: []event.Type{event.TypeDisputeResolved},
	})

	recs := r.Dispatch(ctx(), &event.Event{
		Type:      event.TypeDisputeResolved,
		ID:        "e1",
		Timestamp: 1700000000,
		Data:      map[string]any{"disputeId": 42, "winner": "0xClaimant"},
	})
	if len(recs) != 1 || !recs[0].Success {
		t.Fatalf("expected one successful delivery, got %+v", recs)
	}
	if !recs[0].SubscriptionID.Equal(sub.ID) {
		t.Fatalf("record subscription %s, want %s", recs[0].SubscriptionID, sub.ID)
	}
	if recs[0].EventID != "e1" || recs[0].EventType != event.TypeDisputeResolved {
		t.Fatalf("unexpected record: %+v", recs[0])
	}

	mu.Lock()
	defer mu.Unlock()
	if header != signature.Sign(body, "s3cr3t") {
		t.Fatalf("signature %q does not match body", header)
	}
	if !signature.Verify(body, header, "s3cr3t") {
		t.Fatal("recipient verification failed")
	}
}

func TestDispatchDisputeIDFilter(t *testing.T) {
	srv, hits := countingServer(t, ok)

	r := setup(t)
	register(t, r, subscription.Input{URL: srv.URL, DisputeIDs: []any{42}})

	if recs := r.Dispatch(ctx(), raisedEvent(7)); len(recs) != 0 {
		t.Fatalf("expected no deliveries for dispute 7, got %d", len(recs))
	}
	if hits.Load() != 0 {
		t.Fatalf("expected no requests, got %d", hits.Load())
	}

	if recs := r.Dispatch(ctx(), raisedEvent(int64(42))); len(recs) != 1 {
		t.Fatalf("expected one delivery for dispute 42, got %d", len(recs))
	}
}

func TestDispatchRetriesWithBackoff(t *testing.T) {
	srv, hits := countingServer(t, func(n int32) int {
		if n <= 2 {
			return http.StatusInternalServerError
		}
		return http.StatusOK
	})

	r := setup(t, courier.WithRetryDelay(100*time.Millisecond))
	sub := register(t, r, subscription.Input{URL: srv.URL})

	start := time.Now()
	recs := r.Dispatch(ctx(), raisedEvent(1))
	elapsed := time.Since(start)

	if len(recs) != 1 || !recs[0].Success || recs[0].Attempts != 3 {
		t.Fatalf("expected success on attempt 3, got %+v", recs)
	}
	if elapsed < 300*time.Millisecond {
		t.Fatalf("expected at least 300ms, took %v", elapsed)
	}
	if hits.Load() != 3 {
		t.Fatalf("expected 3 requests, got %d", hits.Load())
	}

	hist, err := r.History(ctx(), history.Filter{SubscriptionID: sub.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 1 || hist[0].Attempts != 3 || !hist[0].Success {
		t.Fatalf("unexpected history: %+v", hist)
	}
}

func TestDispatchFailuresAreIsolated(t *testing.T) {
	good, _ := countingServer(t, ok)
	bad, badHits := countingServer(t, func(int32) int { return http.StatusBadGateway })

	r := setup(t)
	goodSub := register(t, r, subscription.Input{URL: good.URL})
	badSub := register(t, r, subscription.Input{URL: bad.URL})

	recs := r.Dispatch(ctx(), raisedEvent(1))
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if !recs[0].SubscriptionID.Equal(goodSub.ID) || !recs[0].Success {
		t.Fatalf("expected good delivery first, got %+v", recs[0])
	}
	if !recs[1].SubscriptionID.Equal(badSub.ID) || recs[1].Success || recs[1].Attempts != 3 {
		t.Fatalf("expected exhausted bad delivery, got %+v", recs[1])
	}
	if badHits.Load() != 3 {
		t.Fatalf("expected 3 attempts against the failing endpoint, got %d", badHits.Load())
	}

	n, err := r.HistoryLen(ctx())
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 history records, got %d", n)
	}
	failed, _ := r.History(ctx(), history.Filter{SuccessOnly: true})
	if len(failed) != 1 {
		t.Fatalf("expected 1 successful record, got %d", len(failed))
	}
}

func TestDispatchSkipsPausedAndFiltered(t *testing.T) {
	srv, hits := countingServer(t, ok)

	r := setup(t)
	paused := register(t, r, subscription.Input{URL: srv.URL})
	register(t, r, subscription.Input{URL: srv.URL, EventTypes: []event.Type{event.TypeEscrowCreated}})
	register(t, r, subscription.Input{URL: srv.URL, Addresses: []string{"0xOther"}})
	matchAddr := register(t, r, subscription.Input{URL: srv.URL, Addresses: []string{"0XCLAIMANT"}})

	if !r.Pause(paused.ID) {
		t.Fatal("expected pause to succeed")
	}

	recs := r.Dispatch(ctx(), raisedEvent(1))
	if len(recs) != 1 || !recs[0].SubscriptionID.Equal(matchAddr.ID) {
		t.Fatalf("expected only the address match, got %+v", recs)
	}

	if !r.Resume(paused.ID) {
		t.Fatal("expected resume to succeed")
	}
	if recs := r.Dispatch(ctx(), raisedEvent(1)); len(recs) != 2 {
		t.Fatalf("expected 2 deliveries after resume, got %d", len(recs))
	}
	if hits.Load() != 3 {
		t.Fatalf("expected 3 requests, got %d", hits.Load())
	}
}

func TestDispatchHistoryDisabled(t *testing.T) {
	srv, _ := countingServer(t, ok)

	r := setup(t, courier.WithHistory(false))
	register(t, r, subscription.Input{URL: srv.URL})

	if recs := r.Dispatch(ctx(), raisedEvent(1)); len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if n, _ := r.HistoryLen(ctx()); n != 0 {
		t.Fatalf("expected no history, got %d", n)
	}
}

func TestDispatchIgnoresCallerCancellation(t *testing.T) {
	srv, hits := countingServer(t, func(n int32) int {
		if n == 1 {
			return http.StatusInternalServerError
		}
		return http.StatusOK
	})

	r := setup(t, courier.WithRetryDelay(50*time.Millisecond))
	register(t, r, subscription.Input{URL: srv.URL})

	cctx, cancel := context.WithCancel(ctx())
	cancel()

	recs := r.Dispatch(cctx, raisedEvent(1))
	if len(recs) != 1 || !recs[0].Success || hits.Load() != 2 {
		t.Fatalf("expected dispatch to complete despite cancelled ctx, got %+v", recs)
	}
}

func TestDispatchPayloadValidation(t *testing.T) {
	srv, hits := countingServer(t, ok)

	r := setup(t, courier.WithPayloadValidation(true))
	register(t, r, subscription.Input{URL: srv.URL})

	bad := raisedEvent(1)
	delete(bad.Data, "claimant")

	if recs := r.Dispatch(ctx(), bad); recs != nil {
		t.Fatalf("expected invalid event to be dropped, got %+v", recs)
	}
	if err := r.DispatchAsync(ctx(), bad); !errors.Is(err, courier.ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
	if recs := r.Dispatch(ctx(), raisedEvent(1)); len(recs) != 1 {
		t.Fatalf("expected valid event to be delivered, got %d", len(recs))
	}
	if hits.Load() != 1 {
		t.Fatalf("expected 1 request, got %d", hits.Load())
	}
}

func TestTryDispatchReportsRefusal(t *testing.T) {
	srv, hits := countingServer(t, ok)

	r := setup(t, courier.WithPayloadValidation(true))
	register(t, r, subscription.Input{URL: srv.URL})

	bad := raisedEvent(1)
	delete(bad.Data, "respondent")

	recs, err := r.TryDispatch(ctx(), bad)
	if !errors.Is(err, courier.ErrInvalidEvent) || recs != nil {
		t.Fatalf("expected ErrInvalidEvent and no records, got %v, %+v", err, recs)
	}
	if _, err := r.TryDispatch(ctx(), nil); !errors.Is(err, courier.ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent for nil event, got %v", err)
	}

	recs, err = r.TryDispatch(ctx(), raisedEvent(1))
	if err != nil || len(recs) != 1 || !recs[0].Success {
		t.Fatalf("expected one delivery, got %v, %+v", err, recs)
	}

	r.Stop(ctx())
	if _, err := r.TryDispatch(ctx(), raisedEvent(1)); !errors.Is(err, courier.ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected 1 request, got %d", hits.Load())
	}
}

func TestDispatchNilEvent(t *testing.T) {
	r := setup(t)
	if recs := r.Dispatch(ctx(), nil); recs != nil {
		t.Fatal("expected nil records")
	}
	if err := r.DispatchAsync(ctx(), nil); !errors.Is(err, courier.ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
}

func TestDispatchAsyncDrainedByStop(t *testing.T) {
	srv, hits := countingServer(t, ok)

	r, err := courier.New()
	if err != nil {
		t.Fatal(err)
	}
	register(t, r, subscription.Input{URL: srv.URL})

	for range 5 {
		if err := r.DispatchAsync(ctx(), raisedEvent(1)); err != nil {
			t.Fatal(err)
		}
	}
	r.Stop(ctx())

	if hits.Load() != 5 {
		t.Fatalf("expected 5 deliveries after drain, got %d", hits.Load())
	}
	if n, _ := r.HistoryLen(ctx()); n != 5 {
		t.Fatalf("expected 5 history records, got %d", n)
	}

	if err := r.DispatchAsync(ctx(), raisedEvent(1)); !errors.Is(err, courier.ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
	if recs := r.Dispatch(ctx(), raisedEvent(1)); recs != nil {
		t.Fatal("expected stopped relay to drop events")
	}
}

func TestStopDeadlineAbortsBackoff(t *testing.T) {
	srv, _ := countingServer(t, func(int32) int { return http.StatusServiceUnavailable })

	r, err := courier.New(courier.WithRetryDelay(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	register(t, r, subscription.Input{URL: srv.URL})

	if err := r.DispatchAsync(ctx(), raisedEvent(1)); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)

	sctx, cancel := context.WithTimeout(ctx(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	r.Stop(sctx)
	if time.Since(start) > 5*time.Second {
		t.Fatal("stop did not abort the backoff")
	}

	recs, err := r.History(ctx(), history.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Success || !strings.HasPrefix(recs[0].Error, "delivery aborted:") {
		t.Fatalf("expected one aborted record, got %+v", recs)
	}
}

func TestHistoryTrimmedThroughRelay(t *testing.T) {
	srv, _ := countingServer(t, ok)

	r := setup(t, courier.WithMaxHistoryEntries(3))
	register(t, r, subscription.Input{URL: srv.URL})

	for range 5 {
		r.Dispatch(ctx(), raisedEvent(1))
	}
	if n, _ := r.HistoryLen(ctx()); n != 3 {
		t.Fatalf("expected 3 records, got %d", n)
	}

	if err := r.ClearHistory(ctx()); err != nil {
		t.Fatal(err)
	}
	if n, _ := r.HistoryLen(ctx()); n != 0 {
		t.Fatalf("expected empty history, got %d", n)
	}
}

func TestSubscriptionLookup(t *testing.T) {
	r := setup(t)
	sub := register(t, r, subscription.Input{URL: "https://example.com/hook"})

	got, err := r.Subscription(sub.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.URL != sub.URL {
		t.Fatalf("got %q, want %q", got.URL, sub.URL)
	}

	if _, err := r.Subscription(id.NewSubscriptionID()); !errors.Is(err, courier.ErrSubscriptionNotFound) {
		t.Fatalf("expected ErrSubscriptionNotFound, got %v", err)
	}

	if !r.Unregister(sub.ID) {
		t.Fatal("expected removal")
	}
	if r.Unregister(sub.ID) {
		t.Fatal("expected second removal to report false")
	}
	if len(r.Subscriptions()) != 0 {
		t.Fatal("expected no subscriptions")
	}
}

func TestDispatchMetrics(t *testing.T) {
	srv, _ := countingServer(t, ok)

	reg := prometheus.NewRegistry()
	r := setup(t, courier.WithMetrics(observability.NewMetrics(reg)))
	register(t, r, subscription.Input{URL: srv.URL})
	register(t, r, subscription.Input{URL: srv.URL})

	r.Dispatch(ctx(), raisedEvent(1))

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	values := map[string]float64{}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				values[f.GetName()] += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[f.GetName()] = m.GetGauge().GetValue()
			}
		}
	}
	if values["courier_events_dispatched_total"] != 1 {
		t.Errorf("events dispatched = %v", values["courier_events_dispatched_total"])
	}
	if values["courier_deliveries_total"] != 2 {
		t.Errorf("deliveries = %v", values["courier_deliveries_total"])
	}
	if values["courier_history_size"] != 2 {
		t.Errorf("history size = %v", values["courier_history_size"])
	}
}
