package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/xraph/courier/event"
	"github.com/xraph/courier/signature"
	"github.com/xraph/courier/subscription"
)

const (
	maxResponseBody = 1024 // 1KB cap on response body storage
	userAgent       = "Courier/1.0"
)

// Result holds the outcome of a single delivery attempt.
type Result struct {
	StatusCode int
	Error      string
	Response   string
	LatencyMs  int
}

// Success reports whether the attempt received a 2xx response.
func (r Result) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Sender performs one HTTP webhook delivery attempt.
type Sender struct {
	client  *http.Client
	timeout time.Duration
}

// NewSender creates a sender whose attempts are bounded by timeout.
// A non-positive timeout disables the bound.
func NewSender(timeout time.Duration) *Sender {
	return NewSenderWithClient(nil, timeout)
}

// NewSenderWithClient creates a sender using client for transport. A nil
// client gets a default one that never follows redirects: only a 2xx reply
// to the POST itself counts as delivered.
func NewSenderWithClient(client *http.Client, timeout time.Duration) *Sender {
	if client == nil {
		client = &http.Client{CheckRedirect: noRedirect}
	}
	return &Sender{client: client, timeout: timeout}
}

func noRedirect(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}

// Send posts evt to sub.URL. attemptID is sent as the X-Webhook-Delivery
// header and must be unique per attempt. The request is aborted when the
// sender's timeout expires.
func (s *Sender) Send(ctx context.Context, sub *subscription.Subscription, evt *event.Event, attemptID string) Result {
	body, err := json.Marshal(evt)
	if err != nil {
		return Result{Error: fmt.Sprintf("marshal payload: %v", err)}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.URL, bytes.NewReader(body))
	if err != nil {
		return Result{Error: fmt.Sprintf("create request: %v", err)}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(signature.HeaderEvent, string(evt.Type))
	req.Header.Set(signature.HeaderDelivery, attemptID)
	req.Header.Set(signature.HeaderTimestamp, strconv.FormatInt(evt.Timestamp, 10))
	if sub.HasSecret() {
		req.Header.Set(signature.HeaderSignature, signature.Sign(body, sub.Secret))
	}

	start := time.Now()
	resp, err := s.client.Do(req) //nolint:gosec // G704: URL is a registered webhook destination.
	latency := int(time.Since(start).Milliseconds())

	if err != nil {
		return Result{
			Error:     err.Error(),
			LatencyMs: latency,
		}
	}
	defer resp.Body.Close()

	// The body is informational only; a failed read does not change the outcome.
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))

	res := Result{
		StatusCode: resp.StatusCode,
		Response:   string(respBody),
		LatencyMs:  latency,
	}
	if !res.Success() {
		res.Error = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return res
}
