package delivery

import "time"

// Decision is the outcome of evaluating a delivery attempt.
type Decision int

const (
	// Delivered means the attempt got a 2xx response.
	Delivered Decision = iota

	// Retry means the attempt failed and another one is allowed.
	Retry

	// Exhausted means the attempt failed and it was the last one allowed.
	Exhausted
)

func (d Decision) String() string {
	switch d {
	case Delivered:
		return "delivered"
	case Retry:
		return "retry"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Retrier decides what follows an attempt and how long to back off.
type Retrier struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// NewRetrier creates a retrier allowing maxAttempts attempts (minimum 1)
// with exponential backoff starting at baseDelay. A positive maxDelay caps
// each backoff.
func NewRetrier(maxAttempts int, baseDelay, maxDelay time.Duration) *Retrier {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Retrier{
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		maxDelay:    maxDelay,
	}
}

// MaxAttempts returns the attempt ceiling.
func (r *Retrier) MaxAttempts() int {
	return r.maxAttempts
}

// Decide classifies attempt number attempt (counted from 1).
// Transport errors and every non-2xx status are retried alike.
func (r *Retrier) Decide(res Result, attempt int) Decision {
	if res.Success() {
		return Delivered
	}
	if attempt < r.maxAttempts {
		return Retry
	}
	return Exhausted
}

// ShouldRetry reports whether another attempt follows attempt.
func (r *Retrier) ShouldRetry(res Result, attempt int) bool {
	return r.Decide(res, attempt) == Retry
}

// Backoff returns the wait after failed attempt number attempt:
// baseDelay * 2^(attempt-1).
func (r *Retrier) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if r.baseDelay <= 0 {
		return 0
	}

	d := r.baseDelay
	for i := 1; i < attempt; i++ {
		if d > (1<<62)/2 {
			break
		}
		d *= 2
	}
	if r.maxDelay > 0 && d > r.maxDelay {
		d = r.maxDelay
	}
	return d
}
