package courier

import (
	"fmt"
	"time"
)

// Config holds the configuration for a Relay instance.
type Config struct {
	// Concurrency caps the number of deliveries running at once for a single
	// dispatch. Zero means one goroutine per matching subscription.
	Concurrency int `yaml:"concurrency"`

	// RequestTimeout is the HTTP timeout per delivery attempt.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxRetries is the maximum number of attempts per delivery, counting the
	// first one.
	MaxRetries int `yaml:"max_retries"`

	// RetryDelay is the base backoff. Attempt n waits RetryDelay * 2^(n-1)
	// before attempt n+1.
	RetryDelay time.Duration `yaml:"retry_delay"`

	// MaxRetryDelay caps a single backoff wait. Zero disables the cap.
	MaxRetryDelay time.Duration `yaml:"max_retry_delay"`

	// EnableHistory controls whether completed deliveries are recorded.
	EnableHistory bool `yaml:"enable_history"`

	// MaxHistoryEntries bounds the default in-memory history.
	MaxHistoryEntries int `yaml:"max_history_entries"`

	// ValidatePayloads drops events whose data does not satisfy the catalog
	// schema for their type.
	ValidatePayloads bool `yaml:"validate_payloads"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Concurrency:       0,
		RequestTimeout:    10 * time.Second,
		MaxRetries:        3,
		RetryDelay:        1 * time.Second,
		EnableHistory:     true,
		MaxHistoryEntries: 1000,
	}
}

// Validate reports the first invalid field, if any.
func (c Config) Validate() error {
	switch {
	case c.Concurrency < 0:
		return fmt.Errorf("%w: concurrency must not be negative", ErrInvalidConfig)
	case c.RequestTimeout <= 0:
		return fmt.Errorf("%w: request_timeout must be positive", ErrInvalidConfig)
	case c.MaxRetries < 1:
		return fmt.Errorf("%w: max_retries must be at least 1", ErrInvalidConfig)
	case c.RetryDelay < 0:
		return fmt.Errorf("%w: retry_delay must not be negative", ErrInvalidConfig)
	case c.MaxRetryDelay < 0:
		return fmt.Errorf("%w: max_retry_delay must not be negative", ErrInvalidConfig)
	case c.MaxHistoryEntries < 1:
		return fmt.Errorf("%w: max_history_entries must be at least 1", ErrInvalidConfig)
	}
	return nil
}
