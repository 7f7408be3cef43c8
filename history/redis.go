package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/courier/delivery"
	"github.com/xraph/courier/event"
	"github.com/xraph/courier/id"
)

// DefaultRedisKey is the list key used when none is configured.
const DefaultRedisKey = "courier:history"

// compile-time interface check.
var _ Store = (*RedisStore)(nil)

// RedisStore keeps records in a single capped Redis list. New records are
// pushed on the right; the list is trimmed to the newest MaxEntries in the
// same transaction.
type RedisStore struct {
	rdb        goredis.UniversalClient
	key        string
	maxEntries int
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKey sets the list key.
func WithKey(key string) RedisOption {
	return func(s *RedisStore) {
		if key != "" {
			s.key = key
		}
	}
}

// WithMaxEntries sets the retention limit.
func WithMaxEntries(n int) RedisOption {
	return func(s *RedisStore) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

// NewRedisStore creates a store on top of an existing client. The caller
// keeps ownership of rdb unless Close is called.
func NewRedisStore(rdb goredis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		rdb:        rdb,
		key:        DefaultRedisKey,
		maxEntries: DefaultMaxEntries,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the Redis list key.
func (s *RedisStore) Key() string { return s.key }

// Ping checks Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// recordModel is the JSON representation stored in Redis.
type recordModel struct {
	ID             string    `json:"id"`
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	SubscriptionID string    `json:"subscription_id"`
	URL            string    `json:"url"`
	StatusCode     int       `json:"status_code"`
	Success        bool      `json:"success"`
	Error          string    `json:"error,omitempty"`
	Attempts       int       `json:"attempts"`
	LatencyMs      int       `json:"latency_ms"`
	CompletedAt    time.Time `json:"completed_at"`
}

func toRecordModel(r *delivery.Record) *recordModel {
	return &recordModel{
		ID:             r.ID.String(),
		EventID:        r.EventID,
		EventType:      string(r.EventType),
		SubscriptionID: r.SubscriptionID.String(),
		URL:            r.URL,
		StatusCode:     r.StatusCode,
		Success:        r.Success,
		Error:          r.Error,
		Attempts:       r.Attempts,
		LatencyMs:      r.LatencyMs,
		CompletedAt:    r.CompletedAt,
	}
}

func fromRecordModel(m *recordModel) (*delivery.Record, error) {
	delID, err := id.ParseDeliveryID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("parse delivery ID %q: %w", m.ID, err)
	}
	subID, err := id.ParseSubscriptionID(m.SubscriptionID)
	if err != nil {
		return nil, fmt.Errorf("parse subscription ID %q: %w", m.SubscriptionID, err)
	}
	return &delivery.Record{
		ID:             delID,
		EventID:        m.EventID,
		EventType:      event.Type(m.EventType),
		SubscriptionID: subID,
		URL:            m.URL,
		StatusCode:     m.StatusCode,
		Success:        m.Success,
		Error:          m.Error,
		Attempts:       m.Attempts,
		LatencyMs:      m.LatencyMs,
		CompletedAt:    m.CompletedAt,
	}, nil
}

// Append pushes rec and trims the list atomically.
func (s *RedisStore) Append(ctx context.Context, rec *delivery.Record) error {
	raw, err := json.Marshal(toRecordModel(rec))
	if err != nil {
		return fmt.Errorf("courier: marshal record: %w", err)
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.RPush(ctx, s.key, raw)
		pipe.LTrim(ctx, s.key, int64(-s.maxEntries), -1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("courier: append record: %w", err)
	}
	return nil
}

// Query reads the whole list and filters it client-side.
func (s *RedisStore) Query(ctx context.Context, f Filter) ([]*delivery.Record, error) {
	raws, err := s.rdb.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("courier: query records: %w", err)
	}

	recs := make([]*delivery.Record, 0, len(raws))
	for _, raw := range raws {
		var m recordModel
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return nil, fmt.Errorf("courier: decode record: %w", err)
		}
		r, err := fromRecordModel(&m)
		if err != nil {
			return nil, fmt.Errorf("courier: decode record: %w", err)
		}
		recs = append(recs, r)
	}
	return f.apply(recs), nil
}

// Clear deletes the list.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("courier: clear records: %w", err)
	}
	return nil
}

// Len returns the list length.
func (s *RedisStore) Len(ctx context.Context) (int, error) {
	n, err := s.rdb.LLen(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("courier: count records: %w", err)
	}
	return int(n), nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
