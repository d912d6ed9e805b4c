package counterstore

import (
	"context"
	"time"
)

// Counter is the per-chat accounting record. The store exclusively owns
// these; callers get value copies and never mutate one outside Apply.
type Counter struct {
	Count        int        `json:"count"`
	UpdatedAt    time.Time  `json:"updated_at"`
	BlockedUntil *time.Time `json:"blocked_until,omitempty"`
}

func (c Counter) Blocked(now time.Time) bool {
	return c.BlockedUntil != nil && now.Before(*c.BlockedUntil)
}

// CounterStore is a durable map of chat identifier to Counter. Counters are
// created lazily: Get on an unknown chat returns a zero Counter, and Apply
// on an unknown chat runs the mutation against a zero Counter.
//
// Apply is an atomic read-modify-write; no two Apply calls for the same chat
// interleave. Mutations are persisted before Apply returns.
type CounterStore interface {
	Get(ctx context.Context, chatID string) (Counter, error)
	Apply(ctx context.Context, chatID string, fn func(*Counter)) (Counter, error)
	ResetAll(ctx context.Context) error
}
