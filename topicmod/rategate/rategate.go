// Per-chat threshold accounting for watched-keyword messages.
//
// Each chat is either ACTIVE (counting) or BLOCKED (suppressing). Reaching
// the threshold blocks the chat for the cooldown duration, and the message
// that tipped the threshold is itself suppressed. An optional accounting
// window decays un-blocked counts back to zero after a quiet period.
package rategate

import (
	"context"
	"time"

	"github.com/horizonte-social/charla/topicmod/counterstore"
)

type Verdict int

const (
	VerdictAllow = Verdict(iota)
	VerdictDelete
)

func (v Verdict) String() string {
	switch v {
	case VerdictAllow:
		return "allow"
	case VerdictDelete:
		return "delete"
	default:
		return "unknown"
	}
}

type State string

const (
	StateActive  = State("active")
	StateBlocked = State("blocked")
)

// Gate evaluates watched messages against per-chat counters. All counter
// reads and writes go through the CounterStore; the gate itself is
// stateless and safe for concurrent use.
type Gate struct {
	Threshold int
	Window    time.Duration // 0 disables idle decay
	Cooldown  time.Duration
	Counters  counterstore.CounterStore
}

// Status is a read-only snapshot for the status command.
type Status struct {
	State          State
	Count          int
	Threshold      int
	BlockRemaining time.Duration
}

// HitWatched records one watched message for the chat and decides its fate.
// The threshold-crossing message is deleted, not allowed through; while
// blocked, messages are deleted without counting; an expired block or a
// stale accounting window resets the count before the message is counted.
func (g *Gate) HitWatched(ctx context.Context, chatID string, now time.Time) (Verdict, counterstore.Counter, error) {
	verdict := VerdictAllow
	c, err := g.Counters.Apply(ctx, chatID, func(c *counterstore.Counter) {
		if c.Blocked(now) {
			verdict = VerdictDelete
			return
		}
		if c.BlockedUntil != nil {
			// cooldown expired: back to ACTIVE, count from scratch
			c.BlockedUntil = nil
			c.Count = 0
		} else if g.stale(c, now) {
			c.Count = 0
		}
		c.Count++
		c.UpdatedAt = now
		if c.Count >= g.Threshold {
			until := now.Add(g.Cooldown)
			c.BlockedUntil = &until
			verdict = VerdictDelete
		}
	})
	if err != nil {
		return VerdictAllow, counterstore.Counter{}, err
	}
	return verdict, c, nil
}

// Reset unconditionally zeroes the chat's count and lifts any block.
func (g *Gate) Reset(ctx context.Context, chatID string, now time.Time) error {
	_, err := g.Counters.Apply(ctx, chatID, func(c *counterstore.Counter) {
		c.Count = 0
		c.BlockedUntil = nil
		c.UpdatedAt = now
	})
	return err
}

// Inspect reports the chat's state. Staleness is applied for reporting
// accuracy but a pure inspect never persists a mutation.
func (g *Gate) Inspect(ctx context.Context, chatID string, now time.Time) (Status, error) {
	c, err := g.Counters.Get(ctx, chatID)
	if err != nil {
		return Status{}, err
	}
	st := Status{
		State:     StateActive,
		Count:     c.Count,
		Threshold: g.Threshold,
	}
	if c.Blocked(now) {
		st.State = StateBlocked
		st.BlockRemaining = c.BlockedUntil.Sub(now)
		return st, nil
	}
	if c.BlockedUntil != nil || g.stale(&c, now) {
		st.Count = 0
	}
	return st, nil
}

func (g *Gate) stale(c *counterstore.Counter, now time.Time) bool {
	return g.Window > 0 && !c.UpdatedAt.IsZero() && now.Sub(c.UpdatedAt) > g.Window
}
