package domain

import (
	"context"
	"time"
)

// LockManager provides distributed mutual exclusion. The confirmation
// workflow acquires a per-investment lock so two concurrent admin actions on
// the same investment cannot both pass the pending-status guard.
type LockManager interface {
	// Acquire obtains the lock for key with the given TTL and returns an
	// unlock function. Returns ErrLockHeld when another holder has it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// RateLimiter bounds request rates per key.
type RateLimiter interface {
	// Allow reports whether one more request for key fits inside the
	// sliding window, counting it if so.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// EventBus publishes platform events (investment confirmed, cancelled,
// created) for dashboard consumers. Publishing is always best-effort from
// the caller's point of view.
type EventBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}
