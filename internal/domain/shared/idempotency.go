package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which events a consumer already processed.
// Outbox delivery is at-least-once, so consumers check here first.
type IdempotencyStore interface {
	// MarkProcessed atomically marks the event as processed.
	// Returns true if the caller won the mark, false if it was already processed.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	IsProcessed(ctx context.Context, eventID string) (bool, error)

	// Release forgets the mark so a failed event can be processed again
	Release(ctx context.Context, eventID string) error

	Close() error
}

// IdempotencyConfig configures idempotent event handling
type IdempotencyConfig struct {
	TTL     time.Duration
	Enabled bool
}

// DefaultIdempotencyConfig returns a 24h TTL, enabled
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
