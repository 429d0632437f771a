package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which event or request IDs have already been
// handled. Both the HTTP replay guard and the event bus deduplicate
// through it; the Redis backend makes the memory survive restarts.
type IdempotencyStore interface {
	// MarkProcessed records an ID with a TTL. It reports true when the ID
	// is new and false when it was already recorded, atomically, so two
	// concurrent deliveries of the same event resolve to one winner.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed checks an ID without recording it
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	Close() error
}

// IdempotencyConfig controls deduplication behavior
type IdempotencyConfig struct {
	// TTL bounds how long a processed ID is remembered. After it lapses
	// the same ID would be handled again.
	TTL time.Duration

	Enabled bool
}

// DefaultIdempotencyConfig remembers IDs for a day
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
