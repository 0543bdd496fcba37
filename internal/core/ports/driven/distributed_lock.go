package driven

import (
	"context"
	"time"
)

// DistributedLock provides named locks shared across instances.
// Ingestion takes one per paper URL so concurrent requests for the same
// paper do not both run the full pipeline.
type DistributedLock interface {
	// Acquire attempts to acquire a named lock with the given TTL.
	// Returns true if the lock was acquired, false if another holder has it.
	Acquire(ctx context.Context, name string, ttl time.Duration) (acquired bool, err error)

	// Release releases a named lock. Safe to call if the lock has expired.
	Release(ctx context.Context, name string) error

	// Ping checks if the lock backend is healthy.
	Ping(ctx context.Context) error
}
