package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock taken by a DistributedLocker.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes workspace updates across replicas, so two
// requests of one session never interleave a read-modify-write of its draft.
type DistributedLocker interface {
	// Lock blocks until key (a session ID) is held or ctx is done. The lock
	// lapses after ttl if the holder never calls the returned UnlockFunc.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
