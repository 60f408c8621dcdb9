package dbx

import (
	"context"
	"hash/fnv"
	"time"

	errors "github.com/Laisky/errors/v2"
)

// ErrLockTimeout is returned when an advisory lock could not be taken in time.
var ErrLockTimeout = errors.New("advisory lock timeout")

// lockRetryInterval is the pause between pg_try_advisory_xact_lock attempts.
var lockRetryInterval = 50 * time.Millisecond

// LockKey derives a stable int64 advisory lock key from a scope and an id.
func LockKey(scope string, id int64) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(scope))
	_, _ = h.Write([]byte(":"))
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(id >> (8 * i))
	}
	_, _ = h.Write(b[:])
	return int64(h.Sum64())
}

// TryAdvisoryXactLock takes a transaction-scoped Postgres advisory lock,
// polling until timeout. The lock is released on commit or rollback.
func TryAdvisoryXactLock(ctx context.Context, tx DBTX, key int64, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		var locked bool
		if err := tx.QueryRowContext(ctx, "SELECT pg_try_advisory_xact_lock($1)", key).Scan(&locked); err != nil {
			return errors.Wrap(err, "acquire advisory lock")
		}
		if locked {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrLockTimeout
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}
