package ports

import (
	"context"
	"time"
)

// KeyLocker serializes access to a single entity key (a session id or a
// user id). All mutations of a session's turn log and of a user's summary
// run under the corresponding key lock, so no two concurrent merges can
// both read the pre-update value and silently drop one side's write.
type KeyLocker interface {
	// TryLock acquires the key or fails after a bounded wait with
	// domain.ErrLockUnavailable. The returned token must be passed back
	// to Unlock.
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}
