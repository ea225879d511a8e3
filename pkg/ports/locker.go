package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock taken by Locker.Lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes work on one key across mathview replicas.
// Sessions lock SessionLockKey while a command runs; preference saves lock
// ProfileLockKey while the stored blob is reloaded, merged and written back.
type DistributedLocker interface {
	// Lock blocks until key is held or ctx ends. The lock expires after ttl
	// if the holder never calls the returned UnlockFunc.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}

// SessionLockKey is the lock key of one HTTP session.
func SessionLockKey(sessionID string) string {
	return "session:" + sessionID
}

// ProfileLockKey is the lock key of the preference blob of profile.
func ProfileLockKey(profile string) string {
	return "prefs:" + profile
}
