package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"

	"diskmeta/internal/util"
)

// acquireLock takes the advisory lock at path, polling until timeout.
// Readers share the lock; an exclusive holder runs alone.
func acquireLock(ctx context.Context, path string, timeout time.Duration, exclusive bool) (*flock.Flock, error) {
	lock := flock.New(path)
	try := lock.TryRLock
	if exclusive {
		try = lock.TryLock
	}

	var lockErr error
	err := util.PollUntil(ctx, util.PollConfig{Timeout: timeout, Interval: 20 * time.Millisecond}, func() bool {
		var locked bool
		locked, lockErr = try()
		return locked || lockErr != nil
	})
	if lockErr != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", path, lockErr)
	}
	if err != nil {
		return nil, fmt.Errorf("timed out waiting for lock %s: %w", path, err)
	}
	return lock, nil
}
