// Package clock provides an injectable time source so schedulers can be
// tested without real sleeps
package clock

import (
	"context"
	"time"
)

// Clock is the seam schedulers depend on instead of the time package
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, returning ctx.Err() in that case
	Sleep(ctx context.Context, d time.Duration) error
}

// Real is the wall clock
type Real struct{}

// Now returns the current wall time
func (Real) Now() time.Time { return time.Now() }

// Sleep waits for d, honoring ctx cancellation
func (Real) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
