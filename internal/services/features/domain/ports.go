// Package domain defines the structured feature fetch contract
package domain

import (
	"context"
	"time"

	"retention/internal/core/scoring"
)

// FetchPort resolves structured account features for one customer
// ts anchors derived values such as account age, so a replayed event
// scores the same regardless of when the replay runs
// a customer with no snapshots yields an all-absent feature set, not an error
type FetchPort interface {
	Fetch(ctx context.Context, customerID string, ts time.Time) (scoring.Features, error)
}
