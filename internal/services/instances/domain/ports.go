package domain

import "context"

// StorePort is the durable record of orchestration instances
type StorePort interface {
	// Create registers a new instance with STARTED already in its history
	Create(ctx context.Context, ev EventSnapshot) (string, error)

	// RecordStep appends one step, enforcing the expected predecessor
	// recording onto a terminal instance or out of order is a conflict
	RecordStep(ctx context.Context, id string, w StepWrite) error

	// Get returns a consistent snapshot, NotFound for unknown ids
	Get(ctx context.Context, id string) (Instance, error)
}
