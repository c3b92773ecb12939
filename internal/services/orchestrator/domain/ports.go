// Package domain defines the orchestration engine contract
package domain

import (
	"context"

	instdomain "retention/internal/services/instances/domain"
)

// EnginePort runs the evaluation state machine for single events
type EnginePort interface {
	// Start creates an instance and drives it to a terminal state
	Start(ctx context.Context, ev instdomain.EventSnapshot) (string, error)

	// StartAsync creates an instance and drives it in the background
	// the returned id is valid for status polling immediately
	StartAsync(ctx context.Context, ev instdomain.EventSnapshot) (string, error)

	// Resume drives a non-terminal instance from its recorded history
	// terminal instances are left untouched
	Resume(ctx context.Context, id string) error
}
