// Package domain defines the text matcher contract
package domain

import (
	"context"

	"retention/internal/core/ruleset"
	"retention/internal/core/scoring"
)

// MatchPort turns a scrubbed note into rule hits
// implementations must only return hits for catalog rule ids
type MatchPort interface {
	Match(ctx context.Context, note string, catalog []ruleset.CatalogEntry) ([]scoring.RuleHit, error)
}
