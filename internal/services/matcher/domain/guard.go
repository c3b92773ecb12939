package domain

import (
	"strings"

	"retention/internal/core/ruleset"
	"retention/internal/core/scoring"
)

// Guard is the post-filter applied to every matcher's output, local or remote
// hits outside the catalog, below the confidence floor, with out-of-range
// confidence, or with evidence shorter than the minimum are dropped
type Guard struct {
	ConfidenceFloor float64
	EvidenceMinLen  int
}

// Apply filters hits against the catalog allowlist and the guard bounds
func (g Guard) Apply(hits []scoring.RuleHit, catalog []ruleset.CatalogEntry) []scoring.RuleHit {
	allowed := make(map[string]bool, len(catalog))
	for _, e := range catalog {
		allowed[e.ID] = true
	}

	out := make([]scoring.RuleHit, 0, len(hits))
	for _, h := range hits {
		if !allowed[h.RuleID] {
			continue
		}
		if h.Confidence < g.ConfidenceFloor || h.Confidence > 1 {
			continue
		}
		if len(strings.TrimSpace(h.EvidenceText)) < g.EvidenceMinLen {
			continue
		}
		out = append(out, h)
	}
	return out
}
