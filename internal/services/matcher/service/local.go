// Package service provides the local and remote text matcher implementations
package service

import (
	"context"
	"strings"

	"retention/internal/core/normalize"
	"retention/internal/core/ruleset"
	"retention/internal/core/scoring"
	"retention/internal/services/matcher/domain"
)

// Local matches phrase hints against normalized note text in process
// it exists so the pipeline runs without the remote matcher endpoint
type Local struct {
	norm  *normalize.Normalizer
	guard domain.Guard
}

// NewLocal constructs the offline matcher
func NewLocal(guard domain.Guard) *Local {
	return &Local{norm: normalize.New(), guard: guard}
}

// Match implements domain.MatchPort
// a hint hit is vetoed when any of the rule's negation phrases also appears
func (l *Local) Match(_ context.Context, note string, catalog []ruleset.CatalogEntry) ([]scoring.RuleHit, error) {
	folded := l.norm.Normalize(note)
	if folded == "" {
		return nil, nil
	}

	var hits []scoring.RuleHit
	for _, entry := range catalog {
		hint, ok := l.bestHint(folded, entry)
		if !ok {
			continue
		}
		hits = append(hits, scoring.RuleHit{
			RuleID:       entry.ID,
			Confidence:   hintConfidence(hint),
			EvidenceText: evidence(note, l.norm, hint),
		})
	}
	return l.guard.Apply(hits, catalog), nil
}

// bestHint returns the longest matching hint, negations veto the whole rule
func (l *Local) bestHint(folded string, entry ruleset.CatalogEntry) (string, bool) {
	for _, neg := range entry.Negations {
		if n := l.norm.Normalize(neg); n != "" && strings.Contains(folded, n) {
			return "", false
		}
	}

	var best string
	for _, hint := range entry.PhraseHints {
		h := l.norm.Normalize(hint)
		if h == "" || !strings.Contains(folded, h) {
			continue
		}
		if len(h) > len(best) {
			best = h
		}
	}
	return best, best != ""
}

// hintConfidence grows with hint specificity, longer phrases are less ambiguous
func hintConfidence(hint string) float64 {
	words := len(strings.Fields(hint))
	conf := 0.6 + 0.1*float64(words-1)
	if conf > 0.95 {
		conf = 0.95
	}
	return conf
}

// evidence returns a short window of the original note around the matched hint
// the window is cut on the folded text so offsets stay aligned
func evidence(note string, n *normalize.Normalizer, hint string) string {
	folded := n.Normalize(note)
	idx := strings.Index(folded, hint)
	if idx < 0 {
		return hint
	}

	const pad = 40
	start := idx - pad
	if start < 0 {
		start = 0
	}
	end := idx + len(hint) + pad
	if end > len(folded) {
		end = len(folded)
	}
	return strings.TrimSpace(strings.ToValidUTF8(folded[start:end], ""))
}
