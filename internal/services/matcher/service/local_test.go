package service

import (
	"context"
	"strings"
	"testing"

	"retention/internal/core/ruleset"
	"retention/internal/services/matcher/domain"
)

func testCatalog() []ruleset.CatalogEntry {
	return []ruleset.CatalogEntry{
		{
			ID:          "high_fees",
			Name:        "High fees",
			PhraseHints: []string{"high fees", "fees are killing"},
			Negations:   []string{"no longer worried about fees"},
		},
		{
			ID:          "closing_account",
			Name:        "Closing account",
			PhraseHints: []string{"close my account", "closing the account"},
		},
	}
}

func TestLocalMatch(t *testing.T) {
	t.Parallel()

	l := NewLocal(domain.Guard{ConfidenceFloor: 0.6, EvidenceMinLen: 4})

	cases := []struct {
		name    string
		note    string
		wantIDs []string
	}{
		{"single hit", "customer says the HIGH FEES are a problem", []string{"high_fees"}},
		{"two rules", "high fees, might close my account soon", []string{"high_fees", "closing_account"}},
		{"negation vetoes", "they are no longer worried about fees", nil},
		{"no hints", "pleasant call, nothing to report", nil},
		{"empty note", "", nil},
		{"fullwidth folds", "ｈｉｇｈ ｆｅｅｓ mentioned again", []string{"high_fees"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hits, err := l.Match(context.Background(), tc.note, testCatalog())
			if err != nil {
				t.Fatalf("Match: %v", err)
			}
			if len(hits) != len(tc.wantIDs) {
				t.Fatalf("hits = %+v, want ids %v", hits, tc.wantIDs)
			}
			got := map[string]bool{}
			for _, h := range hits {
				got[h.RuleID] = true
				if h.Confidence < 0.6 || h.Confidence > 1 {
					t.Fatalf("confidence %v out of range", h.Confidence)
				}
			}
			for _, id := range tc.wantIDs {
				if !got[id] {
					t.Fatalf("missing hit for %s in %+v", id, hits)
				}
			}
		})
	}
}

func TestLocalEvidenceWindow(t *testing.T) {
	t.Parallel()

	l := NewLocal(domain.Guard{ConfidenceFloor: 0.6, EvidenceMinLen: 4})
	note := strings.Repeat("filler ", 30) + "really HIGH FEES again" + strings.Repeat(" trailing", 30)

	hits, err := l.Match(context.Background(), note, testCatalog())
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %+v", hits)
	}
	ev := hits[0].EvidenceText
	if !strings.Contains(ev, "high fees") {
		t.Fatalf("evidence %q does not contain the hint", ev)
	}
	if len(ev) > 120 {
		t.Fatalf("evidence window too wide: %d bytes", len(ev))
	}
}

func TestHintConfidenceGrowsWithSpecificity(t *testing.T) {
	t.Parallel()

	if one, two := hintConfidence("fees"), hintConfidence("high fees"); two <= one {
		t.Fatalf("two-word hint %v should beat one-word %v", two, one)
	}
	if got := hintConfidence("a b c d e f g h"); got > 0.95 {
		t.Fatalf("confidence cap exceeded: %v", got)
	}
}
