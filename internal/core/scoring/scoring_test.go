package scoring

import (
	"math"
	"strings"
	"testing"

	"retention/internal/core/ruleset"
)

func testRules(t *testing.T) *ruleset.Ruleset {
	t.Helper()
	return &ruleset.Ruleset{
		Version:         "test",
		Threshold:       0.7,
		ConfidenceFloor: 0.6,
		EvidenceMinLen:  4,
		Weights:         ruleset.Weights{RateDiff: 0.3, Tenure: 0.1},
		TextRules: map[string]ruleset.TextRule{
			"high_fees": {ID: "high_fees", Weight: 0.5},
		},
	}
}

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

func TestScoreWorkedExample(t *testing.T) {
	t.Parallel()

	rs := testRules(t)
	hits := []RuleHit{{RuleID: "high_fees", Confidence: 0.9, EvidenceText: "considering closing due to high fees"}}
	f := Features{
		CustomerID:     "C1",
		CurrentRate:    fp(5.7),
		PrevRate:       fp(4.5),
		RateDiff:       fp(1.2),
		AccountAgeDays: ip(60),
	}

	out := Score(rs, hits, f)

	// structured = min(1.2/1.5,1)*0.3 + min(2/6,1)*0.1, text = 0.9*0.5
	want := 0.8*0.3 + (2.0/6.0)*0.1 + 0.45
	if math.Abs(out.Score-want) > 1e-9 {
		t.Fatalf("score = %v, want %v", out.Score, want)
	}
	if len(out.Hits) != 1 {
		t.Fatalf("kept hits = %d, want 1", len(out.Hits))
	}
	if !strings.Contains(out.Explanation, "Rate change") {
		t.Fatalf("explanation missing rate change: %q", out.Explanation)
	}
	if !strings.Contains(out.Explanation, "high_fees evidence") {
		t.Fatalf("explanation missing evidence: %q", out.Explanation)
	}
	if !strings.Contains(out.Explanation, "Tenure ~2.0 months") {
		t.Fatalf("explanation missing tenure: %q", out.Explanation)
	}
}

func TestScoreClamped(t *testing.T) {
	t.Parallel()

	rs := testRules(t)
	hits := []RuleHit{
		{RuleID: "high_fees", Confidence: 1.0, EvidenceText: "fees"},
		{RuleID: "unknown_a", Confidence: 1.0, EvidenceText: "more"},
		{RuleID: "unknown_b", Confidence: 1.0, EvidenceText: "again"},
	}
	f := Features{RateDiff: fp(99), AccountAgeDays: ip(100000)}

	out := Score(rs, hits, f)
	if out.Score != 1 {
		t.Fatalf("score = %v, want clamp to 1", out.Score)
	}
}

func TestScoreFloorFiltersHits(t *testing.T) {
	t.Parallel()

	rs := testRules(t)
	hits := []RuleHit{
		{RuleID: "high_fees", Confidence: 0.59, EvidenceText: "below floor"},
		{RuleID: "high_fees", Confidence: 0.6, EvidenceText: "at floor"},
	}

	out := Score(rs, hits, Features{})
	if len(out.Hits) != 1 || out.Hits[0].Confidence != 0.6 {
		t.Fatalf("floor filter kept %v", out.Hits)
	}
	if math.Abs(out.Score-0.6*0.5) > 1e-9 {
		t.Fatalf("score = %v, want %v", out.Score, 0.6*0.5)
	}
}

func TestScoreUnknownRuleDefaultWeight(t *testing.T) {
	t.Parallel()

	rs := testRules(t)
	out := Score(rs, []RuleHit{{RuleID: "mystery", Confidence: 0.8}}, Features{})
	want := 0.8 * ruleset.DefaultRuleWeight
	if math.Abs(out.Score-want) > 1e-9 {
		t.Fatalf("score = %v, want %v", out.Score, want)
	}
}

func TestScoreNegativeRateDiffUsesMagnitude(t *testing.T) {
	t.Parallel()

	rs := testRules(t)
	out := Score(rs, nil, Features{RateDiff: fp(-1.2), PrevRate: fp(5.7), CurrentRate: fp(4.5)})
	want := 0.8 * 0.3
	if math.Abs(out.Score-want) > 1e-9 {
		t.Fatalf("score = %v, want %v", out.Score, want)
	}
}

func TestScoreAbsentFeatures(t *testing.T) {
	t.Parallel()

	rs := testRules(t)
	out := Score(rs, nil, Features{CustomerID: "C2"})
	if out.Score != 0 {
		t.Fatalf("score = %v, want 0 for absent features and no hits", out.Score)
	}
	if out.Explanation != "" {
		t.Fatalf("explanation = %q, want empty", out.Explanation)
	}
}

func TestTruncateRuneBoundary(t *testing.T) {
	t.Parallel()

	s := strings.Repeat("é", 600) // 2 bytes each
	got := truncate(s, maxExplanation)
	if len(got) > maxExplanation {
		t.Fatalf("truncate left %d bytes", len(got))
	}
	if !strings.HasSuffix(got, "é") {
		t.Fatalf("truncate split a rune")
	}
	if len(got) != 1000 {
		t.Fatalf("len = %d, want 1000", len(got))
	}
}
