package ruleset

import (
	"testing"

	perr "retention/internal/platform/errors"
)

func TestLoadEmbedded(t *testing.T) {
	t.Parallel()

	rs, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rs.Threshold != 0.7 {
		t.Fatalf("threshold = %v, want 0.7", rs.Threshold)
	}
	if rs.ConfidenceFloor != 0.6 {
		t.Fatalf("confidence_floor = %v, want 0.6", rs.ConfidenceFloor)
	}
	if rs.EvidenceMinLen != 4 {
		t.Fatalf("evidence_min_len = %v, want 4", rs.EvidenceMinLen)
	}
	if len(rs.TextRules) == 0 {
		t.Fatalf("embedded document has no text rules")
	}
	for key, tr := range rs.TextRules {
		if tr.ID == "" {
			t.Fatalf("rule %q has empty id after load", key)
		}
	}
}

func TestParseValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		doc  string
	}{
		{
			"missing threshold",
			"version: x\nweights: {rate_diff: 0.3, tenure: 0.1}\ntext_rules: {a: {weight: 0.5}}\n",
		},
		{
			"threshold above one",
			"threshold: 1.5\nweights: {rate_diff: 0.3, tenure: 0.1}\ntext_rules: {a: {weight: 0.5}}\n",
		},
		{
			"missing weights",
			"threshold: 0.7\ntext_rules: {a: {weight: 0.5}}\n",
		},
		{
			"no text rules",
			"threshold: 0.7\nweights: {rate_diff: 0.3, tenure: 0.1}\n",
		},
		{
			"bad yaml",
			"threshold: [unclosed\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parse([]byte(tc.doc), "test")
			if err == nil {
				t.Fatalf("parse accepted invalid document")
			}
			if perr.CodeOf(err) != perr.ErrorCodeConfig {
				t.Fatalf("code = %v, want config", perr.CodeOf(err))
			}
		})
	}
}

func TestParseDefaults(t *testing.T) {
	t.Parallel()

	doc := "threshold: 0.7\nweights: {rate_diff: 0.3, tenure: 0.1}\ntext_rules: {a: {weight: 0.5}}\n"
	rs, err := parse([]byte(doc), "test")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rs.ConfidenceFloor != 0.6 || rs.EvidenceMinLen != 4 || rs.Version != "dev" {
		t.Fatalf("defaults not applied: %+v", rs)
	}
	if rs.TextRules["a"].ID != "a" {
		t.Fatalf("rule id not backfilled from key")
	}
}

func TestWeightFor(t *testing.T) {
	t.Parallel()

	rs := &Ruleset{TextRules: map[string]TextRule{
		"high_fees": {ID: "high_fees", Weight: 0.5},
		"zero":      {ID: "zero"},
	}}
	if got := rs.WeightFor("high_fees"); got != 0.5 {
		t.Fatalf("WeightFor(high_fees) = %v", got)
	}
	if got := rs.WeightFor("unknown"); got != DefaultRuleWeight {
		t.Fatalf("WeightFor(unknown) = %v, want default", got)
	}
	if got := rs.WeightFor("zero"); got != DefaultRuleWeight {
		t.Fatalf("WeightFor(zero) = %v, want default", got)
	}
}

func TestCatalogSorted(t *testing.T) {
	t.Parallel()

	rs, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cat := rs.Catalog()
	if len(cat) != len(rs.TextRules) {
		t.Fatalf("catalog size %d != %d rules", len(cat), len(rs.TextRules))
	}
	for i := 1; i < len(cat); i++ {
		if cat[i-1].Name >= cat[i].Name {
			t.Fatalf("catalog not sorted at %d: %q >= %q", i, cat[i-1].Name, cat[i].Name)
		}
	}
}

func TestHolderReload(t *testing.T) {
	t.Parallel()

	rs, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	h := NewHolder(rs)
	if h.Current() != rs {
		t.Fatalf("Current did not return the seed document")
	}

	// failing loader keeps the previous document active
	h.loader = func() (*Ruleset, error) { return nil, perr.Configf("boom") }
	if err := h.Reload(); err == nil {
		t.Fatalf("Reload should surface the loader error")
	}
	if h.Current() != rs {
		t.Fatalf("failed reload replaced the active document")
	}

	next := &Ruleset{Version: "next"}
	h.loader = func() (*Ruleset, error) { return next, nil }
	if err := h.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if h.Current() != next {
		t.Fatalf("Reload did not swap the document")
	}
}
