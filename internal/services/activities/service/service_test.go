package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"retention/internal/core/ruleset"
	"retention/internal/core/scoring"
	perr "retention/internal/platform/errors"
	"retention/internal/services/activities/domain"
	instdomain "retention/internal/services/instances/domain"
	carddomain "retention/internal/services/leadcards/domain"
)

type fakeMatcher struct {
	gotNote string
	hits    []scoring.RuleHit
	err     error
}

func (f *fakeMatcher) Match(
	_ context.Context,
	note string,
	_ []ruleset.CatalogEntry,
) ([]scoring.RuleHit, error) {
	f.gotNote = note
	return f.hits, f.err
}

type fakeFeatures struct {
	f     scoring.Features
	gotTS time.Time
	err   error
}

func (f *fakeFeatures) Fetch(_ context.Context, customerID string, ts time.Time) (scoring.Features, error) {
	f.gotTS = ts
	out := f.f
	out.CustomerID = customerID
	return out, f.err
}

type fakeCards struct {
	got carddomain.Card
	err error
}

func (f *fakeCards) Write(_ context.Context, c carddomain.Card) (string, error) {
	f.got = c
	return "card-1", f.err
}

func testHolder(t *testing.T) *ruleset.Holder {
	t.Helper()
	rs, err := ruleset.Load()
	if err != nil {
		t.Fatalf("load ruleset: %v", err)
	}
	return ruleset.NewHolder(rs)
}

func testInvoker(t *testing.T, p Ports) *Service {
	t.Helper()
	if p.Rules == nil {
		p.Rules = testHolder(t)
	}
	s, err := NewInvoker(p)
	if err != nil {
		t.Fatalf("NewInvoker: %v", err)
	}
	return s
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestInvokeUnknownCapability(t *testing.T) {
	t.Parallel()

	s := testInvoker(t, Ports{})
	_, _, err := s.Invoke(context.Background(), "launch_rockets", nil)
	if perr.CodeOf(err) != perr.ErrorCodeConfig {
		t.Fatalf("err = %v, want config error", err)
	}
}

func TestTextMatchScrubsBeforeMatching(t *testing.T) {
	t.Parallel()

	fm := &fakeMatcher{hits: []scoring.RuleHit{
		{RuleID: "high_fees", Confidence: 0.9, EvidenceText: "high fees again"},
	}}
	s := testInvoker(t, Ports{Match: fm})

	in := mustJSON(t, domain.TextMatchInput{
		Text: "reach me at jane.doe@example.com about the high fees",
	})
	raw, res, err := s.Invoke(context.Background(), domain.NameTextMatch, in)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if res.Step != instdomain.StepTextMatched || !res.OK {
		t.Fatalf("result = %+v", res)
	}
	if strings.Contains(fm.gotNote, "example.com") {
		t.Fatalf("matcher saw unscrubbed note: %q", fm.gotNote)
	}
	if !strings.Contains(fm.gotNote, "[email]") {
		t.Fatalf("scrub marker missing: %q", fm.gotNote)
	}

	var out domain.TextMatchOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(out.Hits) != 1 || out.Hits[0].RuleID != "high_fees" {
		t.Fatalf("hits = %+v", out.Hits)
	}
}

func TestFetchFeaturesPassesCustomer(t *testing.T) {
	t.Parallel()

	rate := 4.5
	ff := &fakeFeatures{f: scoring.Features{CurrentRate: &rate}}
	s := testInvoker(t, Ports{Features: ff})

	eventTS := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	in := mustJSON(t, domain.FetchFeaturesInput{CustomerID: "C9", TS: eventTS})
	raw, res, err := s.Invoke(context.Background(), domain.NameFetchFeatures, in)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if res.Step != instdomain.StepFeaturesFetched {
		t.Fatalf("step = %s", res.Step)
	}
	if !ff.gotTS.Equal(eventTS) {
		t.Fatalf("fetch ts = %v, want %v", ff.gotTS, eventTS)
	}

	var out domain.FetchFeaturesOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Features.CustomerID != "C9" || out.Features.CurrentRate == nil {
		t.Fatalf("features = %+v", out.Features)
	}
}

const boundaryRules = `
version: "test"
threshold: 0.5
confidence_floor: 0.1
evidence_min_len: 4
weights:
  rate_diff: 0.3
  tenure: 0.1
text_rules:
  high_fees:
    weight: 0.5
    description: fee complaints
    phrase_hints: ["high fees"]
`

func TestEvaluateThresholdBoundary(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(boundaryRules), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}
	h, err := ruleset.NewHolderFromFile(path)
	if err != nil {
		t.Fatalf("holder: %v", err)
	}
	s := testInvoker(t, Ports{Rules: h})

	cases := []struct {
		name string
		conf float64
		emit bool
	}{
		// weight 0.5 puts confidence 1.0 exactly on the 0.5 threshold
		{"at threshold", 1.0, true},
		{"below threshold", 0.99, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := mustJSON(t, domain.EvaluateInput{
				CustomerID: "C1",
				Hits: []scoring.RuleHit{
					{RuleID: "high_fees", Confidence: tc.conf, EvidenceText: "fees too high"},
				},
			})
			raw, _, err := s.Invoke(context.Background(), domain.NameEvaluate, in)
			if err != nil {
				t.Fatalf("Invoke: %v", err)
			}
			var out domain.EvaluateOutput
			if err := json.Unmarshal(raw, &out); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if out.ShouldEmit != tc.emit {
				t.Fatalf("should_emit = %v at score %v threshold %v", out.ShouldEmit, out.Score, out.Threshold)
			}
			if out.RulesetVersion != "test" {
				t.Fatalf("ruleset version = %q", out.RulesetVersion)
			}
		})
	}
}

func TestPersistCardStampsVersions(t *testing.T) {
	t.Parallel()

	fc := &fakeCards{}
	s := testInvoker(t, Ports{Cards: fc, AgentVersion: "1.4.0"})

	in := mustJSON(t, domain.PersistCardInput{
		InstanceID: "inst-1",
		CustomerID: "C1",
		NoteID:     "N1",
		Eval: domain.EvaluateOutput{
			Score:          0.83,
			Explanation:    "rid evidence: “high fees”",
			RulesetVersion: "2026-08-15",
			Hits:           []scoring.RuleHit{{RuleID: "high_fees", Confidence: 0.9, EvidenceText: "high fees"}},
		},
	})
	raw, res, err := s.Invoke(context.Background(), domain.NamePersistCard, in)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if res.Step != instdomain.StepCardWritten {
		t.Fatalf("step = %s", res.Step)
	}

	var out domain.PersistCardOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.CardID != "card-1" {
		t.Fatalf("card id = %s", out.CardID)
	}
	if fc.got.AgentVersion != "1.4.0" || fc.got.RulesetVersion != "2026-08-15" {
		t.Fatalf("card = %+v", fc.got)
	}
	if fc.got.Score != 0.83 || fc.got.InstanceID != "inst-1" {
		t.Fatalf("card = %+v", fc.got)
	}
}

func TestInvokeRecordsFailure(t *testing.T) {
	t.Parallel()

	fm := &fakeMatcher{err: perr.Unavailablef("matcher down")}
	s := testInvoker(t, Ports{Match: fm})

	in := mustJSON(t, domain.TextMatchInput{Text: "note"})
	_, res, err := s.Invoke(context.Background(), domain.NameTextMatch, in)
	if perr.CodeOf(err) != perr.ErrorCodeActivity {
		t.Fatalf("err = %v, want activity error", err)
	}
	if res.OK || res.Step != instdomain.StepTextMatched {
		t.Fatalf("result = %+v", res)
	}
	if !strings.Contains(res.Err, "matcher down") {
		t.Fatalf("result err = %q", res.Err)
	}
}
