package repo

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	perr "retention/internal/platform/errors"
	"retention/internal/services/instances/domain"
)

func newTestMemory() *Memory {
	m := NewMemory()
	var seq int
	m.newID = func() string {
		seq++
		return "inst-" + string(rune('0'+seq))
	}
	m.now = func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }
	return m
}

func snapshot() domain.EventSnapshot {
	return domain.EventSnapshot{
		CustomerID: "C100",
		NoteID:     "N1",
		EventTS:    time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC),
		Text:       "thinking about leaving",
	}
}

func TestMemoryCreateSeedsStarted(t *testing.T) {
	t.Parallel()

	m := newTestMemory()
	id, err := m.Create(context.Background(), snapshot())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	inst, err := m.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if inst.CurrentStep != domain.StepStarted {
		t.Fatalf("current step = %s, want STARTED", inst.CurrentStep)
	}
	if inst.RuntimeStatus != domain.StatusRunning {
		t.Fatalf("status = %s, want Running", inst.RuntimeStatus)
	}
	if len(inst.Steps) != 1 || inst.Steps[0].Seq != 1 || inst.Steps[0].Step != domain.StepStarted {
		t.Fatalf("history = %+v, want single STARTED at seq 1", inst.Steps)
	}
}

func TestMemoryRecordStepOrdering(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		history  []domain.Step
		next     domain.Step
		wantCode perr.ErrorCode
	}{
		{"text match after started", nil, domain.StepTextMatched, 0},
		{"skip straight to evaluated", nil, domain.StepEvaluated, perr.ErrorCodeConflict},
		{"features after text match", []domain.Step{domain.StepTextMatched}, domain.StepFeaturesFetched, 0},
		{"repeat text match", []domain.Step{domain.StepTextMatched}, domain.StepTextMatched, perr.ErrorCodeConflict},
		{
			"completed without card",
			[]domain.Step{domain.StepTextMatched, domain.StepFeaturesFetched, domain.StepEvaluated},
			domain.StepCompleted, 0,
		},
		{
			"completed after card",
			[]domain.Step{
				domain.StepTextMatched, domain.StepFeaturesFetched,
				domain.StepEvaluated, domain.StepCardWritten,
			},
			domain.StepCompleted, 0,
		},
		{"failed early", nil, domain.StepFailed, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestMemory()
			id, _ := m.Create(context.Background(), snapshot())
			for _, s := range tc.history {
				if err := m.RecordStep(context.Background(), id, domain.StepWrite{Step: s, OK: true}); err != nil {
					t.Fatalf("seed %s: %v", s, err)
				}
			}

			err := m.RecordStep(context.Background(), id, domain.StepWrite{Step: tc.next, OK: true})
			if tc.wantCode == 0 {
				if err != nil {
					t.Fatalf("RecordStep(%s): %v", tc.next, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("RecordStep(%s): want conflict, got nil", tc.next)
			}
			if code := perr.CodeOf(err); code != tc.wantCode {
				t.Fatalf("code = %v, want %v", code, tc.wantCode)
			}
		})
	}
}

func TestMemoryTerminalRejectsWrites(t *testing.T) {
	t.Parallel()

	m := newTestMemory()
	id, _ := m.Create(context.Background(), snapshot())
	w := domain.StepWrite{
		Step:        domain.StepFailed,
		ErrorDetail: "matcher unreachable",
		FailingStep: domain.StepTextMatched,
	}
	if err := m.RecordStep(context.Background(), id, w); err != nil {
		t.Fatalf("fail instance: %v", err)
	}

	err := m.RecordStep(context.Background(), id, domain.StepWrite{Step: domain.StepTextMatched, OK: true})
	if perr.CodeOf(err) != perr.ErrorCodeConflict {
		t.Fatalf("write after terminal: got %v, want conflict", err)
	}

	inst, _ := m.Get(context.Background(), id)
	if inst.RuntimeStatus != domain.StatusFailed {
		t.Fatalf("status = %s, want Failed", inst.RuntimeStatus)
	}
	if inst.FailingStep != domain.StepTextMatched {
		t.Fatalf("failing step = %s, want TEXT_MATCHED", inst.FailingStep)
	}
	if !strings.Contains(inst.ErrorDetail, "unreachable") {
		t.Fatalf("error detail = %q", inst.ErrorDetail)
	}
}

func TestMemoryCompletedStoresResult(t *testing.T) {
	t.Parallel()

	m := newTestMemory()
	id, _ := m.Create(context.Background(), snapshot())
	for _, s := range []domain.Step{domain.StepTextMatched, domain.StepFeaturesFetched, domain.StepEvaluated} {
		if err := m.RecordStep(context.Background(), id, domain.StepWrite{Step: s, OK: true}); err != nil {
			t.Fatalf("seed %s: %v", s, err)
		}
	}

	result := json.RawMessage(`{"processed":true,"lead_emitted":false,"score":0.42}`)
	err := m.RecordStep(context.Background(), id, domain.StepWrite{
		Step: domain.StepCompleted, OK: true, Result: result,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	inst, _ := m.Get(context.Background(), id)
	if inst.RuntimeStatus != domain.StatusCompleted {
		t.Fatalf("status = %s, want Completed", inst.RuntimeStatus)
	}
	if string(inst.Result) != string(result) {
		t.Fatalf("result = %s", inst.Result)
	}
	for i, rec := range inst.Steps {
		if rec.Seq != i+1 {
			t.Fatalf("seq at %d = %d, want %d", i, rec.Seq, i+1)
		}
	}
}

func TestMemoryGetUnknown(t *testing.T) {
	t.Parallel()

	m := newTestMemory()
	if _, err := m.Get(context.Background(), "nope"); !perr.IsNotFound(err) {
		t.Fatalf("Get unknown: got %v, want not found", err)
	}
	if err := m.RecordStep(context.Background(), "nope", domain.StepWrite{Step: domain.StepFailed}); !perr.IsNotFound(err) {
		t.Fatalf("RecordStep unknown: got %v, want not found", err)
	}
}

func TestMemoryConcurrentInstances(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	const n = 16

	ids := make([]string, n)
	for i := range ids {
		id, err := m.Create(context.Background(), snapshot())
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids[i] = id
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			steps := []domain.Step{
				domain.StepTextMatched, domain.StepFeaturesFetched,
				domain.StepEvaluated, domain.StepCompleted,
			}
			for _, s := range steps {
				if err := m.RecordStep(context.Background(), id, domain.StepWrite{Step: s, OK: true}); err != nil {
					t.Errorf("instance %s step %s: %v", id, s, err)
					return
				}
			}
		}(id)
	}
	wg.Wait()

	for _, id := range ids {
		inst, err := m.Get(context.Background(), id)
		if err != nil {
			t.Fatalf("Get %s: %v", id, err)
		}
		if inst.RuntimeStatus != domain.StatusCompleted {
			t.Fatalf("instance %s status = %s", id, inst.RuntimeStatus)
		}
		if len(inst.Steps) != 5 {
			t.Fatalf("instance %s history length = %d, want 5", id, len(inst.Steps))
		}
	}
}
