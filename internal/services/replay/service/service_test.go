package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"retention/internal/platform/clock"
	perr "retention/internal/platform/errors"
	evdomain "retention/internal/services/events/domain"
	instdomain "retention/internal/services/instances/domain"
	"retention/internal/services/replay/domain"
)

// sliceArchive serves a fixed event list with real keyset pagination
type sliceArchive struct {
	events []evdomain.Event
}

func (a *sliceArchive) Append(context.Context, []evdomain.Event) error { return nil }

func (a *sliceArchive) FetchWindow(
	_ context.Context,
	from, to time.Time,
	after evdomain.Cursor,
	limit int,
) ([]evdomain.Event, evdomain.Cursor, error) {
	var out []evdomain.Event
	for _, ev := range a.events {
		if ev.CreatedTS.Before(from) || !ev.CreatedTS.Before(to) {
			continue
		}
		if !after.IsZero() {
			if ev.CreatedTS.Before(after.CreatedTS) {
				continue
			}
			if ev.CreatedTS.Equal(after.CreatedTS) && ev.NoteID <= after.NoteID {
				continue
			}
		}
		out = append(out, ev)
		if len(out) == limit {
			break
		}
	}
	var next evdomain.Cursor
	if len(out) > 0 {
		last := out[len(out)-1]
		next = evdomain.Cursor{CreatedTS: last.CreatedTS, NoteID: last.NoteID}
	}
	return out, next, nil
}

// countingEngine records start order
type countingEngine struct {
	mu    sync.Mutex
	notes []string
}

func (e *countingEngine) Start(_ context.Context, ev instdomain.EventSnapshot) (string, error) {
	e.mu.Lock()
	e.notes = append(e.notes, ev.NoteID)
	e.mu.Unlock()
	return "inst-" + ev.NoteID, nil
}

func (e *countingEngine) StartAsync(ctx context.Context, ev instdomain.EventSnapshot) (string, error) {
	return e.Start(ctx, ev)
}

func (e *countingEngine) Resume(context.Context, string) error { return nil }

func (e *countingEngine) started() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.notes))
	copy(out, e.notes)
	return out
}

var base = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func windowEvents() []evdomain.Event {
	return []evdomain.Event{
		{CustomerID: "C1", NoteID: "n1", CreatedTS: base, Text: "a"},
		{CustomerID: "C2", NoteID: "n2", CreatedTS: base.Add(10 * time.Second), Text: "b"},
		{CustomerID: "C3", NoteID: "n3", CreatedTS: base.Add(30 * time.Second), Text: "c"},
	}
}

func testJob() domain.Job {
	return domain.Job{
		From:        base,
		To:          base.Add(time.Minute),
		Factor:      10,
		Batch:       1000,
		MaxInflight: 4,
	}
}

func TestRunCompressesGaps(t *testing.T) {
	t.Parallel()

	fc := clock.NewFake(base)
	eng := &countingEngine{}
	s := New(&sliceArchive{events: windowEvents()}, eng, fc, Config{})

	if err := s.RunOnce(context.Background(), testJob()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	want := []time.Duration{time.Second, 2 * time.Second}
	got := fc.Sleeps()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("sleeps = %v, want %v", got, want)
	}

	started := eng.started()
	if len(started) != 3 {
		t.Fatalf("starts = %v", started)
	}
	// starts are fire-and-forget but their admission order is strict
	sorted := append([]string(nil), started...)
	sort.Strings(sorted)
	for i := range started {
		if started[i] != sorted[i] {
			t.Fatalf("start order = %v", started)
		}
	}
}

func TestRunSpansBatchBoundaryWithoutGap(t *testing.T) {
	t.Parallel()

	fc := clock.NewFake(base)
	eng := &countingEngine{}
	s := New(&sliceArchive{events: windowEvents()}, eng, fc, Config{})

	job := testJob()
	job.Batch = 2
	if err := s.RunOnce(context.Background(), job); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	// the 20s gap between n2 (end of batch 1) and n3 (start of batch 2)
	// must still compress to exactly 2s
	got := fc.Sleeps()
	if len(got) != 2 || got[0] != time.Second || got[1] != 2*time.Second {
		t.Fatalf("sleeps = %v", got)
	}
	if len(eng.started()) != 3 {
		t.Fatalf("starts = %v", eng.started())
	}
}

func TestRunEmptyWindow(t *testing.T) {
	t.Parallel()

	fc := clock.NewFake(base)
	eng := &countingEngine{}
	s := New(&sliceArchive{events: windowEvents()}, eng, fc, Config{})

	job := testJob()
	job.To = job.From
	if err := s.RunOnce(context.Background(), job); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if len(eng.started()) != 0 {
		t.Fatalf("starts = %v, want none", eng.started())
	}
}

func TestRunOnceValidates(t *testing.T) {
	t.Parallel()

	s := New(&sliceArchive{}, &countingEngine{}, clock.NewFake(base), Config{})

	cases := []struct {
		name string
		mut  func(*domain.Job)
	}{
		{"zero factor", func(j *domain.Job) { j.Factor = 0 }},
		{"negative factor", func(j *domain.Job) { j.Factor = -1 }},
		{"zero batch", func(j *domain.Job) { j.Batch = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			job := testJob()
			tc.mut(&job)
			err := s.RunOnce(context.Background(), job)
			if perr.CodeOf(err) != perr.ErrorCodeValidation {
				t.Fatalf("err = %v, want validation error", err)
			}
		})
	}
}

func TestSubmitSingleSlot(t *testing.T) {
	t.Parallel()

	s := New(&sliceArchive{events: windowEvents()}, &countingEngine{}, clock.NewFake(base), Config{})

	if err := s.Submit(testJob()); err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	if err := s.Submit(testJob()); perr.CodeOf(err) != perr.ErrorCodeConflict {
		t.Fatalf("second Submit: %v, want conflict", err)
	}

	// once the worker drains and finishes the job the slot frees up
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for {
		if err := s.Submit(testJob()); err == nil {
			break
		}
		select {
		case <-deadline:
			t.Fatal("slot never freed after the first run")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
}

func TestSubmitRejectsMalformed(t *testing.T) {
	t.Parallel()

	s := New(&sliceArchive{}, &countingEngine{}, clock.NewFake(base), Config{})
	job := testJob()
	job.Factor = -3
	if err := s.Submit(job); perr.CodeOf(err) != perr.ErrorCodeValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
	// a rejected job must not occupy the slot
	if err := s.Submit(testJob()); err != nil {
		t.Fatalf("Submit after rejection: %v", err)
	}
}

func TestRunCancellationStopsBetweenDelays(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	fc := &cancellingClock{Fake: clock.NewFake(base), cancel: cancel, after: 1}
	eng := &countingEngine{}
	s := New(&sliceArchive{events: windowEvents()}, eng, fc, Config{})

	err := s.RunOnce(ctx, testJob())
	if err == nil {
		t.Fatal("cancelled run returned nil")
	}

	// first event started immediately, second delay observed the cancel
	deadline := time.After(2 * time.Second)
	for len(eng.started()) < 1 {
		select {
		case <-deadline:
			t.Fatalf("starts = %d, want 1", len(eng.started()))
		case <-time.After(5 * time.Millisecond):
		}
	}
	time.Sleep(20 * time.Millisecond)
	if got := len(eng.started()); got != 1 {
		t.Fatalf("starts = %d, want 1", got)
	}
}

// a cancelled run must still wait for its in-flight starts before
// returning, otherwise the slot frees while engine work is running
func TestRunCancellationWaitsForInflightStarts(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	fc := &cancellingClock{Fake: clock.NewFake(base), cancel: cancel, after: 1}
	eng := &blockingEngine{entered: make(chan struct{}, 8), release: make(chan struct{})}
	s := New(&sliceArchive{events: windowEvents()}, eng, fc, Config{})

	done := make(chan error, 1)
	go func() { done <- s.RunOnce(ctx, testJob()) }()

	select {
	case <-eng.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first start never reached the engine")
	}

	select {
	case err := <-done:
		t.Fatalf("run returned %v with a start still in flight", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(eng.release)
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("cancelled run returned nil")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run never returned after the start finished")
	}
}

// blockingEngine holds every Start until release closes
type blockingEngine struct {
	entered chan struct{}
	release chan struct{}
}

func (e *blockingEngine) Start(_ context.Context, ev instdomain.EventSnapshot) (string, error) {
	e.entered <- struct{}{}
	<-e.release
	return "inst-" + ev.NoteID, nil
}

func (e *blockingEngine) StartAsync(ctx context.Context, ev instdomain.EventSnapshot) (string, error) {
	return e.Start(ctx, ev)
}

func (e *blockingEngine) Resume(context.Context, string) error { return nil }

// cancellingClock cancels the context after N sleeps
type cancellingClock struct {
	*clock.Fake
	cancel context.CancelFunc
	after  int
	seen   int
}

func (c *cancellingClock) Sleep(ctx context.Context, d time.Duration) error {
	c.seen++
	if c.seen >= c.after {
		c.cancel()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.Fake.Sleep(ctx, d)
}
