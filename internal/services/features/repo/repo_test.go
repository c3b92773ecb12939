package repo

import (
	"context"
	"testing"
	"time"

	"retention/internal/platform/store"
	"retention/internal/platform/testkit"
)

type fakeRows struct {
	data [][]any
	i    int
}

func (f *fakeRows) Next() bool { f.i++; return f.i <= len(f.data) }

func (f *fakeRows) Scan(dest ...any) error {
	row := f.data[f.i-1]
	for j, d := range dest {
		switch v := d.(type) {
		case *float64:
			*v = row[j].(float64)
		case **int:
			if row[j] != nil {
				n := row[j].(int)
				*v = &n
			}
		case **time.Time:
			if row[j] != nil {
				ts := row[j].(time.Time)
				*v = &ts
			}
		}
	}
	return nil
}

func (f *fakeRows) Err() error        { return nil }
func (f *fakeRows) Close()            {}
func (f *fakeRows) Columns() []string { return nil }

type fakeQueryer struct {
	rows    [][]any
	gotArgs []any
}

func (f *fakeQueryer) Exec(context.Context, string, ...any) (store.CommandTag, error) {
	return nil, nil
}

func (f *fakeQueryer) Query(_ context.Context, _ string, args ...any) (store.Rows, error) {
	f.gotArgs = args
	return &fakeRows{data: f.rows}, nil
}

func (f *fakeQueryer) QueryRow(context.Context, string, ...any) store.Row { return nil }

func TestLatestDerivesRateDiffAndAge(t *testing.T) {
	testkit.Serial(t)
	testkit.Swap(t, &now, func() time.Time {
		return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	})

	origination := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	q := &fakeQueryer{rows: [][]any{
		{5.25, 60, origination},
		{4.75, 60, origination},
	}}

	f, err := NewPG().Bind(q).Latest(context.Background(), "C1", time.Time{})
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if q.gotArgs[0] != "C1" {
		t.Fatalf("expected customer filter, got %v", q.gotArgs)
	}

	if f.CurrentRate == nil || *f.CurrentRate != 5.25 {
		t.Fatalf("current rate = %v", f.CurrentRate)
	}
	if f.PrevRate == nil || *f.PrevRate != 4.75 {
		t.Fatalf("prev rate = %v", f.PrevRate)
	}
	if f.RateDiff == nil || *f.RateDiff != 0.5 {
		t.Fatalf("rate diff = %v", f.RateDiff)
	}
	if f.TermMonths == nil || *f.TermMonths != 60 {
		t.Fatalf("term months = %v", f.TermMonths)
	}
	if f.AccountAgeDays == nil || *f.AccountAgeDays != 60 {
		t.Fatalf("account age = %v", f.AccountAgeDays)
	}
}

// account age anchors to the event ts, not the wall clock, so a replayed
// event scores the same no matter when the replay runs
func TestLatestAnchorsAgeToEventTS(t *testing.T) {
	testkit.Serial(t)
	testkit.Swap(t, &now, func() time.Time {
		return time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)
	})

	origination := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	q := &fakeQueryer{rows: [][]any{{5.25, 60, origination}}}

	eventTS := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f, err := NewPG().Bind(q).Latest(context.Background(), "C1", eventTS)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if f.AccountAgeDays == nil {
		t.Fatal("account age absent")
	}
	if got := *f.AccountAgeDays; got < 59 || got > 60 {
		t.Fatalf("account age = %d, want event-anchored ~60 not wall-clock 424", got)
	}
}

func TestLatestSingleSnapshot(t *testing.T) {
	q := &fakeQueryer{rows: [][]any{{5.25, nil, nil}}}

	f, err := NewPG().Bind(q).Latest(context.Background(), "C2", time.Time{})
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if f.CurrentRate == nil || *f.CurrentRate != 5.25 {
		t.Fatalf("current rate = %v", f.CurrentRate)
	}
	if f.PrevRate != nil || f.RateDiff != nil {
		t.Fatalf("expected no previous-rate derivations: %+v", f)
	}
	if f.TermMonths != nil || f.AccountAgeDays != nil {
		t.Fatalf("expected null columns to stay absent: %+v", f)
	}
}

// a customer without snapshots is all-absent features, never an error
func TestLatestNoSnapshots(t *testing.T) {
	f, err := NewPG().Bind(&fakeQueryer{}).Latest(context.Background(), "C3", time.Time{})
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if f.CustomerID != "C3" {
		t.Fatalf("customer id = %q", f.CustomerID)
	}
	if f.CurrentRate != nil || f.PrevRate != nil || f.RateDiff != nil || f.TermMonths != nil || f.AccountAgeDays != nil {
		t.Fatalf("expected all-absent features, got %+v", f)
	}
}
