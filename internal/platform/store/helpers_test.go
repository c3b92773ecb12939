package store

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	perr "retention/internal/platform/errors"
)

type cmdTag string

func (c cmdTag) String() string { return string(c) }
func (c cmdTag) RowsAffected() int64 {
	s := string(c)
	i := strings.LastIndexByte(s, ' ')
	if i < 0 {
		return 0
	}
	n, err := strconv.ParseInt(s[i+1:], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

type fakeRowQuerier struct {
	lastExecSQL string
	execTag     CommandTag
	execErr     error

	queryRows Rows
	queryErr  error

	scanVal int
	scanErr error
}

func (f *fakeRowQuerier) Exec(_ context.Context, sql string, _ ...any) (CommandTag, error) {
	f.lastExecSQL = sql
	return f.execTag, f.execErr
}

func (f *fakeRowQuerier) Query(_ context.Context, _ string, _ ...any) (Rows, error) {
	return f.queryRows, f.queryErr
}

func (f *fakeRowQuerier) QueryRow(_ context.Context, _ string, _ ...any) Row {
	return &fakeRow{val: f.scanVal, err: f.scanErr}
}

type fakeRow struct {
	val int
	err error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) > 0 {
		if p, ok := dest[0].(*int); ok {
			*p = r.val
		}
	}
	return nil
}

type fakeRows struct {
	cols   []string
	data   [][]any
	idx    int
	err    error
	closed bool
}

func newRows(cols []string, data [][]any) *fakeRows {
	return &fakeRows{cols: cols, data: data, idx: -1}
}

func (r *fakeRows) Columns() []string { return r.cols }
func (r *fakeRows) Next() bool {
	if r.err != nil {
		return false
	}
	r.idx++
	return r.idx >= 0 && r.idx < len(r.data)
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if r.idx < 0 || r.idx >= len(r.data) {
		return errors.New("scan out of bounds")
	}
	row := r.data[r.idx]
	if len(dest) != len(row) {
		return errors.New("scan arity mismatch")
	}
	for i := range dest {
		switch p := dest[i].(type) {
		case *int:
			*p = row[i].(int)
		case *string:
			*p = row[i].(string)
		default:
			return errors.New("unsupported scan dest")
		}
	}
	return nil
}

func (r *fakeRows) Err() error { return r.err }
func (r *fakeRows) Close()     { r.closed = true }

func TestExecOne(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		tag     CommandTag
		execErr error
		wantErr bool
	}{
		{"one row", cmdTag("UPDATE 1"), nil, false},
		{"zero rows", cmdTag("UPDATE 0"), nil, true},
		{"exec error", cmdTag(""), errors.New("boom"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := &fakeRowQuerier{execTag: tc.tag, execErr: tc.execErr}
			err := ExecOne(context.Background(), q, "UPDATE t SET x=1")
			if (err != nil) != tc.wantErr {
				t.Fatalf("ExecOne err=%v wantErr=%v", err, tc.wantErr)
			}
		})
	}
}

func TestScalar(t *testing.T) {
	t.Parallel()

	q := &fakeRowQuerier{scanVal: 42}
	got, err := Scalar[int](context.Background(), q, "SELECT 42")
	if err != nil {
		t.Fatalf("Scalar: %v", err)
	}
	if got != 42 {
		t.Fatalf("Scalar = %d, want 42", got)
	}
}

func TestOne(t *testing.T) {
	t.Parallel()

	scan := func(r Row) (int, error) {
		var v int
		err := r.Scan(&v)
		return v, err
	}

	t.Run("single row", func(t *testing.T) {
		q := &fakeRowQuerier{queryRows: newRows([]string{"n"}, [][]any{{7}})}
		got, err := One(context.Background(), q, scan, "SELECT n")
		if err != nil {
			t.Fatalf("One: %v", err)
		}
		if got != 7 {
			t.Fatalf("One = %d, want 7", got)
		}
	})

	t.Run("no rows yields not found", func(t *testing.T) {
		q := &fakeRowQuerier{queryRows: newRows([]string{"n"}, nil)}
		_, err := One(context.Background(), q, scan, "SELECT n")
		if !errors.Is(err, perr.ErrNotFound) {
			t.Fatalf("One err = %v, want ErrNotFound", err)
		}
	})

	t.Run("extra rows rejected", func(t *testing.T) {
		q := &fakeRowQuerier{queryRows: newRows([]string{"n"}, [][]any{{1}, {2}})}
		_, err := One(context.Background(), q, scan, "SELECT n")
		if err == nil {
			t.Fatalf("One accepted multiple rows")
		}
	})
}

func TestMany(t *testing.T) {
	t.Parallel()

	scan := func(r Row) (string, error) {
		var v string
		err := r.Scan(&v)
		return v, err
	}
	q := &fakeRowQuerier{queryRows: newRows([]string{"s"}, [][]any{{"a"}, {"b"}})}
	got, err := Many(context.Background(), q, scan, "SELECT s")
	if err != nil {
		t.Fatalf("Many: %v", err)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("Many = %v", got)
	}
}
