// Package repo reads structured customer features out of Postgres
package repo

import (
	"context"
	"time"

	"retention/internal/core/scoring"
	"retention/internal/modkit/repokit"
	perr "retention/internal/platform/errors"
	"retention/internal/platform/store"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage is the feature repository surface
type Storage interface {
	Latest(ctx context.Context, customerID string, ts time.Time) (scoring.Features, error)
}

// now anchors the account age when a caller passes a zero ts
var now = time.Now

type snapshotRow struct {
	rate        float64
	termMonths  *int
	origination *time.Time
}

// Latest implements Storage
// the two most recent snapshots yield current and previous rate; the rate
// diff and account age are derived here, never stored
func (s *pg) Latest(ctx context.Context, customerID string, ts time.Time) (scoring.Features, error) {
	rows, err := store.Many(ctx, s.q, scanSnapshot, `
		SELECT rate, term_months, origination_date
		FROM customer_snapshots
		WHERE customer_id = $1
		ORDER BY snapshot_ts DESC
		LIMIT 2`, customerID)
	if err != nil {
		return scoring.Features{}, perr.FromPostgres(err, "fetch snapshots")
	}

	f := scoring.Features{CustomerID: customerID}
	if len(rows) == 0 {
		return f, nil
	}

	if ts.IsZero() {
		ts = now()
	}

	cur := rows[0]
	f.CurrentRate = &cur.rate
	f.TermMonths = cur.termMonths
	if cur.origination != nil {
		age := int(ts.Sub(*cur.origination).Hours() / 24)
		f.AccountAgeDays = &age
	}
	if len(rows) == 2 {
		prev := rows[1].rate
		diff := cur.rate - prev
		f.PrevRate = &prev
		f.RateDiff = &diff
	}
	return f, nil
}

func scanSnapshot(r store.Row) (snapshotRow, error) {
	var row snapshotRow
	if err := r.Scan(&row.rate, &row.termMonths, &row.origination); err != nil {
		return snapshotRow{}, err
	}
	return row, nil
}
