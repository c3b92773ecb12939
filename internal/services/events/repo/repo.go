// Package repo provides the ClickHouse events archive repository
package repo

import (
	"context"
	"time"

	"retention/internal/platform/store"
	"retention/internal/services/events/domain"
)

// CH is the clickhouse backed archive
type CH struct {
	db store.Clickhouse
}

// NewCH constructs the archive over the store seam
func NewCH(db store.Clickhouse) *CH { return &CH{db: db} }

// Append implements domain.ArchivePort
func (r *CH) Append(ctx context.Context, xs []domain.Event) error {
	if len(xs) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(xs))
	for _, e := range xs {
		rows = append(rows, []any{e.CustomerID, e.NoteID, e.CreatedTS, e.Text})
	}
	return r.db.Insert(ctx, "events (customer_id, note_id, created_ts, note_text)", rows)
}

// FetchWindow implements domain.ArchivePort with keyset pagination
func (r *CH) FetchWindow(
	ctx context.Context,
	from, to time.Time,
	after domain.Cursor,
	limit int,
) ([]domain.Event, domain.Cursor, error) {
	sql := `
		SELECT customer_id, note_id, created_ts, note_text
		FROM events
		WHERE created_ts >= ? AND created_ts < ?`
	args := []any{from, to}

	if !after.IsZero() {
		sql += ` AND (created_ts, note_id) > (?, ?)`
		args = append(args, after.CreatedTS, after.NoteID)
	}
	sql += ` ORDER BY created_ts, note_id LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, domain.Cursor{}, err
	}
	defer rows.Close()

	out := make([]domain.Event, 0, limit)
	var last domain.Cursor
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.CustomerID, &e.NoteID, &e.CreatedTS, &e.Text); err != nil {
			return nil, domain.Cursor{}, err
		}
		out = append(out, e)
		last = domain.Cursor{CreatedTS: e.CreatedTS, NoteID: e.NoteID}
	}
	return out, last, rows.Err()
}
