package domain

import (
	"context"
	"time"
)

// ArchivePort reads and appends the historical event archive
type ArchivePort interface {
	// Append stores events, best effort ordering is by created_ts
	Append(ctx context.Context, xs []Event) error

	// FetchWindow returns up to limit events with from <= created_ts < to,
	// strictly after the cursor, in ascending (created_ts, note_id) order
	FetchWindow(ctx context.Context, from, to time.Time, after Cursor, limit int) ([]Event, Cursor, error)
}
