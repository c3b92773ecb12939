// Package domain defines the types and interfaces for the events archive
package domain

import "time"

// Event is one archived customer note, immutable once read
type Event struct {
	CustomerID string    `json:"customer_id"`
	NoteID     string    `json:"note_id"`
	CreatedTS  time.Time `json:"ts"`
	Text       string    `json:"text"`
}

// Cursor is the keyset position inside a replay window
// zero value means "start of window"
type Cursor struct {
	CreatedTS time.Time
	NoteID    string
}

// IsZero reports whether the cursor still points at the window start
func (c Cursor) IsZero() bool { return c.NoteID == "" && c.CreatedTS.IsZero() }
