package ruleset

import "sync"

// Holder owns the active ruleset for a process
// reload is an explicit operation, callers never reach a global
type Holder struct {
	mu sync.RWMutex
	rs *Ruleset

	// loader runs on Reload; defaults to the embedded document
	loader func() (*Ruleset, error)
}

// NewHolder wraps an already validated ruleset
func NewHolder(rs *Ruleset) *Holder {
	return &Holder{rs: rs, loader: Load}
}

// NewHolderFromFile builds a holder whose Reload re-reads path
func NewHolderFromFile(path string) (*Holder, error) {
	rs, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return &Holder{rs: rs, loader: func() (*Ruleset, error) { return LoadFile(path) }}, nil
}

// Current returns the active ruleset
func (h *Holder) Current() *Ruleset {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rs
}

// Reload re-runs the loader and swaps the active document on success
// on error the previous document stays active
func (h *Holder) Reload() error {
	rs, err := h.loader()
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.rs = rs
	h.mu.Unlock()
	return nil
}
