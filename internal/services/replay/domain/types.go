// Package domain defines the replay job model
package domain

import (
	"time"

	perr "retention/internal/platform/errors"
)

// Job is one accepted replay request
// it lives for exactly one scheduling run and is never persisted
type Job struct {
	From        time.Time `json:"from_ts"`
	To          time.Time `json:"to_ts"`
	Factor      float64   `json:"compression_factor"`
	Batch       int       `json:"batch_size"`
	MaxInflight int       `json:"max_inflight"`

	// DryRun keeps the compressed pacing but starts no instances
	DryRun bool `json:"dry_run"`
}

// Defaults applied when the caller leaves fields unset
const (
	DefaultFactor      = 120.0
	DefaultBatch       = 1000
	DefaultMaxInflight = 16
)

// Validate rejects malformed jobs before any instance is created
func (j Job) Validate() error {
	if j.Factor <= 0 {
		return perr.Validationf("compression_factor must be positive, got %v", j.Factor)
	}
	if j.Batch <= 0 {
		return perr.Validationf("batch_size must be positive, got %d", j.Batch)
	}
	return nil
}

// WithDefaults fills unset optional fields
func (j Job) WithDefaults() Job {
	if j.Factor == 0 {
		j.Factor = DefaultFactor
	}
	if j.Batch == 0 {
		j.Batch = DefaultBatch
	}
	if j.MaxInflight <= 0 {
		j.MaxInflight = DefaultMaxInflight
	}
	return j
}
