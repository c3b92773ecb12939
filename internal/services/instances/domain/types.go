// Package domain defines the orchestration instance model and its step machine
package domain

import (
	"encoding/json"
	"time"
)

// Step names the pipeline stages recorded in an instance history
type Step string

// Pipeline steps in their fixed total order, plus the terminal states
const (
	StepStarted         Step = "STARTED"
	StepTextMatched     Step = "TEXT_MATCHED"
	StepFeaturesFetched Step = "FEATURES_FETCHED"
	StepEvaluated       Step = "EVALUATED"
	StepCardWritten     Step = "CARD_WRITTEN"
	StepCompleted       Step = "COMPLETED"
	StepFailed          Step = "FAILED"
)

// RuntimeStatus is the external view of where an instance is
type RuntimeStatus string

// Runtime statuses surfaced by the status gateway
const (
	StatusRunning   RuntimeStatus = "Running"
	StatusCompleted RuntimeStatus = "Completed"
	StatusFailed    RuntimeStatus = "Failed"
)

// EventSnapshot is the immutable input captured at instance creation
type EventSnapshot struct {
	CustomerID string    `json:"customer_id"`
	NoteID     string    `json:"note_id"`
	EventTS    time.Time `json:"ts"`
	Text       string    `json:"text"`
}

// StepRecord is one immutable entry in an instance history
type StepRecord struct {
	Seq         int             `json:"seq"`
	Step        Step            `json:"step"`
	OK          bool            `json:"ok"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	ErrorDetail string          `json:"error_detail,omitempty"`
	LatencyMS   int64           `json:"latency_ms"`
	RecordedAt  time.Time       `json:"recorded_at"`
}

// Instance is a snapshot of one orchestration run
type Instance struct {
	ID            string          `json:"instance_id"`
	Event         EventSnapshot   `json:"event"`
	CurrentStep   Step            `json:"current_step"`
	RuntimeStatus RuntimeStatus   `json:"runtime_status"`
	FailingStep   Step            `json:"failing_step,omitempty"`
	ErrorDetail   string          `json:"error_detail,omitempty"`
	Result        json.RawMessage `json:"result,omitempty"`
	Steps         []StepRecord    `json:"steps"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Terminal reports whether the instance reached COMPLETED or FAILED
func (i Instance) Terminal() bool {
	return i.CurrentStep == StepCompleted || i.CurrentStep == StepFailed
}

// StepWrite is the input to RecordStep
type StepWrite struct {
	Step        Step
	OK          bool
	Payload     json.RawMessage
	ErrorDetail string
	LatencyMS   int64

	// Result is stored on the instance when Step is terminal
	Result json.RawMessage

	// FailingStep names the stage that was being attempted when Step is FAILED
	FailingStep Step
}

// Terminal reports whether s ends an instance
func Terminal(s Step) bool { return s == StepCompleted || s == StepFailed }

// Predecessors returns the steps allowed to directly precede s
// an empty slice means s may never be recorded after creation
func Predecessors(s Step) []Step {
	switch s {
	case StepTextMatched:
		return []Step{StepStarted}
	case StepFeaturesFetched:
		return []Step{StepTextMatched}
	case StepEvaluated:
		return []Step{StepFeaturesFetched}
	case StepCardWritten:
		return []Step{StepEvaluated}
	case StepCompleted:
		return []Step{StepEvaluated, StepCardWritten}
	case StepFailed:
		return []Step{StepStarted, StepTextMatched, StepFeaturesFetched, StepEvaluated, StepCardWritten}
	default:
		return nil
	}
}

// AllowedAfter reports whether next may follow prev in a history
func AllowedAfter(prev, next Step) bool {
	for _, p := range Predecessors(next) {
		if p == prev {
			return true
		}
	}
	return false
}
