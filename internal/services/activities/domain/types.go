// Package domain defines the uniform activity invocation contract
package domain

import (
	"context"
	"encoding/json"
	"time"

	"retention/internal/core/scoring"
	instdomain "retention/internal/services/instances/domain"
)

// Capability names the engine can invoke
const (
	NameTextMatch     = "text_match"
	NameFetchFeatures = "fetch_features"
	NameEvaluate      = "evaluate"
	NamePersistCard   = "persist_card"
)

// Result is the ephemeral outcome of one invocation
// it is folded into the instance history immediately by the caller
type Result struct {
	Step      instdomain.Step `json:"step"`
	OK        bool            `json:"ok"`
	Err       string          `json:"err,omitempty"`
	LatencyMS int64           `json:"latency_ms"`
}

// InvokerPort dispatches named capabilities with JSON in and out
// an unknown capability is a configuration error, not an activity failure
type InvokerPort interface {
	Invoke(ctx context.Context, name string, in json.RawMessage) (json.RawMessage, Result, error)
}

// TextMatchInput is the payload for the text_match capability
type TextMatchInput struct {
	Text string `json:"text"`
}

// TextMatchOutput carries the scrubbed note and its surviving rule hits
type TextMatchOutput struct {
	ScrubbedText string            `json:"scrubbed_text"`
	Hits         []scoring.RuleHit `json:"rule_hits"`
}

// FetchFeaturesInput is the payload for the fetch_features capability
type FetchFeaturesInput struct {
	CustomerID string    `json:"customer_id"`
	TS         time.Time `json:"ts"`
}

// FetchFeaturesOutput is the structured snapshot at event time
type FetchFeaturesOutput struct {
	Features scoring.Features `json:"features"`
}

// EvaluateInput is the payload for the evaluate capability
type EvaluateInput struct {
	CustomerID string            `json:"customer_id"`
	Hits       []scoring.RuleHit `json:"rule_hits"`
	Features   scoring.Features  `json:"features"`
}

// EvaluateOutput folds the scorer outcome with the emission decision
type EvaluateOutput struct {
	Score          float64           `json:"score"`
	Hits           []scoring.RuleHit `json:"rule_hits"`
	Explanation    string            `json:"explanation_text"`
	ShouldEmit     bool              `json:"should_emit"`
	Threshold      float64           `json:"threshold"`
	RulesetVersion string            `json:"ruleset_version"`
}

// PersistCardInput is the payload for the persist_card capability
type PersistCardInput struct {
	InstanceID string           `json:"instance_id"`
	CustomerID string           `json:"customer_id"`
	NoteID     string           `json:"note_id"`
	Eval       EvaluateOutput   `json:"eval"`
	Features   scoring.Features `json:"features"`
}

// PersistCardOutput acknowledges the write with the card id
type PersistCardOutput struct {
	CardID string `json:"card_id"`
}
