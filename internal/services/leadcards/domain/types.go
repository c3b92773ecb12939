// Package domain defines the lead card model
package domain

import (
	"encoding/json"
	"time"
)

// Card is one emitted churn-risk lead
// cards are append-only: never updated or deleted by this service
type Card struct {
	CardID         string          `json:"card_id"`
	InstanceID     string          `json:"instance_id"`
	CustomerID     string          `json:"customer_id"`
	NoteID         string          `json:"note_id,omitempty"`
	Score          float64         `json:"score"`
	RuleHits       json.RawMessage `json:"rule_hits,omitempty"`
	Structured     json.RawMessage `json:"structured_snapshot,omitempty"`
	Explanation    string          `json:"explanation"`
	AgentVersion   string          `json:"agent_version"`
	RulesetVersion string          `json:"ruleset_version"`
	CreatedTS      time.Time       `json:"created_ts"`
}
