// Package scoring combines text rule hits and structured account signals
// into a single churn risk score with a human readable explanation
package scoring

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"retention/internal/core/ruleset"
)

// RuleHit is one matched text trigger as produced by a matcher
type RuleHit struct {
	RuleID       string  `json:"rule_id"`
	Confidence   float64 `json:"confidence"`
	EvidenceText string  `json:"evidence_text"`
}

// Features is the structured snapshot for a customer at event time
// pointers distinguish absent signals from zero values
type Features struct {
	CustomerID     string   `json:"customer_id"`
	CurrentRate    *float64 `json:"current_rate,omitempty"`
	PrevRate       *float64 `json:"prev_rate,omitempty"`
	RateDiff       *float64 `json:"rate_diff,omitempty"`
	TermMonths     *int     `json:"term_months,omitempty"`
	AccountAgeDays *int     `json:"account_age_days,omitempty"`
}

// Outcome is the scorer result folded into the EVALUATED step
type Outcome struct {
	Score       float64   `json:"score"`
	Hits        []RuleHit `json:"rule_hits"`
	Explanation string    `json:"explanation_text"`
}

// maxExplanation bounds the explanation text in bytes
const maxExplanation = 1000

// caps for the structured contributions
const (
	rateDiffCap   = 1.5
	tenureCapsMos = 6.0
)

// Score applies the rule weights to hits and features and clamps to [0,1]
// hits below the confidence floor contribute nothing and are dropped from the outcome
func Score(rs *ruleset.Ruleset, hits []RuleHit, f Features) Outcome {
	var structured, text float64
	var explanations []string

	if f.RateDiff != nil {
		val := *f.RateDiff
		if val < 0 {
			val = -val
		}
		structured += minf(val/rateDiffCap, 1.0) * rs.Weights.RateDiff
		explanations = append(explanations, fmt.Sprintf(
			"Rate change: %s → %s (Δ=%s)",
			fmtRate(f.PrevRate), fmtRate(f.CurrentRate), trimFloat(*f.RateDiff),
		))
	}

	if f.AccountAgeDays != nil {
		months := float64(*f.AccountAgeDays) / 30.0
		structured += minf(months/tenureCapsMos, 1.0) * rs.Weights.Tenure
		explanations = append(explanations, fmt.Sprintf("Tenure ~%.1f months", months))
	}

	var kept []RuleHit
	for _, h := range hits {
		if h.Confidence < rs.ConfidenceFloor {
			continue
		}
		text += h.Confidence * rs.WeightFor(h.RuleID)
		kept = append(kept, h)
		if h.EvidenceText != "" {
			explanations = append(explanations, fmt.Sprintf("%s evidence: “%s”", h.RuleID, h.EvidenceText))
		}
	}

	score := text + structured
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}

	return Outcome{
		Score:       score,
		Hits:        kept,
		Explanation: truncate(strings.Join(explanations, " | "), maxExplanation),
	}
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func fmtRate(v *float64) string {
	if v == nil {
		return "?"
	}
	return trimFloat(*v)
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// truncate cuts s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
