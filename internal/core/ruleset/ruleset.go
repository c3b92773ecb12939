// Package ruleset loads and validates the churn rule document from the
// embedded rules.yaml or an operator supplied override file.
// It feeds both the scorer (weights, threshold) and the text matcher (catalog)
package ruleset

import (
	_ "embed"
	"os"
	"sort"
	"strings"

	perr "retention/internal/platform/errors"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var embedded []byte

// Weights are the structured signal weights
type Weights struct {
	RateDiff float64 `yaml:"rate_diff"`
	Tenure   float64 `yaml:"tenure"`
}

// TextRule is one free-text trigger definition
type TextRule struct {
	ID          string   `yaml:"id"`
	Weight      float64  `yaml:"weight"`
	Description string   `yaml:"description"`
	PhraseHints []string `yaml:"phrase_hints"`
	Negations   []string `yaml:"negations"`
}

// Ruleset is the active rule document
type Ruleset struct {
	Version         string              `yaml:"version"`
	Threshold       float64             `yaml:"threshold"`
	ConfidenceFloor float64             `yaml:"confidence_floor"`
	EvidenceMinLen  int                 `yaml:"evidence_min_len"`
	Weights         Weights             `yaml:"weights"`
	TextRules       map[string]TextRule `yaml:"text_rules"`
}

// DefaultRuleWeight applies when a hit references a rule id the document does not carry
const DefaultRuleWeight = 0.4

// Load parses and validates the embedded rules.yaml
func Load() (*Ruleset, error) {
	return parse(embedded, "embedded rules.yaml")
}

// LoadFile parses and validates an operator override document
func LoadFile(path string) (*Ruleset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, perr.Configf("ruleset: read %s: %v", path, err)
	}
	return parse(raw, path)
}

func parse(raw []byte, origin string) (*Ruleset, error) {
	var rs Ruleset
	if err := yaml.Unmarshal(raw, &rs); err != nil {
		return nil, perr.Configf("ruleset: parse %s: %v", origin, err)
	}

	if rs.Threshold <= 0 || rs.Threshold > 1 {
		return nil, perr.Configf("ruleset: %s: threshold must be in (0,1], got %v", origin, rs.Threshold)
	}
	if rs.Weights.RateDiff <= 0 && rs.Weights.Tenure <= 0 {
		return nil, perr.Configf("ruleset: %s: weights block missing or zero", origin)
	}
	if len(rs.TextRules) == 0 {
		return nil, perr.Configf("ruleset: %s: no text_rules defined", origin)
	}
	if rs.ConfidenceFloor <= 0 {
		rs.ConfidenceFloor = 0.6
	}
	if rs.EvidenceMinLen <= 0 {
		rs.EvidenceMinLen = 4
	}
	if strings.TrimSpace(rs.Version) == "" {
		rs.Version = "dev"
	}

	// backfill rule ids from map keys so callers never see an empty id
	for key, tr := range rs.TextRules {
		if strings.TrimSpace(tr.ID) == "" {
			tr.ID = key
			rs.TextRules[key] = tr
		}
	}

	return &rs, nil
}

// WeightFor returns the weight for a rule id, falling back to DefaultRuleWeight
func (rs *Ruleset) WeightFor(ruleID string) float64 {
	if tr, ok := rs.TextRules[ruleID]; ok && tr.Weight > 0 {
		return tr.Weight
	}
	return DefaultRuleWeight
}

// KnownRule reports whether the document carries ruleID
func (rs *Ruleset) KnownRule(ruleID string) bool {
	_, ok := rs.TextRules[ruleID]
	return ok
}

// CatalogEntry is the matcher facing view of a text rule
type CatalogEntry struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	PhraseHints []string `json:"phrase_hints"`
	Negations   []string `json:"negations"`
}

// Catalog returns the text rules as a stable, name sorted matcher catalog
func (rs *Ruleset) Catalog() []CatalogEntry {
	out := make([]CatalogEntry, 0, len(rs.TextRules))
	for key, tr := range rs.TextRules {
		out = append(out, CatalogEntry{
			ID:          tr.ID,
			Name:        key,
			Description: tr.Description,
			PhraseHints: tr.PhraseHints,
			Negations:   tr.Negations,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
