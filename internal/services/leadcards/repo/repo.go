// Package repo persists lead cards in Postgres
package repo

import (
	"context"

	"github.com/google/uuid"

	"retention/internal/modkit/repokit"
	perr "retention/internal/platform/errors"
	"retention/internal/platform/store"
	"retention/internal/services/leadcards/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage is the lead card repository surface
type Storage interface {
	Write(ctx context.Context, c domain.Card) (string, error)
	ListByCustomer(ctx context.Context, customerID string, limit int) ([]domain.Card, error)
}

// Write implements Storage
// the unique index on instance_id makes retried writes a no-op; the follow-up
// select returns whichever id won
func (s *pg) Write(ctx context.Context, c domain.Card) (string, error) {
	id := c.CardID
	if id == "" {
		id = uuid.NewString()
	}

	_, err := s.q.Exec(ctx, `
		INSERT INTO lead_cards
			(card_id, instance_id, customer_id, note_id, score, rule_hits_json,
			 structured_snapshot_json, explanation_text, agent_version, ruleset_version, created_ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		ON CONFLICT (instance_id) DO NOTHING`,
		id, c.InstanceID, c.CustomerID, c.NoteID, c.Score,
		nullableJSON(c.RuleHits), nullableJSON(c.Structured),
		c.Explanation, c.AgentVersion, c.RulesetVersion,
	)
	if err != nil {
		return "", perr.FromPostgres(err, "write lead card")
	}

	got, err := store.Scalar[string](ctx, s.q, `
		SELECT card_id FROM lead_cards WHERE instance_id = $1`, c.InstanceID)
	if err != nil {
		return "", perr.FromPostgres(err, "read back lead card")
	}
	return got, nil
}

// ListByCustomer implements Storage
func (s *pg) ListByCustomer(ctx context.Context, customerID string, limit int) ([]domain.Card, error) {
	cards, err := store.Many(ctx, s.q, scanCard, `
		SELECT card_id, instance_id, customer_id, note_id, score, rule_hits_json,
			structured_snapshot_json, explanation_text, agent_version, ruleset_version, created_ts
		FROM lead_cards
		WHERE customer_id = $1
		ORDER BY created_ts DESC
		LIMIT $2`, customerID, limit)
	if err != nil {
		return nil, perr.FromPostgres(err, "list lead cards")
	}
	return cards, nil
}

func scanCard(r store.Row) (domain.Card, error) {
	var (
		c         domain.Card
		noteID    *string
		hits      []byte
		structRaw []byte
	)
	err := r.Scan(
		&c.CardID, &c.InstanceID, &c.CustomerID, &noteID, &c.Score,
		&hits, &structRaw, &c.Explanation, &c.AgentVersion, &c.RulesetVersion, &c.CreatedTS,
	)
	if err != nil {
		return domain.Card{}, err
	}
	if noteID != nil {
		c.NoteID = *noteID
	}
	c.RuleHits = hits
	c.Structured = structRaw
	return c, nil
}

func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
