// Package service provides the lead card service
package service

import (
	"context"

	"retention/internal/modkit/repokit"
	perr "retention/internal/platform/errors"
	"retention/internal/services/leadcards/domain"
	"retention/internal/services/leadcards/repo"
)

// Config for the lead card service
type Config struct {
	MaxList int
}

// Service implements domain.WritePort and domain.ReadPort
type Service struct {
	tx     repokit.TxRunner
	binder repokit.Binder[repo.Storage]
	cfg    Config
}

// New constructs the lead card service
func New(tx repokit.TxRunner, binder repokit.Binder[repo.Storage], cfg Config) *Service {
	if cfg.MaxList <= 0 {
		cfg.MaxList = 100
	}
	return &Service{tx: tx, binder: binder, cfg: cfg}
}

// Write implements domain.WritePort
func (s *Service) Write(ctx context.Context, c domain.Card) (string, error) {
	if s.tx == nil {
		return "", perr.Unavailablef("lead card store not configured")
	}
	if c.InstanceID == "" || c.CustomerID == "" {
		return "", perr.Validationf("lead card requires instance_id and customer_id")
	}
	var id string
	err := repokit.WithTx(ctx, s.tx, func(q repokit.Queryer) error {
		var err error
		id, err = s.binder.Bind(q).Write(ctx, c)
		return err
	})
	return id, err
}

// ListByCustomer implements domain.ReadPort
func (s *Service) ListByCustomer(ctx context.Context, customerID string, limit int) ([]domain.Card, error) {
	if s.tx == nil {
		return nil, perr.Unavailablef("lead card store not configured")
	}
	if customerID == "" {
		return nil, perr.Validationf("customer_id is required")
	}
	if limit <= 0 || limit > s.cfg.MaxList {
		limit = s.cfg.MaxList
	}
	var cards []domain.Card
	err := repokit.WithTx(ctx, s.tx, func(q repokit.Queryer) error {
		var err error
		cards, err = s.binder.Bind(q).ListByCustomer(ctx, customerID, limit)
		return err
	})
	return cards, err
}
