// Package service provides the feature fetch service
package service

import (
	"context"
	"time"

	"retention/internal/core/scoring"
	"retention/internal/modkit/repokit"
	perr "retention/internal/platform/errors"
	"retention/internal/services/features/repo"
)

// Service implements domain.FetchPort over the PG repo
type Service struct {
	tx     repokit.TxRunner
	binder repokit.Binder[repo.Storage]
}

// New constructs the features service
func New(tx repokit.TxRunner, binder repokit.Binder[repo.Storage]) *Service {
	return &Service{tx: tx, binder: binder}
}

// Fetch implements domain.FetchPort
func (s *Service) Fetch(ctx context.Context, customerID string, ts time.Time) (scoring.Features, error) {
	if s.tx == nil {
		return scoring.Features{}, perr.Unavailablef("feature store not configured")
	}
	var f scoring.Features
	err := repokit.WithTx(ctx, s.tx, func(q repokit.Queryer) error {
		var err error
		f, err = s.binder.Bind(q).Latest(ctx, customerID, ts)
		return err
	})
	return f, err
}
