// Package service provides the instance store service
package service

import (
	"context"

	"retention/internal/modkit/repokit"
	"retention/internal/services/instances/domain"
	"retention/internal/services/instances/repo"
)

// Service implements domain.StorePort over the durable repo
// step writes run inside a transaction so the instance row lock covers
// both the predecessor check and the history append
type Service struct {
	tx     repokit.TxRunner
	binder repokit.Binder[repo.Storage]
}

// New constructs the instances service
func New(tx repokit.TxRunner, binder repokit.Binder[repo.Storage]) *Service {
	return &Service{tx: tx, binder: binder}
}

// Create implements domain.StorePort
func (s *Service) Create(ctx context.Context, ev domain.EventSnapshot) (string, error) {
	var id string
	err := repokit.WithTx(ctx, s.tx, func(q repokit.Queryer) error {
		var err error
		id, err = s.binder.Bind(q).Create(ctx, ev)
		return err
	})
	return id, err
}

// RecordStep implements domain.StorePort
func (s *Service) RecordStep(ctx context.Context, id string, w domain.StepWrite) error {
	return repokit.WithTx(ctx, s.tx, func(q repokit.Queryer) error {
		return s.binder.Bind(q).RecordStep(ctx, id, w)
	})
}

// Get implements domain.StorePort
func (s *Service) Get(ctx context.Context, id string) (domain.Instance, error) {
	var inst domain.Instance
	err := repokit.WithTx(ctx, s.tx, func(q repokit.Queryer) error {
		var err error
		inst, err = s.binder.Bind(q).Get(ctx, id)
		return err
	})
	return inst, err
}
