// Package service provides the events archive service
package service

import (
	"context"
	"time"

	perr "retention/internal/platform/errors"
	"retention/internal/services/events/domain"
	"retention/internal/services/events/repo"
)

// Config for the events service
type Config struct {
	MaxBatch int
}

// Service implements domain.ArchivePort over the CH repo
type Service struct {
	Storage *repo.CH
	Cfg     Config
}

// New constructs the events service with a required CH repo
func New(storage *repo.CH, cfg Config) *Service {
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = 5000
	}
	return &Service{Storage: storage, Cfg: cfg}
}

// Append implements domain.ArchivePort
func (s *Service) Append(ctx context.Context, xs []domain.Event) error {
	if s.Storage == nil {
		return perr.Unavailablef("events archive not configured")
	}
	return s.Storage.Append(ctx, xs)
}

// FetchWindow implements domain.ArchivePort
func (s *Service) FetchWindow(
	ctx context.Context,
	from, to time.Time,
	after domain.Cursor,
	limit int,
) ([]domain.Event, domain.Cursor, error) {
	if s.Storage == nil {
		return nil, domain.Cursor{}, perr.Unavailablef("events archive not configured")
	}
	if limit <= 0 || limit > s.Cfg.MaxBatch {
		limit = s.Cfg.MaxBatch
	}
	return s.Storage.FetchWindow(ctx, from, to, after, limit)
}
