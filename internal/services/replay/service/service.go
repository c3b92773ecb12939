// Package service implements the replay scheduler and its ingestion queue
package service

import (
	"context"
	"time"

	"retention/internal/platform/clock"
	perr "retention/internal/platform/errors"
	"retention/internal/platform/logger"
	evdomain "retention/internal/services/events/domain"
	instdomain "retention/internal/services/instances/domain"
	orchdomain "retention/internal/services/orchestrator/domain"
	"retention/internal/services/replay/domain"
)

// Config holds the process-level scheduler knobs
type Config struct {
	// MaxInflight caps concurrent instance starts for jobs that do not set one
	MaxInflight int
}

// Service owns the single job slot and the scheduling loop
// the slot token is held from Submit until the run finishes, so a job that
// is merely queued already blocks the next submission
type Service struct {
	archive evdomain.ArchivePort
	engine  orchdomain.EnginePort
	clk     clock.Clock
	cfg     Config
	log     logger.Logger

	slot chan struct{}
	jobs chan domain.Job
}

// New constructs the replay service
func New(archive evdomain.ArchivePort, engine orchdomain.EnginePort, clk clock.Clock, cfg Config) *Service {
	if clk == nil {
		clk = clock.Real{}
	}
	if cfg.MaxInflight <= 0 {
		cfg.MaxInflight = domain.DefaultMaxInflight
	}
	return &Service{
		archive: archive,
		engine:  engine,
		clk:     clk,
		cfg:     cfg,
		log:     *logger.Named("replay"),
		slot:    make(chan struct{}, 1),
		jobs:    make(chan domain.Job, 1),
	}
}

// Submit implements domain.SubmitPort
// callers fill defaults before submitting, an explicit zero factor is rejected
func (s *Service) Submit(job domain.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	select {
	case s.slot <- struct{}{}:
	default:
		return perr.Conflictf("a replay is already queued or running")
	}

	s.jobs <- job
	s.log.Info().
		Time("from", job.From).
		Time("to", job.To).
		Float64("factor", job.Factor).
		Int("batch", job.Batch).
		Msg("replay accepted")
	return nil
}

// Run implements domain.RunnerPort
// it is the single worker goroutine consuming the queue
func (s *Service) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job := <-s.jobs:
			if err := s.run(ctx, job); err != nil {
				s.log.Error().Err(err).Msg("replay run aborted")
			}
			<-s.slot
		}
	}
}

// RunOnce implements domain.RunnerPort
func (s *Service) RunOnce(ctx context.Context, job domain.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}
	return s.run(ctx, job)
}

// run streams the window in keyset batches and spaces starts by the
// compressed inter-arrival gaps; the first event starts immediately
func (s *Service) run(ctx context.Context, job domain.Job) error {
	if !job.To.After(job.From) {
		s.log.Info().Time("from", job.From).Time("to", job.To).Msg("empty replay window")
		return nil
	}
	if job.MaxInflight <= 0 {
		job.MaxInflight = s.cfg.MaxInflight
	}

	sem := make(chan struct{}, job.MaxInflight)
	// wait for in-flight starts on every exit path, so the slot release
	// always means no replay work remains
	defer func() {
		for i := 0; i < cap(sem); i++ {
			sem <- struct{}{}
		}
	}()

	var (
		cursor  evdomain.Cursor
		prevTS  time.Time
		first   = true
		started int
	)

	for {
		events, next, err := s.archive.FetchWindow(ctx, job.From, job.To, cursor, job.Batch)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			break
		}

		for _, ev := range events {
			if !first {
				gap := ev.CreatedTS.Sub(prevTS)
				delay := time.Duration(float64(gap) / job.Factor)
				if err := s.clk.Sleep(ctx, delay); err != nil {
					s.log.Info().Int("started", started).Msg("replay cancelled")
					return err
				}
			}
			first = false
			prevTS = ev.CreatedTS

			if job.DryRun {
				started++
				continue
			}
			if err := s.startOne(ctx, sem, ev); err != nil {
				return err
			}
			started++
		}

		cursor = next
		if len(events) < job.Batch {
			break
		}
	}

	s.log.Info().Int("started", started).Msg("replay window finished")
	return nil
}

// startOne fires the engine without waiting for the instance to finish
// engine failures stay with their instance and never stop the window
func (s *Service) startOne(ctx context.Context, sem chan struct{}, ev evdomain.Event) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case sem <- struct{}{}:
	}

	bg := context.WithoutCancel(ctx)
	go func() {
		defer func() { <-sem }()
		_, err := s.engine.Start(bg, instdomain.EventSnapshot{
			CustomerID: ev.CustomerID,
			NoteID:     ev.NoteID,
			EventTS:    ev.CreatedTS,
			Text:       ev.Text,
		})
		if err != nil {
			s.log.Warn().
				Str("customer_id", ev.CustomerID).
				Str("note_id", ev.NoteID).
				Err(err).
				Msg("replay start failed")
		}
	}()
	return nil
}
