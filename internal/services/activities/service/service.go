// Package service implements the activity invoker registry
package service

import (
	"context"
	"encoding/json"
	"time"

	perr "retention/internal/platform/errors"
	"retention/internal/platform/logger"
	"retention/internal/services/activities/domain"
	instdomain "retention/internal/services/instances/domain"
)

// activityFn runs one capability against its decoded JSON input
type activityFn func(ctx context.Context, in json.RawMessage) (json.RawMessage, error)

type activity struct {
	step instdomain.Step
	fn   activityFn
}

// Service dispatches named capabilities with uniform timing and error capture
type Service struct {
	acts map[string]activity
	log  logger.Logger
	now  func() time.Time
}

// NewRegistry constructs an empty invoker to be populated with register
func NewRegistry() *Service {
	return &Service{
		acts: make(map[string]activity),
		log:  *logger.Named("activities"),
		now:  time.Now,
	}
}

func (s *Service) register(name string, step instdomain.Step, fn activityFn) {
	s.acts[name] = activity{step: step, fn: fn}
}

// Invoke implements domain.InvokerPort
func (s *Service) Invoke(
	ctx context.Context,
	name string,
	in json.RawMessage,
) (json.RawMessage, domain.Result, error) {
	a, ok := s.acts[name]
	if !ok {
		return nil, domain.Result{}, perr.Configf("unknown capability %q", name)
	}

	start := s.now()
	out, err := a.fn(ctx, in)
	res := domain.Result{
		Step:      a.step,
		OK:        err == nil,
		LatencyMS: s.now().Sub(start).Milliseconds(),
	}
	if err != nil {
		res.Err = err.Error()
		s.log.Warn().Str("capability", name).Err(err).Msg("activity failed")
		return nil, res, perr.Wrapf(err, perr.ErrorCodeActivity, "%s failed", name)
	}
	return out, res, nil
}

func decode[T any](in json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(in, &v); err != nil {
		return v, perr.Wrapf(err, perr.ErrorCodeJSON, "decode activity input")
	}
	return v, nil
}

func encode(v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "encode activity output")
	}
	return b, nil
}
