// Package service implements the event-sourced orchestration engine
package service

import (
	"context"
	"encoding/json"

	perr "retention/internal/platform/errors"
	"retention/internal/platform/logger"
	actdomain "retention/internal/services/activities/domain"
	instdomain "retention/internal/services/instances/domain"
)

// Config for the engine
type Config struct {
	// Retries is the number of re-attempts per activity after the first failure
	Retries int
}

// Engine sequences activity calls per instance and persists every transition
// the next action is always derived from the recorded step history, so a
// crashed run resumes without re-executing completed work
type Engine struct {
	store   instdomain.StorePort
	invoker actdomain.InvokerPort
	cfg     Config
	log     logger.Logger
}

// New constructs the engine
func New(store instdomain.StorePort, invoker actdomain.InvokerPort, cfg Config) *Engine {
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	return &Engine{
		store:   store,
		invoker: invoker,
		cfg:     cfg,
		log:     *logger.Named("engine"),
	}
}

// runResult is the terminal payload surfaced through the status gateway
type runResult struct {
	Processed   bool    `json:"processed"`
	LeadEmitted bool    `json:"lead_emitted"`
	Score       float64 `json:"score"`
	CardID      string  `json:"card_id,omitempty"`
}

// Start implements domain.EnginePort
func (e *Engine) Start(ctx context.Context, ev instdomain.EventSnapshot) (string, error) {
	id, err := e.store.Create(ctx, ev)
	if err != nil {
		return "", err
	}
	e.drive(ctx, id)
	return id, nil
}

// StartAsync implements domain.EnginePort
func (e *Engine) StartAsync(ctx context.Context, ev instdomain.EventSnapshot) (string, error) {
	id, err := e.store.Create(ctx, ev)
	if err != nil {
		return "", err
	}
	// detach from the request context, the run outlives the caller
	bg := context.WithoutCancel(ctx)
	go e.drive(bg, id)
	return id, nil
}

// Resume implements domain.EnginePort
func (e *Engine) Resume(ctx context.Context, id string) error {
	inst, err := e.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if inst.Terminal() {
		return nil
	}
	e.drive(ctx, id)
	return nil
}

// drive advances one instance until it reaches a terminal step
// every iteration re-reads the recorded history and derives the single next
// action from it; a run failure is recorded and ends the loop
func (e *Engine) drive(ctx context.Context, id string) {
	for {
		inst, err := e.store.Get(ctx, id)
		if err != nil {
			e.log.Error().Str("instance_id", id).Err(err).Msg("drive lost its instance")
			return
		}
		if inst.Terminal() {
			return
		}

		done, err := e.advance(ctx, inst)
		if err != nil {
			e.log.Error().
				Str("instance_id", id).
				Str("step", string(inst.CurrentStep)).
				Err(err).
				Msg("instance failed")
			return
		}
		if done {
			return
		}
	}
}

// advance performs exactly one transition for inst
// returns done=true when a terminal step was recorded
func (e *Engine) advance(ctx context.Context, inst instdomain.Instance) (bool, error) {
	switch inst.CurrentStep {
	case instdomain.StepStarted:
		in, err := json.Marshal(actdomain.TextMatchInput{Text: inst.Event.Text})
		if err != nil {
			return true, e.fail(ctx, inst.ID, instdomain.StepTextMatched, err)
		}
		return false, e.invoke(ctx, inst.ID, actdomain.NameTextMatch, in)

	case instdomain.StepTextMatched:
		in, err := json.Marshal(actdomain.FetchFeaturesInput{
			CustomerID: inst.Event.CustomerID,
			TS:         inst.Event.EventTS,
		})
		if err != nil {
			return true, e.fail(ctx, inst.ID, instdomain.StepFeaturesFetched, err)
		}
		return false, e.invoke(ctx, inst.ID, actdomain.NameFetchFeatures, in)

	case instdomain.StepFeaturesFetched:
		var matched actdomain.TextMatchOutput
		if err := stepOutput(inst, instdomain.StepTextMatched, &matched); err != nil {
			return true, e.fail(ctx, inst.ID, instdomain.StepEvaluated, err)
		}
		var fetched actdomain.FetchFeaturesOutput
		if err := stepOutput(inst, instdomain.StepFeaturesFetched, &fetched); err != nil {
			return true, e.fail(ctx, inst.ID, instdomain.StepEvaluated, err)
		}
		in, err := json.Marshal(actdomain.EvaluateInput{
			CustomerID: inst.Event.CustomerID,
			Hits:       matched.Hits,
			Features:   fetched.Features,
		})
		if err != nil {
			return true, e.fail(ctx, inst.ID, instdomain.StepEvaluated, err)
		}
		return false, e.invoke(ctx, inst.ID, actdomain.NameEvaluate, in)

	case instdomain.StepEvaluated:
		var eval actdomain.EvaluateOutput
		if err := stepOutput(inst, instdomain.StepEvaluated, &eval); err != nil {
			return true, e.fail(ctx, inst.ID, instdomain.StepCardWritten, err)
		}
		if !eval.ShouldEmit {
			return true, e.complete(ctx, inst.ID, runResult{Processed: true, Score: eval.Score})
		}
		var fetched actdomain.FetchFeaturesOutput
		if err := stepOutput(inst, instdomain.StepFeaturesFetched, &fetched); err != nil {
			return true, e.fail(ctx, inst.ID, instdomain.StepCardWritten, err)
		}
		in, err := json.Marshal(actdomain.PersistCardInput{
			InstanceID: inst.ID,
			CustomerID: inst.Event.CustomerID,
			NoteID:     inst.Event.NoteID,
			Eval:       eval,
			Features:   fetched.Features,
		})
		if err != nil {
			return true, e.fail(ctx, inst.ID, instdomain.StepCardWritten, err)
		}
		return false, e.invoke(ctx, inst.ID, actdomain.NamePersistCard, in)

	case instdomain.StepCardWritten:
		var eval actdomain.EvaluateOutput
		if err := stepOutput(inst, instdomain.StepEvaluated, &eval); err != nil {
			return true, e.fail(ctx, inst.ID, instdomain.StepCompleted, err)
		}
		var card actdomain.PersistCardOutput
		if err := stepOutput(inst, instdomain.StepCardWritten, &card); err != nil {
			return true, e.fail(ctx, inst.ID, instdomain.StepCompleted, err)
		}
		return true, e.complete(ctx, inst.ID, runResult{
			Processed:   true,
			LeadEmitted: true,
			Score:       eval.Score,
			CardID:      card.CardID,
		})

	default:
		return true, perr.Conflictf("instance %s in unexpected step %s", inst.ID, inst.CurrentStep)
	}
}

// invoke runs one activity with bounded retries and records its outcome
func (e *Engine) invoke(ctx context.Context, id, name string, in json.RawMessage) error {
	var (
		out json.RawMessage
		res actdomain.Result
		err error
	)
	for attempt := 0; attempt <= e.cfg.Retries; attempt++ {
		out, res, err = e.invoker.Invoke(ctx, name, in)
		if err == nil {
			break
		}
		if perr.CodeOf(err) == perr.ErrorCodeConfig {
			// a misconfigured capability will not heal on retry
			break
		}
		if attempt < e.cfg.Retries {
			e.log.Warn().
				Str("instance_id", id).
				Str("capability", name).
				Int("attempt", attempt+1).
				Err(err).
				Msg("activity retrying")
		}
	}
	if err != nil {
		return e.failStep(ctx, id, res, err)
	}

	return e.store.RecordStep(ctx, id, instdomain.StepWrite{
		Step:      res.Step,
		OK:        true,
		Payload:   out,
		LatencyMS: res.LatencyMS,
	})
}

// complete records the terminal COMPLETED step with the run result
func (e *Engine) complete(ctx context.Context, id string, r runResult) error {
	result, err := json.Marshal(r)
	if err != nil {
		return e.fail(ctx, id, instdomain.StepCompleted, err)
	}
	return e.store.RecordStep(ctx, id, instdomain.StepWrite{
		Step:   instdomain.StepCompleted,
		OK:     true,
		Result: result,
	})
}

// fail marks the instance FAILED, naming the step that was being attempted
func (e *Engine) fail(ctx context.Context, id string, attempted instdomain.Step, cause error) error {
	if err := e.store.RecordStep(ctx, id, instdomain.StepWrite{
		Step:        instdomain.StepFailed,
		ErrorDetail: cause.Error(),
		FailingStep: attempted,
	}); err != nil {
		return err
	}
	return cause
}

func (e *Engine) failStep(ctx context.Context, id string, res actdomain.Result, cause error) error {
	detail := res.Err
	if detail == "" {
		detail = cause.Error()
	}
	step := res.Step
	if step == "" {
		step = instdomain.StepFailed
	}
	if err := e.store.RecordStep(ctx, id, instdomain.StepWrite{
		Step:        instdomain.StepFailed,
		ErrorDetail: detail,
		LatencyMS:   res.LatencyMS,
		FailingStep: step,
	}); err != nil {
		return err
	}
	return cause
}

// stepOutput decodes the recorded payload of a completed step
func stepOutput(inst instdomain.Instance, step instdomain.Step, v any) error {
	for _, rec := range inst.Steps {
		if rec.Step != step || !rec.OK {
			continue
		}
		if err := json.Unmarshal(rec.Payload, v); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeJSON, "decode %s payload", step)
		}
		return nil
	}
	return perr.Conflictf("instance %s has no recorded %s output", inst.ID, step)
}
