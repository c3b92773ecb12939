package service

import (
	"context"
	"encoding/json"

	"retention/internal/core/ruleset"
	"retention/internal/core/scoring"
	"retention/internal/core/scrub"
	perr "retention/internal/platform/errors"
	"retention/internal/services/activities/domain"
	featdomain "retention/internal/services/features/domain"
	instdomain "retention/internal/services/instances/domain"
	carddomain "retention/internal/services/leadcards/domain"
	matchdomain "retention/internal/services/matcher/domain"
)

// Ports are the capabilities the invoker fans out to
type Ports struct {
	Match    matchdomain.MatchPort
	Features featdomain.FetchPort
	Cards    carddomain.WritePort
	Rules    *ruleset.Holder

	// AgentVersion is stamped onto every emitted lead card
	AgentVersion string
}

// NewInvoker builds the standard four-capability registry
func NewInvoker(p Ports) (*Service, error) {
	if p.Rules == nil {
		return nil, perr.Configf("activity invoker requires a ruleset holder")
	}

	s := NewRegistry()
	s.register(domain.NameTextMatch, instdomain.StepTextMatched, textMatch(p))
	s.register(domain.NameFetchFeatures, instdomain.StepFeaturesFetched, fetchFeatures(p))
	s.register(domain.NameEvaluate, instdomain.StepEvaluated, evaluate(p))
	s.register(domain.NamePersistCard, instdomain.StepCardWritten, persistCard(p))
	return s, nil
}

// textMatch scrubs PII out of the note before any matcher sees it
// the scrubbed text is recorded so evidence never leaks raw contact details
func textMatch(p Ports) activityFn {
	return func(ctx context.Context, raw json.RawMessage) (json.RawMessage, error) {
		in, err := decode[domain.TextMatchInput](raw)
		if err != nil {
			return nil, err
		}
		if p.Match == nil {
			return nil, perr.Configf("no matcher configured")
		}

		scrubbed := scrub.Text(in.Text)
		hits, err := p.Match.Match(ctx, scrubbed, p.Rules.Current().Catalog())
		if err != nil {
			return nil, err
		}
		return encode(domain.TextMatchOutput{ScrubbedText: scrubbed, Hits: hits})
	}
}

func fetchFeatures(p Ports) activityFn {
	return func(ctx context.Context, raw json.RawMessage) (json.RawMessage, error) {
		in, err := decode[domain.FetchFeaturesInput](raw)
		if err != nil {
			return nil, err
		}
		if p.Features == nil {
			return nil, perr.Configf("no feature source configured")
		}

		f, err := p.Features.Fetch(ctx, in.CustomerID, in.TS)
		if err != nil {
			return nil, err
		}
		return encode(domain.FetchFeaturesOutput{Features: f})
	}
}

func evaluate(p Ports) activityFn {
	return func(_ context.Context, raw json.RawMessage) (json.RawMessage, error) {
		in, err := decode[domain.EvaluateInput](raw)
		if err != nil {
			return nil, err
		}

		rs := p.Rules.Current()
		outcome := scoring.Score(rs, in.Hits, in.Features)
		return encode(domain.EvaluateOutput{
			Score:          outcome.Score,
			Hits:           outcome.Hits,
			Explanation:    outcome.Explanation,
			ShouldEmit:     outcome.Score >= rs.Threshold,
			Threshold:      rs.Threshold,
			RulesetVersion: rs.Version,
		})
	}
}

func persistCard(p Ports) activityFn {
	return func(ctx context.Context, raw json.RawMessage) (json.RawMessage, error) {
		in, err := decode[domain.PersistCardInput](raw)
		if err != nil {
			return nil, err
		}
		if p.Cards == nil {
			return nil, perr.Configf("no card sink configured")
		}

		hits, err := json.Marshal(in.Eval.Hits)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "encode rule hits")
		}
		structured, err := json.Marshal(in.Features)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "encode structured snapshot")
		}

		id, err := p.Cards.Write(ctx, carddomain.Card{
			InstanceID:     in.InstanceID,
			CustomerID:     in.CustomerID,
			NoteID:         in.NoteID,
			Score:          in.Eval.Score,
			RuleHits:       hits,
			Structured:     structured,
			Explanation:    in.Eval.Explanation,
			AgentVersion:   p.AgentVersion,
			RulesetVersion: in.Eval.RulesetVersion,
		})
		if err != nil {
			return nil, err
		}
		return encode(domain.PersistCardOutput{CardID: id})
	}
}
