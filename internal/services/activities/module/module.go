// Package module wires the activity invoker from the sibling module ports
package module

import (
	"retention/internal/core/ruleset"
	"retention/internal/modkit"
	"retention/internal/modkit/httpkit"
	"retention/internal/services/activities/domain"
	"retention/internal/services/activities/service"
	featdomain "retention/internal/services/features/domain"
	carddomain "retention/internal/services/leadcards/domain"
	matchdomain "retention/internal/services/matcher/domain"
)

// Ports exposed by the activities module
type Ports struct {
	Invoker domain.InvokerPort
}

// Wiring names the cross-module capabilities the invoker needs
type Wiring struct {
	Match        matchdomain.MatchPort
	Features     featdomain.FetchPort
	Cards        carddomain.WritePort
	Rules        *ruleset.Holder
	AgentVersion string
}

// Module implements the activities service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new activities module
// invalid wiring is fatal, the engine cannot accept work without it
func New(deps modkit.Deps, w Wiring) (*Module, error) {
	inv, err := service.NewInvoker(service.Ports{
		Match:        w.Match,
		Features:     w.Features,
		Cards:        w.Cards,
		Rules:        w.Rules,
		AgentVersion: w.AgentVersion,
	})
	if err != nil {
		return nil, err
	}

	m := &Module{deps: deps}
	m.ports = Ports{Invoker: inv}
	return m, nil
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "activities" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
