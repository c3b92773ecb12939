// Package module wires meta endpoints into the API
package module

import (
	"time"

	"retention/internal/core/ruleset"
	"retention/internal/modkit"
	"retention/internal/modkit/httpkit"
	metahttp "retention/internal/services/api/meta/http"
)

// Deps carry what the meta endpoints report on
type Deps struct {
	ServiceName string
	Rules       *ruleset.Holder
	MatcherMode string
}

// Module implements the modkit.Module interface
type Module struct {
	deps      modkit.Deps
	built     modkit.Built
	startedAt time.Time
}

// New constructs a meta module
func New(deps modkit.Deps, md Deps, opts ...modkit.Option) *Module {
	m := &Module{
		deps:      deps,
		startedAt: time.Now(),
	}
	m.built = modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
		modkit.WithRegister(func(r httpkit.Router) {
			metahttp.Register(r, metahttp.Deps{
				ServiceName: md.ServiceName,
				StartedAt:   m.startedAt,
				PG:          deps.PG,
				CH:          deps.CH,
				Rules:       md.Rules,
				MatcherMode: md.MatcherMode,
			})
		}),
	}, opts...)...)
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.built.Name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return nil }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.built.Prefix, m.built.Mw, m.built.Register)
}
