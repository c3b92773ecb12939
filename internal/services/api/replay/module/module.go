// Package module wires the replay submission endpoint
package module

import (
	"retention/internal/modkit"
	"retention/internal/modkit/httpkit"
	replayhttp "retention/internal/services/api/replay/http"
	replaydomain "retention/internal/services/replay/domain"
)

// Ports consumed by the replay API module
type Ports struct {
	Submit replaydomain.SubmitPort
}

// Module implements the modkit.Module interface
type Module struct {
	deps  modkit.Deps
	built modkit.Built
}

// New constructs the replay API module
func New(deps modkit.Deps, p Ports, opts ...modkit.Option) *Module {
	m := &Module{deps: deps}
	m.built = modkit.Build(append([]modkit.Option{
		modkit.WithName("replay-api"),
		modkit.WithPorts(p),
		modkit.WithRegister(func(r httpkit.Router) {
			replayhttp.Register(r, replayhttp.Deps{Submit: p.Submit})
		}),
	}, opts...)...)
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.built.Name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.built.Ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Register(r)
}
