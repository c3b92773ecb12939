// Package module wires the live evaluation endpoint
package module

import (
	"retention/internal/modkit"
	"retention/internal/modkit/httpkit"
	evalhttp "retention/internal/services/api/evaluate/http"
	evdomain "retention/internal/services/events/domain"
	orchdomain "retention/internal/services/orchestrator/domain"
)

// Ports consumed by the evaluate module
type Ports struct {
	Engine  orchdomain.EnginePort
	Archive evdomain.ArchivePort
}

// Module implements the modkit.Module interface
type Module struct {
	deps  modkit.Deps
	built modkit.Built
}

// New constructs the evaluate module
func New(deps modkit.Deps, p Ports, opts ...modkit.Option) *Module {
	m := &Module{deps: deps}
	m.built = modkit.Build(append([]modkit.Option{
		modkit.WithName("evaluate"),
		modkit.WithPorts(p),
		modkit.WithRegister(func(r httpkit.Router) {
			evalhttp.Register(r, evalhttp.Deps{Engine: p.Engine, Archive: p.Archive})
		}),
	}, opts...)...)
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.built.Name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.built.Ports }

// MountRoutes satisfies modkit.Module
// evaluate mounts at the API root, it owns a single verb
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Register(r)
}
