// Package module wires the lead card read endpoint
package module

import (
	"retention/internal/modkit"
	"retention/internal/modkit/httpkit"
	cardhttp "retention/internal/services/api/leadcards/http"
	carddomain "retention/internal/services/leadcards/domain"
)

// Ports consumed by the leadcards API module
type Ports struct {
	Read carddomain.ReadPort
}

// Module implements the modkit.Module interface
type Module struct {
	deps  modkit.Deps
	built modkit.Built
}

// New constructs the leadcards API module
func New(deps modkit.Deps, p Ports, opts ...modkit.Option) *Module {
	m := &Module{deps: deps}
	m.built = modkit.Build(append([]modkit.Option{
		modkit.WithName("leadcards-api"),
		modkit.WithPorts(p),
		modkit.WithRegister(func(r httpkit.Router) {
			cardhttp.Register(r, cardhttp.Deps{Read: p.Read})
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
