// Package module wires the status gateway
package module

import (
	"retention/internal/modkit"
	"retention/internal/modkit/httpkit"
	statushttp "retention/internal/services/api/status/http"
	instdomain "retention/internal/services/instances/domain"
)

// Ports consumed by the status module
type Ports struct {
	Store instdomain.StorePort
}

// Module implements the modkit.Module interface
type Module struct {
	deps  modkit.Deps
	built modkit.Built
}

// New constructs the status module
func New(deps modkit.Deps, p Ports, opts ...modkit.Option) *Module {
	m := &Module{deps: deps}
	m.built = modkit.Build(append([]modkit.Option{
		modkit.WithName("status"),
		modkit.WithPorts(p),
		modkit.WithRegister(func(r httpkit.Router) {
			statushttp.Register(r, statushttp.Deps{Store: p.Store})
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
