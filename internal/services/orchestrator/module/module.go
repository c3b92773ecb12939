// Package module wires the orchestration engine
package module

import (
	"retention/internal/modkit"
	"retention/internal/modkit/httpkit"
	actdomain "retention/internal/services/activities/domain"
	instdomain "retention/internal/services/instances/domain"
	"retention/internal/services/orchestrator/domain"
	"retention/internal/services/orchestrator/service"
)

// Ports exposed by the orchestrator module
type Ports struct {
	Engine domain.EnginePort
}

// Module implements the orchestrator service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new orchestrator module
func New(deps modkit.Deps, store instdomain.StorePort, invoker actdomain.InvokerPort) *Module {
	opts := FromConfig(deps.Cfg)
	eng := service.New(store, invoker, service.Config{Retries: opts.Retries})

	m := &Module{deps: deps}
	m.ports = Ports{Engine: eng}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "orchestrator" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
