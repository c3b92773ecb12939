// Package module wires the instance store service
package module

import (
	"retention/internal/modkit"
	"retention/internal/modkit/httpkit"
	"retention/internal/services/instances/domain"
	"retention/internal/services/instances/repo"
	"retention/internal/services/instances/service"
)

// Ports exposed by the instances module
type Ports struct {
	Store domain.StorePort
}

// Module implements the instances service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new instances module
// the memory driver keeps single process runs and tests off Postgres
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	var store domain.StorePort
	if opts.Driver == "memory" || deps.PG == nil {
		store = repo.NewMemory()
	} else {
		store = service.New(deps.PG, repo.NewPG())
	}

	m := &Module{deps: deps}
	m.ports = Ports{Store: store}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "instances" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
