// Package module wires the lead card service
package module

import (
	"retention/internal/modkit"
	"retention/internal/modkit/httpkit"
	"retention/internal/services/leadcards/domain"
	"retention/internal/services/leadcards/repo"
	"retention/internal/services/leadcards/service"
)

// Ports exposed by the leadcards module
type Ports struct {
	Write domain.WritePort
	Read  domain.ReadPort
}

// Module implements the leadcards service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new leadcards module
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)
	svc := service.New(deps.PG, repo.NewPG(), service.Config{MaxList: opts.MaxList})

	m := &Module{deps: deps}
	m.ports = Ports{Write: svc, Read: svc}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "leadcards" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
