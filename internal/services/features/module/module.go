// Package module wires the feature fetch service
package module

import (
	"retention/internal/modkit"
	"retention/internal/modkit/httpkit"
	"retention/internal/services/features/domain"
	"retention/internal/services/features/repo"
	"retention/internal/services/features/service"
)

// Ports exposed by the features module
type Ports struct {
	Fetch domain.FetchPort
}

// Module implements the features service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new features module
func New(deps modkit.Deps) *Module {
	svc := service.New(deps.PG, repo.NewPG())

	m := &Module{deps: deps}
	m.ports = Ports{Fetch: svc}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "features" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
