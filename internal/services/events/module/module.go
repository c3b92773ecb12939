// Package module wires the events archive service
package module

import (
	"retention/internal/modkit"
	"retention/internal/modkit/httpkit"
	"retention/internal/services/events/domain"
	"retention/internal/services/events/repo"
	"retention/internal/services/events/service"
)

// Ports exposed by the events module
type Ports struct {
	Archive domain.ArchivePort
}

// Module implements the events service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new events module
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	svc := service.New(repo.NewCH(deps.CH), service.Config{
		MaxBatch: opts.MaxBatch,
	})

	m := &Module{deps: deps}
	m.ports = Ports{Archive: svc}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "events" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
