// Package module wires the replay scheduler and ingestion queue
package module

import (
	"retention/internal/modkit"
	"retention/internal/modkit/httpkit"
	"retention/internal/platform/clock"
	evdomain "retention/internal/services/events/domain"
	orchdomain "retention/internal/services/orchestrator/domain"
	"retention/internal/services/replay/domain"
	"retention/internal/services/replay/service"
)

// Ports exposed by the replay module
type Ports struct {
	Submit domain.SubmitPort
	Runner domain.RunnerPort
}

// Module implements the replay service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new replay module
func New(deps modkit.Deps, archive evdomain.ArchivePort, engine orchdomain.EnginePort) *Module {
	opts := FromConfig(deps.Cfg)
	svc := service.New(archive, engine, clock.Real{}, service.Config{
		MaxInflight: opts.MaxInflight,
	})

	m := &Module{deps: deps}
	m.ports = Ports{Submit: svc, Runner: svc}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "replay" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
