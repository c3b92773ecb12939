// Package module wires the text matcher behind its mode switch
package module

import (
	"retention/internal/modkit"
	"retention/internal/modkit/httpkit"
	"retention/internal/services/matcher/domain"
	"retention/internal/services/matcher/service"
)

// Ports exposed by the matcher module
type Ports struct {
	Match domain.MatchPort

	// Mode is surfaced so meta can report which matcher is active
	Mode string
}

// Module implements the matcher service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new matcher module
func New(deps modkit.Deps, guard domain.Guard) *Module {
	opts := FromConfig(deps.Cfg)

	var match domain.MatchPort
	switch opts.Mode {
	case "remote":
		match = service.NewRemote(service.RemoteOptions{
			URL:        opts.URL,
			Timeout:    opts.Timeout,
			MaxRetries: opts.MaxRetries,
			RetryBase:  opts.RetryBase,
		}, guard)
	default:
		match = service.NewLocal(guard)
	}

	m := &Module{deps: deps}
	m.ports = Ports{Match: match, Mode: opts.Mode}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "matcher" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
