// Package api composes the HTTP API and the worker modules behind it
package api

import (
	"retention/internal/core/ruleset"
	"retention/internal/core/version"
	"retention/internal/platform/config"
	"retention/internal/platform/logger"
	phttp "retention/internal/platform/net/http"
	"retention/internal/platform/store"

	"retention/internal/modkit"
	"retention/internal/modkit/httpkit"
	"retention/internal/modkit/module"
	"retention/internal/modkit/swaggerkit"

	evalmod "retention/internal/services/api/evaluate/module"
	cardapimod "retention/internal/services/api/leadcards/module"
	metamod "retention/internal/services/api/meta/module"
	replayapimod "retention/internal/services/api/replay/module"
	statusmod "retention/internal/services/api/status/module"

	activitiesmod "retention/internal/services/activities/module"
	eventsmod "retention/internal/services/events/module"
	featuresmod "retention/internal/services/features/module"
	instancesmod "retention/internal/services/instances/module"
	cardsmod "retention/internal/services/leadcards/module"
	matcherdomain "retention/internal/services/matcher/domain"
	matchermod "retention/internal/services/matcher/module"
	orchmod "retention/internal/services/orchestrator/module"
	replaymod "retention/internal/services/replay/module"

	replaydomain "retention/internal/services/replay/domain"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Ports are handles the process owner needs beyond routing
type Ports struct {
	// ReplayRunner must be driven by a goroutine for the process lifetime
	ReplayRunner replaydomain.RunnerPort
}

// Mount wires all modules and mounts the versioned API onto r
func Mount(r phttp.Router, opt Options) (Ports, error) {
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		CH:  opt.Store.CH,
	}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}

	// the ruleset is explicit engine input, a broken document is fatal
	rules, err := loadRules(opt.Config)
	if err != nil {
		return Ports{}, err
	}
	guard := matcherdomain.Guard{
		ConfidenceFloor: rules.Current().ConfidenceFloor,
		EvidenceMinLen:  rules.Current().EvidenceMinLen,
	}

	// worker verticals first, the API modules borrow their ports
	events := eventsmod.New(deps)
	instances := instancesmod.New(deps)
	features := featuresmod.New(deps)
	matcher := matchermod.New(deps, guard)
	cards := cardsmod.New(deps)

	archive := module.MustPortsOf[eventsmod.Ports](events).Archive
	storePort := module.MustPortsOf[instancesmod.Ports](instances).Store
	matcherPorts := module.MustPortsOf[matchermod.Ports](matcher)

	activities, err := activitiesmod.New(deps, activitiesmod.Wiring{
		Match:        matcherPorts.Match,
		Features:     module.MustPortsOf[featuresmod.Ports](features).Fetch,
		Cards:        module.MustPortsOf[cardsmod.Ports](cards).Write,
		Rules:        rules,
		AgentVersion: version.Info().Version,
	})
	if err != nil {
		return Ports{}, err
	}

	orch := orchmod.New(deps, storePort, module.MustPortsOf[activitiesmod.Ports](activities).Invoker)
	engine := module.MustPortsOf[orchmod.Ports](orch).Engine

	replay := replaymod.New(deps, archive, engine)
	replayPorts := module.MustPortsOf[replaymod.Ports](replay)

	mods := []module.Module{
		events, instances, features, matcher, cards, activities, orch, replay,
		metamod.New(deps, metamod.Deps{
			ServiceName: version.Info().Service,
			Rules:       rules,
			MatcherMode: matcherPorts.Mode,
		}),
		evalmod.New(deps, evalmod.Ports{Engine: engine, Archive: archive}),
		replayapimod.New(deps, replayapimod.Ports{Submit: replayPorts.Submit}),
		statusmod.New(deps, statusmod.Ports{Store: storePort}),
		cardapimod.New(deps, cardapimod.Ports{Read: module.MustPortsOf[cardsmod.Ports](cards).Read}),
	}

	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})

	return Ports{ReplayRunner: replayPorts.Runner}, nil
}

// loadRules honors an operator override path, defaulting to the embedded document
func loadRules(cfg config.Conf) (*ruleset.Holder, error) {
	path := cfg.Prefix("CORE_ENGINE_").MayString("RULES_PATH", "")
	if path != "" {
		return ruleset.NewHolderFromFile(path)
	}
	rs, err := ruleset.Load()
	if err != nil {
		return nil, err
	}
	return ruleset.NewHolder(rs), nil
}
