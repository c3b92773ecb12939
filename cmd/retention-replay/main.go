package main

import (
	"context"
	"flag"
	"time"

	"retention/internal/core/ruleset"
	"retention/internal/core/version"
	"retention/internal/modkit"
	"retention/internal/modkit/module"
	"retention/internal/platform/config"
	"retention/internal/platform/logger"
	"retention/internal/platform/store"

	activitiesmod "retention/internal/services/activities/module"
	eventsmod "retention/internal/services/events/module"
	featuresmod "retention/internal/services/features/module"
	instancesmod "retention/internal/services/instances/module"
	cardsmod "retention/internal/services/leadcards/module"
	matcherdomain "retention/internal/services/matcher/domain"
	matchermod "retention/internal/services/matcher/module"
	orchmod "retention/internal/services/orchestrator/module"
	replaydomain "retention/internal/services/replay/domain"
	replaymod "retention/internal/services/replay/module"
)

func main() {
	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")

	l := logger.Get()
	st, err := store.Open(context.Background(), store.Config{
		AppName: "retention",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", true),
		},
		CH: store.CHConfig{
			Enabled: true,
			URL:     chCfg.MustString("DBURL"),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	var (
		fFrom     = flag.String("from", "", "UTC window start, RFC3339")
		fTo       = flag.String("to", "", "UTC window end, RFC3339")
		fFactor   = flag.Float64("factor", replaydomain.DefaultFactor, "time compression factor")
		fBatch    = flag.Int("batch", replaydomain.DefaultBatch, "archive fetch batch size")
		fInflight = flag.Int("max-inflight", replaydomain.DefaultMaxInflight, "max concurrent instance starts")
		fDryRun   = flag.Bool("dry-run", false, "pace through the window without starting instances")
		fRules    = flag.String("rules", "", "path to a ruleset document, embedded rules when empty")
	)
	flag.Parse()

	if *fFrom == "" || *fTo == "" {
		l.Panic().Msg("must provide -from and -to")
	}
	from, err := time.Parse(time.RFC3339, *fFrom)
	if err != nil {
		l.Panic().Err(err).Msg("bad -from")
	}
	to, err := time.Parse(time.RFC3339, *fTo)
	if err != nil {
		l.Panic().Err(err).Msg("bad -to")
	}
	if !to.After(from) {
		l.Panic().Str("from", from.String()).Str("to", to.String()).Msg("-to not after -from")
	}

	rules, err := loadRules(*fRules)
	if err != nil {
		l.Panic().Err(err).Msg("ruleset load failed")
	}
	guard := matcherdomain.Guard{
		ConfidenceFloor: rules.Current().ConfidenceFloor,
		EvidenceMinLen:  rules.Current().EvidenceMinLen,
	}

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		CH:  st.CH,
		Log: *l,
	}

	events := eventsmod.New(deps)
	instances := instancesmod.New(deps)
	features := featuresmod.New(deps)
	matcher := matchermod.New(deps, guard)
	cards := cardsmod.New(deps)

	activities, err := activitiesmod.New(deps, activitiesmod.Wiring{
		Match:        module.MustPortsOf[matchermod.Ports](matcher).Match,
		Features:     module.MustPortsOf[featuresmod.Ports](features).Fetch,
		Cards:        module.MustPortsOf[cardsmod.Ports](cards).Write,
		Rules:        rules,
		AgentVersion: version.Info().Version,
	})
	if err != nil {
		l.Panic().Err(err).Msg("activities wiring failed")
	}

	orch := orchmod.New(deps, module.MustPortsOf[instancesmod.Ports](instances).Store,
		module.MustPortsOf[activitiesmod.Ports](activities).Invoker)

	replay := replaymod.New(deps,
		module.MustPortsOf[eventsmod.Ports](events).Archive,
		module.MustPortsOf[orchmod.Ports](orch).Engine)

	for _, m := range []module.Module{events, instances, features, matcher, cards, activities, orch, replay} {
		module.Register(m.Name(), m.Ports())
	}

	job := replaydomain.Job{
		From:        from,
		To:          to,
		Factor:      *fFactor,
		Batch:       *fBatch,
		MaxInflight: *fInflight,
		DryRun:      *fDryRun,
	}.WithDefaults()

	runner := module.MustPortsOf[replaymod.Ports](replay).Runner
	if err := runner.RunOnce(context.Background(), job); err != nil {
		l.Fatal().Err(err).Msg("replay failed")
	}
	l.Info().
		Time("from", from).
		Time("to", to).
		Float64("factor", job.Factor).
		Bool("dry_run", job.DryRun).
		Msg("replay finished")
}

func loadRules(path string) (*ruleset.Holder, error) {
	if path != "" {
		return ruleset.NewHolderFromFile(path)
	}
	rs, err := ruleset.Load()
	if err != nil {
		return nil, err
	}
	return ruleset.NewHolder(rs), nil
}
