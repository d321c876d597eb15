package cli

import (
	"context"
	"fmt"
	"log/slog"

	"eventsync/internal/adapters"
	"eventsync/internal/config"
	"eventsync/internal/engine"
	"eventsync/internal/metrics"
	"eventsync/internal/orchestrator"
	"eventsync/internal/scheduler"
	"eventsync/internal/store"
)

// App bundles the wired components behind a command.
type App struct {
	Config  *config.Config
	Log     *slog.Logger
	Store   store.Store
	Orch    *orchestrator.Orchestrator
	Sched   *scheduler.Scheduler
	Metrics *metrics.Metrics
}

// buildApp loads configuration and wires the full pipeline. With no DSN
// configured the in-memory store is used, which makes a bare binary run
// safe for demos.
func buildApp(ctx context.Context, opts *RootOptions) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	log := newLogger(opts.Verbose)

	var st store.Store
	if cfg.Store.DSN != "" {
		pg, err := store.OpenPostgres(ctx, cfg.Store.DSN, cfg.Store.Schema, cfg.Store.MaxConns)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		if err := pg.Init(ctx); err != nil {
			pg.Close()
			return nil, fmt.Errorf("init store: %w", err)
		}
		st = pg
	} else {
		log.Warn("no PG_DSN configured, using in-memory store")
		st = store.NewMemory()
	}

	adapterList, err := adapters.Build(cfg, log)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("build adapters: %w", err)
	}

	m := metrics.New()
	syncer := engine.NewSynchronizer(st, log)
	orch := orchestrator.New(adapterList, syncer, st, m, log)
	sched := scheduler.New(orch, cfg.Scheduler, log)

	return &App{
		Config:  cfg,
		Log:     log,
		Store:   st,
		Orch:    orch,
		Sched:   sched,
		Metrics: m,
	}, nil
}
