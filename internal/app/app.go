// Package app assembles the services shared by the HTTP server and the
// command line tool.
package app

import (
	"context"
	"fmt"

	"forecast-go/internal/api"
	"forecast-go/internal/archive"
	"forecast-go/internal/config"
	"forecast-go/internal/dataset"
	"forecast-go/internal/forecast"
	"forecast-go/internal/llm"
	"forecast-go/internal/service"
	"forecast-go/internal/state"

	"github.com/rs/zerolog/log"
)

type App struct {
	Config   *config.Config
	Source   dataset.Source
	Resolver *forecast.Resolver
	Outlook  *service.OutlookService
	Personal *service.PersonalService
	Advisors *service.AdvisorHolder
	State    *state.AppState
	Archive  *archive.Store // nil unless a ClickHouse host is configured

	closers []func() error
}

// New validates the configuration and builds every service. The run archive
// is only opened when withArchive is set and a ClickHouse host is configured.
func New(ctx context.Context, cfg *config.Config, withArchive bool) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{Config: cfg}

	if cfg.Postgres.DSN != "" {
		pg, err := dataset.NewPostgresSource(ctx, dataset.PostgresConfig{DSN: cfg.Postgres.DSN})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, pg.Close)
		a.Source = pg
		log.Info().Msg("📦 Datasets loaded from PostgreSQL")
	} else {
		a.Source = dataset.NewFileSource(cfg.DataDir)
		log.Info().Str("dir", cfg.DataDir).Msg("📁 Datasets loaded from directory")
	}

	indicators := service.DefaultIndicators()
	if cfg.Indicators != "" {
		loaded, err := service.LoadIndicators(cfg.Indicators)
		if err != nil {
			a.Close()
			return nil, err
		}
		indicators = loaded
	}

	settings := state.AdvisorSettings{
		Provider: cfg.Advisor.Provider,
		BaseURL:  cfg.Advisor.BaseURL,
		Model:    cfg.Advisor.Model,
	}
	advisor, err := llm.New(settings, cfg.Advisor.APIKey)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.State = state.NewAppState(settings)
	a.Advisors = service.NewAdvisorHolder(advisor)

	a.Resolver = forecast.NewResolver(a.Source)
	a.Outlook = service.NewOutlookService(a.Resolver, indicators,
		service.WithWorkers(cfg.Workers),
		service.WithFitTimeout(cfg.FitTimeout),
		service.WithAdvisors(a.Advisors),
	)
	a.Personal = service.NewPersonalService(a.Advisors)

	if withArchive && cfg.ArchiveEnabled() {
		store, err := archive.NewStore(ctx, &archive.Config{
			Host:     cfg.ClickHouse.Host,
			Port:     cfg.ClickHouse.Port,
			Database: cfg.ClickHouse.Database,
			Username: cfg.ClickHouse.Username,
			Password: cfg.ClickHouse.Password,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect clickhouse: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		if err := store.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("archive schema: %w", err)
		}
		a.Archive = store
		log.Info().Str("host", cfg.ClickHouse.Host).Msg("🗄️  Run archive enabled")
	}

	return a, nil
}

// Handler returns the HTTP handler bound to the app's services.
func (a *App) Handler() *api.Handler {
	h := &api.Handler{
		Resolver: a.Resolver,
		Outlook:  a.Outlook,
		Personal: a.Personal,
		Advisors: a.Advisors,
		State:    a.State,
		APIKey:   a.Config.Advisor.APIKey,
	}
	if a.Archive != nil {
		h.Archive = a.Archive
	}
	if a.Config.Postgres.DSN == "" {
		h.DataDir = a.Config.DataDir
	}
	return h
}

// Close releases database connections in reverse order of opening.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
