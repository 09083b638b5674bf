package main

import (
	"context"
	"fmt"

	"github.com/shoushou-fitness/clubbot/internal/config"
	"github.com/shoushou-fitness/clubbot/internal/domain"
	"github.com/shoushou-fitness/clubbot/internal/handlers"
	"github.com/shoushou-fitness/clubbot/internal/metrics"
	"github.com/shoushou-fitness/clubbot/internal/render"
	"github.com/shoushou-fitness/clubbot/internal/router"
	"github.com/shoushou-fitness/clubbot/internal/services"
	"github.com/shoushou-fitness/clubbot/pkg/logging"
)

type closer func() error

// openGateway opens the configured dataset. A failure here is fatal.
func openGateway(ctx context.Context, cfg *config.Config, logger *logging.Logger) (domain.DataGateway, closer, error) {
	switch cfg.DataBackend {
	case config.BackendPostgres:
		gw, err := services.NewSQLGateway(ctx, cfg.DatabaseURL, cfg.Sheets)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("connected to PostgreSQL")
		return gw, gw.Close, nil
	case config.BackendSheets:
		gw, err := services.NewSheetsGateway(ctx, services.SheetsConfig{
			CredentialsJSON: cfg.GoogleCredentialsJSON,
			SpreadsheetID:   cfg.SpreadsheetID,
			SpreadsheetName: cfg.SpreadsheetName,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return gw, func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown data backend %q", cfg.DataBackend)
}

// openStateStore picks Redis when REDIS_URL is set, memory otherwise.
func openStateStore(ctx context.Context, cfg *config.Config, logger *logging.Logger) (domain.StateStore, closer, error) {
	if cfg.RedisURL != "" {
		store, err := services.NewRedisStateStore(ctx, cfg.RedisURL, cfg.StateTTL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using redis state store", "ttl", cfg.StateTTL.String())
		return store, store.Close, nil
	}
	store := services.NewMemoryStateStore(cfg.StateTTL)
	logger.Info("using in-memory state store", "ttl", cfg.StateTTL.String())
	return store, store.Close, nil
}

func newBot(cfg *config.Config, gateway domain.DataGateway, states domain.StateStore, m *metrics.BotMetrics, logger *logging.Logger) *handlers.BotHandler {
	return handlers.NewBotHandler(handlers.BotDeps{
		Router:            router.Default(),
		States:            states,
		Lookup:            services.NewLookupService(gateway, cfg.Sheets, m, logger),
		Renderer:          render.New(render.Options{PlaceholderImageURL: cfg.PlaceholderImageURL}),
		Metrics:           m,
		Logger:            logger,
		ReplyOnUnroutable: cfg.ReplyOnUnroutable,
	})
}
