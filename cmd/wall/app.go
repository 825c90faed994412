package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/Veraticus/the-wall-must-hold/internal/config"
	"github.com/Veraticus/the-wall-must-hold/internal/deposit"
	"github.com/Veraticus/the-wall-must-hold/internal/engine"
	"github.com/Veraticus/the-wall-must-hold/internal/storage"
	"github.com/Veraticus/the-wall-must-hold/internal/threshold"
)

// app bundles everything a command needs once config is loaded.
type app struct {
	cfg        *config.Config
	store      *storage.SQLiteStorage
	thresholds *threshold.Store
	engine     *engine.Engine
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

// openApp loads configuration, opens and migrates the database, and wires
// the threshold store, classifier and engine.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	fallback := cfg.FallbackJSON
	thresholds := threshold.NewStore(
		[]threshold.Provider{
			threshold.FromSource(store, cfg.SourceTimeout),
			threshold.FromEnvJSON(func() string { return fallback }),
		},
		threshold.WithTTL(cfg.CacheTTL),
		threshold.WithWriter(store),
	)

	classifier := deposit.NewClassifier(store,
		deposit.WithHistoryTimeout(cfg.HistoryTimeout),
		deposit.WithLookbackMonths(cfg.LookbackMonths))

	slog.Debug("Opened application",
		"database", cfg.DatabasePath,
		"user_id", cfg.Profile.UserID)

	return &app{
		cfg:        cfg,
		store:      store,
		thresholds: thresholds,
		engine:     engine.New(thresholds, classifier, store, store),
	}, nil
}
