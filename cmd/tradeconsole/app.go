package main

import (
	"context"
	"fmt"

	"tradeconsole/config"
	"tradeconsole/internal/adapters/logger"
	"tradeconsole/internal/adapters/rest"
	"tradeconsole/internal/adapters/socket"
	"tradeconsole/internal/adapters/sqlite"
	"tradeconsole/internal/store"
	syncengine "tradeconsole/internal/sync"
)

// app bundles everything a command needs: the configuration, the wired
// transports and the synchronization engine around the shared store.
type app struct {
	cfg    *config.Config
	log    *logger.StdLogger
	store  *store.Store
	engine *syncengine.Engine
	cache  *sqlite.BarCache
}

// newApp loads configuration and wires the full stack. Commands that only
// issue one-shot requests still go through the engine's reconcilers so the
// store semantics (loading flag, error surface) stay uniform.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.NewStdLogger(cfg.LogLevel)

	api, err := rest.New(rest.Config{
		BaseURL:   cfg.BackendURL,
		Timeout:   cfg.HTTPTimeout,
		TokenPath: cfg.TokenPath,
		Logger:    log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize REST client: %w", err)
	}

	push, err := socket.New(socket.Config{
		URL:                  cfg.WSURL,
		Logger:               log,
		ReconnectDelay:       cfg.ReconnectDelay,
		MaxReconnectAttempts: cfg.MaxReconnectAttempts,
		HeartbeatInterval:    cfg.HeartbeatInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize push client: %w", err)
	}

	cache, err := sqlite.NewBarCache(sqlite.Config{
		DBPath: cfg.CacheDBPath,
		Logger: log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bar cache: %w", err)
	}

	st := store.New()
	eng := syncengine.NewEngine(api, push, cache, st, log, syncengine.Config{
		QuotePollInterval:  cfg.QuotePollInterval,
		HealthPollInterval: cfg.HealthPollInterval,
	})

	return &app{cfg: cfg, log: log, store: st, engine: eng, cache: cache}, nil
}

// close releases the local cache handle. The engine is only stopped by the
// commands that actually started it.
func (a *app) close() {
	if err := a.cache.Close(); err != nil {
		a.log.Error(context.Background(), err, "Error closing bar cache")
	}
}

// storeError surfaces the store's error field as a command error, so a
// failed pull turns into a non-zero exit.
func (a *app) storeError() error {
	if msg := a.store.Error(); msg != "" {
		return fmt.Errorf("%s", msg)
	}
	return nil
}
