package main

import (
	"context"
	"net/http"

	"water-admin/internal/backend"
	"water-admin/internal/cache"
	"water-admin/internal/config"
	"water-admin/internal/logger"
	"water-admin/internal/timeutil"
)

// setup loads config, installs the logger and business time zone.
func setup() (*config.Config, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, err
	}
	if err := logger.Setup(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}); err != nil {
		return nil, err
	}
	loc, err := timeutil.LoadZone(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	timeutil.SetLocation(loc)
	return cfg, nil
}

// openCache connects the response cache when enabled. A Redis outage at
// startup disables caching instead of failing.
func openCache(ctx context.Context, cfg *config.Config) *cache.ResponseCache {
	log := logger.WithComponent("cache")
	if !cfg.Cache.Enabled {
		log.Info().Msg("response cache disabled")
		return nil
	}
	client, err := cache.Connect(ctx, cache.Options{
		Addr:     cfg.Cache.Addr,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
	})
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Cache.Addr).Msg("redis unavailable, running without response cache")
		return nil
	}
	log.Info().Str("addr", cfg.Cache.Addr).Dur("ttl", cfg.CacheTTL()).Msg("response cache connected")
	return cache.NewResponseCache(client, cfg.CacheTTL())
}

func newBackend(cfg *config.Config, rc *cache.ResponseCache) (*backend.Client, error) {
	opts := backend.Options{
		BaseURL:    cfg.Backend.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.BackendTimeout()},
		UserAgent:  cfg.Backend.UserAgent,
	}
	if rc != nil {
		opts.Cache = rc
	}
	return backend.NewClient(opts)
}
