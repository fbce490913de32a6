package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusloc/locations-api/internal/infrastructure/store"
	"github.com/campusloc/locations-api/internal/pkg/config"
	"github.com/campusloc/locations-api/pkg/logger"
)

const connectTimeout = 15 * time.Second

// bootstrap loads configuration, initialises the logger and opens the store.
func bootstrap(ctx context.Context) (*config.Config, zerolog.Logger, *store.Store, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "locations-api",
	})

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	st, err := store.Open(connectCtx, cfg, log)
	if err != nil {
		return nil, log, nil, err
	}
	return cfg, log, st, nil
}
