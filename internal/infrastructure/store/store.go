// Package store opens the persistence backend selected by STORE_DRIVER.
package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/campusloc/locations-api/internal/core/ports"
	"github.com/campusloc/locations-api/internal/infrastructure/db/memory"
	"github.com/campusloc/locations-api/internal/infrastructure/db/mongo"
	"github.com/campusloc/locations-api/internal/infrastructure/db/postgres"
	"github.com/campusloc/locations-api/internal/pkg/config"
)

// Pinger reports backend reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store bundles the location and identity stores of one backend.
type Store struct {
	Driver    string
	Locations ports.LocationStore
	Identity  ports.IdentityProvisioner
	Health    Pinger

	migrate func(ctx context.Context) error
	close   func(ctx context.Context) error
}

// Open connects to the configured backend. It does not apply migrations.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Postgres.DSN, MaxConns: cfg.Postgres.MaxConns})
		if err != nil {
			return nil, err
		}
		locations := postgres.NewLocationStore(pool)
		log.Info().Str("driver", cfg.Store.Driver).Msg("store connected")
		return &Store{
			Driver:    cfg.Store.Driver,
			Locations: locations,
			Identity:  postgres.NewCredentialStore(pool),
			Health:    locations,
			migrate: func(ctx context.Context) error {
				return postgres.Migrate(ctx, pool, log)
			},
			close: func(context.Context) error {
				pool.Close()
				return nil
			},
		}, nil

	case config.DriverMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		locations := mongo.NewLocationStore(db)
		log.Info().Str("driver", cfg.Store.Driver).Str("db", cfg.Mongo.Database).Msg("store connected")
		return &Store{
			Driver:    cfg.Store.Driver,
			Locations: locations,
			Identity:  mongo.NewCredentialStore(db),
			Health:    locations,
			migrate: func(ctx context.Context) error {
				return mongo.EnsureIndexes(ctx, db)
			},
			close: client.Disconnect,
		}, nil

	case config.DriverMemory:
		return NewMemory(), nil

	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Store.Driver)
	}
}

// NewMemory returns an empty in-process store.
func NewMemory() *Store {
	locations := memory.NewLocationStore()
	return &Store{
		Driver:    config.DriverMemory,
		Locations: locations,
		Identity:  memory.NewCredentialStore(),
		Health:    locations,
		migrate:   func(context.Context) error { return nil },
		close:     func(context.Context) error { return nil },
	}
}

// Migrate brings the schema or indexes up to date.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.migrate(ctx); err != nil {
		return fmt.Errorf("store: migrate %s: %w", s.Driver, err)
	}
	return nil
}

// Close releases the backend connection.
func (s *Store) Close(ctx context.Context) error {
	return s.close(ctx)
}
