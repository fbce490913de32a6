package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/campusloc/locations-api/internal/api"
	"github.com/campusloc/locations-api/internal/api/handler"
	"github.com/campusloc/locations-api/internal/core/ports"
	"github.com/campusloc/locations-api/internal/core/service"
	"github.com/campusloc/locations-api/internal/infrastructure/db/redis"
	"github.com/campusloc/locations-api/internal/pkg/token"
	"github.com/campusloc/locations-api/internal/pkg/validation"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, log, st, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	if err := st.Migrate(ctx); err != nil {
		return err
	}

	tokens, err := token.NewManager(token.Config{
		Secret: cfg.Auth.JWTSecret,
		Issuer: cfg.Auth.Issuer,
		TTL:    cfg.Auth.TokenTTL,
	})
	if err != nil {
		return err
	}

	readiness := []handler.Dependency{{Name: st.Driver, Pinger: st.Health}}

	// Redis is optional: without it Idempotency-Key headers are ignored.
	var idem ports.IdempotencyStore
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		redisIdem := redis.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)
		idem = redisIdem
		readiness = append(readiness, handler.Dependency{Name: "redis", Pinger: redisIdem})
	}

	validator := validation.New()
	if cfg.Seed.OnStart {
		if err := seed(ctx, cfg, service.NewSeeder(st.Identity, log)); err != nil {
			return err
		}
	}

	e := api.NewRouter(api.Deps{
		Log:            log,
		Locations:      service.NewLocationService(st.Locations, idem, validator, log),
		Auth:           service.NewAuthService(st.Identity, tokens, log),
		Verifier:       tokens,
		Readiness:      readiness,
		RequestTimeout: cfg.RequestTimeout,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().
			Str("addr", cfg.Addr()).
			Str("driver", st.Driver).
			Dur("token_ttl", tokens.TTL()).
			Msg("server listening")
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down")
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
