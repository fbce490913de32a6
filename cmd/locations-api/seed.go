package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/campusloc/locations-api/internal/core/service"
	"github.com/campusloc/locations-api/internal/pkg/config"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the Administrator and Student roles and their initial accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, st, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			if err := st.Migrate(cmd.Context()); err != nil {
				return err
			}
			return seed(cmd.Context(), cfg, service.NewSeeder(st.Identity, log))
		},
	}
}

func seed(ctx context.Context, cfg *config.Config, seeder *service.Seeder) error {
	return seeder.Seed(ctx, service.DefaultSeedAccounts(cfg.Seed.AdminPassword, cfg.Seed.StudentPassword))
}
