package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations (postgres) or create indexes (mongo)",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, st, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			if err := st.Migrate(cmd.Context()); err != nil {
				return err
			}
			log.Info().Str("driver", st.Driver).Msg("migrations applied")
			return nil
		},
	}
}
