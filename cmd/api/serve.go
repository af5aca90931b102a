package main

import (
	"fmt"

	"taskBoard/internal/app"
	"taskBoard/internal/config"
	"taskBoard/internal/repository/postgres"

	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			if migrate && cfg.Repository.Type == config.RepoPostgres {
				if err := postgres.MigrateUp(cfg.Database.URL); err != nil {
					return fmt.Errorf("apply migrations: %w", err)
				}
			}

			a := app.New(cfg)
			if err := a.Init(cmd.Context()); err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}
