package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/RMahshie/lightcurve/internal/repository/store"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return errors.New("DATABASE_URL is required to migrate")
			}

			db, err := store.Open(cmd.Context(), cfg.Database.URL)
			if err != nil {
				return err
			}
			defer db.Close()
			return db.Migrate()
		},
	}

	cmd.Flags().String("db", "", "database URL (postgres://... or sqlite://path)")

	return cmd
}
