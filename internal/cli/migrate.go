package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"sweetshop/internal/database"
)

func newMigrateCommand() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all up migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := bootstrap(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if err := database.MigrateUp(cfg.DatabaseURL); err != nil {
				return err
			}
			slog.Info("migrations applied")
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if steps <= 0 {
				return fmt.Errorf("--steps must be positive")
			}

			cfg, err := bootstrap(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if err := database.MigrateDown(cfg.DatabaseURL, steps); err != nil {
				return err
			}
			slog.Info("migrations rolled back", "steps", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	migrate.AddCommand(up, down)
	return migrate
}
