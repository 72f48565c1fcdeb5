package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"sweetshop/internal/app"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Apply pending migrations and start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := bootstrap(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			application, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			return application.Run()
		},
	}
}
