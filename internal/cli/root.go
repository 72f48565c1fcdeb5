package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"sweetshop/internal/config"
	"sweetshop/internal/logger"
)

// NewRootCommand builds the sweetshop command tree. Running the root
// command without a subcommand starts the server.
func NewRootCommand() *cobra.Command {
	serve := newServeCommand()

	root := &cobra.Command{
		Use:           "sweetshop",
		Short:         "Sweet shop inventory API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}

	root.AddCommand(serve, newMigrateCommand())
	return root
}

func Execute() {
	if err := NewRootCommand().ExecuteContext(context.Background()); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and installs the process-wide logger.
func bootstrap(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat))
	return cfg, nil
}
