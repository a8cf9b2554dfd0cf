// Package command contains the CLI command constructors.
package command

import (
	"context"
	"errors"
	"fmt"

	"blog-service/config"
	"blog-service/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type runtimeKey struct{}

// runtime is what every sub-command needs once flags are parsed.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
}

// RootCommand instantiates the root command, with all sub-commands bound.
func RootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "blog-service [command] [flags]",
		Short:        "A small blog with username/password accounts",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger, err := server.NewLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			logger.Debug("configuration loaded",
				zap.String("addr", cfg.Addr),
				zap.String("instance", cfg.InstancePath),
				zap.String("db", cfg.DatabasePath),
			)
			cmd.SetContext(context.WithValue(cmd.Context(), runtimeKey{}, &runtime{cfg: cfg, logger: logger}))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if rt, err := fromContext(cmd.Context()); err == nil {
				_ = rt.logger.Sync()
			}
		},
	}

	cmd.AddCommand(
		serveCommand(),
		initDBCommand(),
		createMigrationCommand(),
	)
	return cmd
}

func fromContext(ctx context.Context) (*runtime, error) {
	rt, ok := ctx.Value(runtimeKey{}).(*runtime)
	if !ok {
		return nil, errors.New("configuration not loaded")
	}
	return rt, nil
}
