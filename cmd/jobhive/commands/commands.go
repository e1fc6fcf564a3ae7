// Package commands defines the jobhive CLI.
package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jobhive/jobhive/internal/app"
	"github.com/jobhive/jobhive/internal/config"
	"github.com/jobhive/jobhive/internal/logging/logger"
)

// Build information, set via -ldflags at release time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "jobhive",
		Short:         "Job board server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newVersionCommand(),
	)
	return cmd
}

func newServeCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, cleanup, err := bootstrap(configFile)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Hot-reload the log level on config file changes. Everything
			// else (listeners, pools) requires a restart.
			if configFile != "" {
				err := config.Watch(configFile, func(next *config.Config) {
					if next.Logger != nil {
						log.SetVerbosity(next.Logger.Level)
					}
					log.Info(ctx, "configuration reloaded", "file", configFile)
				})
				if err != nil {
					log.Warn(ctx, "config watch unavailable", "file", configFile, "error", err)
				}
			}

			a, err := app.New(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("failed to assemble application: %w", err)
			}
			return a.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path")
	return cmd
}

func newMigrateCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, cleanup, err := bootstrap(configFile)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := context.Background()
			a, err := app.New(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("failed to assemble application: %w", err)
			}
			if err := a.Migrate(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			log.Info(ctx, "schema applied")
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("jobhive %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		},
	}
}

func bootstrap(configFile string) (*config.Config, *logger.Logger, func(), error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, cleanup, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, log, cleanup, nil
}
