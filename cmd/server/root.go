package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"healthreg/internal/platform/config"
	"healthreg/internal/platform/logger"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

const serviceName = "healthreg"

type rootOptions struct {
	configPath string
	logLevel   string
}

type appContextKey struct{}

// appContext carries the loaded configuration and logger to subcommands.
type appContext struct {
	cfg    *config.Config
	logger *zap.Logger
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "healthreg",
		Short:         "Offline-first patient registration service",
		Version:       fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return persistentPreRun(cmd, opts)
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if app, ok := cmd.Context().Value(appContextKey{}).(*appContext); ok {
				_ = app.logger.Sync()
			}
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "config file path (YAML); HEALTHREG_* env vars override it")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	cmd.AddCommand(
		newServeCommand(),
		newPendingCommand(),
		newConfirmCommand(),
		newPruneCommand(),
		newVersionCommand(),
	)
	return cmd
}

func persistentPreRun(cmd *cobra.Command, opts *rootOptions) error {
	if cmd.Name() == "version" {
		return nil
	}

	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.Load(opts.configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, serviceName)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, appContextKey{}, &appContext{cfg: cfg, logger: log}))
	return nil
}

func appFrom(cmd *cobra.Command) (*appContext, error) {
	app, ok := cmd.Context().Value(appContextKey{}).(*appContext)
	if !ok {
		return nil, fmt.Errorf("command %s ran without initialization", cmd.Name())
	}
	return app, nil
}
