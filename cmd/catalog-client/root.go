package main

import (
	"fmt"

	"github.com/Sternrassler/catalog-client/internal/config"
	"github.com/Sternrassler/catalog-client/pkg/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configFile string
	logLevel   string
	pretty     bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "catalog-client",
		Short:        "Rate-limited, cached client for the product catalog API",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "TOML config file path")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&opts.pretty, "pretty", false, "Human-readable log output")

	cmd.AddCommand(
		newServeCmd(opts),
		newProductsCmd(opts),
		newProductCmd(opts),
		newStatsCmd(opts),
	)
	return cmd
}

// load resolves the configuration and sets up logging for a command run.
// Flags win over the file and the environment.
func (o *rootOptions) load(cmd *cobra.Command) (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return config.Config{}, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}

	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.pretty {
		cfg.Log.Pretty = true
	}

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
		Output: cmd.ErrOrStderr(),
	})
	return cfg, logger.With().Str("command", cmd.Name()).Logger(), nil
}
