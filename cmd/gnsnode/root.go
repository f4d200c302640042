package main

import (
	stderrors "errors"
	"log/slog"

	"gnsnode/config"
	"gnsnode/pkg/logger"

	"github.com/spf13/cobra"
)

var configName string

var rootCmd = &cobra.Command{
	Use:           "gnsnode",
	Short:         "GNS node: identity ledger, gossip sync and realtime message relay",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configName, "config", "config-local", "config file name under ./config (without extension)")
}

// loadConfig reads the named config. A missing file falls back to defaults
// plus GNS_* environment overrides.
func loadConfig() (*config.Config, error) {
	v, err := config.LoadConfig(configName)
	if err != nil {
		if !stderrors.Is(err, config.ErrConfigNotFound) {
			return nil, err
		}
		slog.Warn("config file not found, using defaults", "name", configName)
		return config.Default(), nil
	}
	return config.ParseConfig(v)
}

func newLogger(cfg *config.Config) (logger.Logger, error) {
	l, err := logger.NewLogger(cfg)
	if err != nil {
		return logger.Logger{}, err
	}
	return *l, nil
}
