// Package main implements the agendify CLI: scan monitored senders'
// mail for events, review the candidates and add approved ones to a
// calendar.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/agendify/internal/app"
	"github.com/nhle/agendify/internal/logging"
	"github.com/nhle/agendify/internal/model"
)

var (
	// configPath is the YAML configuration file.
	configPath string
	// logLevel overrides log.level from the config file.
	logLevel string
	// version information
	version = "dev"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "agendify",
	Short: "Turn event emails into calendar entries",
	Long: `agendify scans mail from the senders you monitor, extracts meetings and
other events, and lets you approve or deny each one before it is added to
your calendar.

Examples:
  # Monitor a sender and scan the last day of mail
  agendify addresses add events@example.com
  agendify scan

  # Review what was found
  agendify review list
  agendify review interactive`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", model.DefaultConfigPath(), "configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// loadConfig reads the configuration and applies flag overrides.
func loadConfig() (*model.AppConfig, error) {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

// openApp builds the application for one command. The returned func
// releases it.
func openApp(cmd *cobra.Command, opts ...app.Option) (*app.App, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}

	a, err := app.New(cmd.Context(), cfg, logger, opts...)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, fmt.Errorf("starting agendify: %w", err)
	}

	cleanup := func() {
		if err := a.Close(); err != nil {
			logger.Warn("closing store", zap.Error(err))
		}
		_ = logger.Sync()
	}
	return a, cleanup, nil
}
