package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/release-installer/internal/config"
	"github.com/oshokin/release-installer/internal/logger"
	"github.com/oshokin/release-installer/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// logLevel overrides log_level from the configuration.
	logLevel string

	// settings are loaded before any subcommand runs.
	settings *config.Config

	// rootCmd represents the base command; without a subcommand it opens the picker.
	rootCmd = &cobra.Command{
		Use:           "release-installer",
		Short:         "Discover published releases and install one of them",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return loadSettings()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return tuiCmd.RunE(cmd, args)
		},
	}
)

// Execute runs the release-installer CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// signalContext sets up graceful shutdown handling.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

// loadSettings reads the configuration and applies the log level.
func loadSettings() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	level, ok := logger.ParseLogLevel(cfg.LogLevel)
	if !ok {
		return fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}

	logger.SetLevel(level)

	settings = cfg

	return nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename,
		"path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(listCmd, installCmd, statusCmd, tuiCmd, packCmd)
}
