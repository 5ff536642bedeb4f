package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tsawler/gridshot/internal/config"
	"github.com/tsawler/gridshot/internal/logging"
)

var (
	configPath string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "gridshot",
	Short: "Reconstruct tables from screenshots",
	Long: `gridshot recognizes the text in a batch of table screenshots, rebuilds
the rows of each image from glyph positions, and merges the rows of
overlapping screenshots into one de-duplicated table.

Configuration is read from the file given with --config and from
GRIDSHOT_-prefixed environment variables (for example GRIDSHOT_OCR_ENGINE).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format override (json, console)")
}

// loadConfig loads the configuration and applies the persistent flag
// overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// newLogger builds the command logger writing to the command's stderr.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Log, zapcore.Lock(zapcore.AddSync(cmd.ErrOrStderr())))
}
