package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tsawler/gridshot/internal/metrics"
	"github.com/tsawler/gridshot/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the extraction HTTP API",
	Long: `Run an HTTP server exposing table extraction.

Endpoints:
  POST /v1/tables   multipart "images" parts in order; ?format=csv|tsv|markdown|json,
                    ?count=N, ?header=a,b
  GET  /healthz     liveness probe
  GET  /metrics     Prometheus metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine, closeEngine, err := engineFactory(ctx, cfg.OCR)
	if err != nil {
		return err
	}
	defer func() { _ = closeEngine() }()

	logger.Info("starting server",
		zap.String("engine", cfg.OCR.Engine),
		zap.Int("concurrency", cfg.Pipeline.Concurrency),
	)
	return server.New(cfg, engine, logger, metrics.NewRecorder()).ListenAndServe(ctx)
}
