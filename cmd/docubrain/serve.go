package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/docubrain/docubrain"
	"github.com/docubrain/docubrain/infrastructure/api"
	"github.com/docubrain/docubrain/internal/config"
	"github.com/docubrain/docubrain/internal/log"
)

func serveCmd() *cobra.Command {
	var (
		envFile string
		host    string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server with background extraction",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST                     Server host to bind to (default: 0.0.0.0)
  PORT                     Server port to listen on (default: 8000)
  DB_URL                   Database URL (default: sqlite:///docubrain.db)
  LOG_LEVEL                Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT               Log format: pretty, json (default: pretty)
  BROKER_URL               Task broker URL: redis:// or amqp://
                           (default: database-backed queue)

  STORAGE_*                Object store configuration
    ENDPOINT               MinIO host:port
    ACCESS_KEY             Access key
    SECRET_KEY             Secret key
    BUCKET                 Upload bucket (default: docubrain-uploads)
    USE_SSL                Enable TLS (default: false)

  VISION_*                 Vision endpoint configuration
    BASE_URL               OpenAI-compatible base URL
    API_KEY                API key (extraction disabled when unset)
    MODEL                  Model identifier (default: gpt-4o)
    TIMEOUT                Request timeout in seconds (default: 60)

  EXTRACT_FIELD            Field extracted from images (default: UHID)
  CONFIDENCE_THRESHOLD     Low-confidence log threshold (default: -0.5)
  DEFAULT_INSTITUTION_ID   Institution when no hospital header (default: 1)

  DISPATCH_ENABLED           Enable periodic dispatch (default: true)
  DISPATCH_INTERVAL_SECONDS  Dispatch interval (default: 30)
  DISPATCH_BATCH_SIZE        Pending records per sweep (default: 10)

  WORKER_COUNT             Number of extraction workers (default: 1)
  WORKER_POLL_SECONDS      Worker queue poll period (default: 1)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8000)")

	return cmd
}

func runServe(envFile, host string, port int) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	// Flags take precedence over env vars.
	var overrides []config.AppConfigOption
	if host != "" {
		overrides = append(overrides, config.WithHost(host))
	}
	if port != 0 {
		overrides = append(overrides, config.WithPort(port))
	}
	cfg = cfg.Apply(overrides...)

	logger := log.Configure(cfg)

	attrs := append([]slog.Attr{slog.String("version", version)}, cfg.LogAttrs()...)
	logger.LogAttrs(context.Background(), slog.LevelInfo, "starting docubrain", attrs...)

	opts := append(docubrain.FromAppConfig(cfg), docubrain.WithLogger(logger))
	client, err := docubrain.New(opts...)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close client", slog.Any("error", err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client.Start(ctx)

	apiServer := api.NewAPIServer(client)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := apiServer.ListenAndServe(cfg.Addr()); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		select {
		case <-sigChan:
			logger.Info("shutting down server")
		case <-ctx.Done():
		}
		cancel()
		if err := apiServer.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.Any("error", err))
		}
		return nil
	})

	return g.Wait()
}
