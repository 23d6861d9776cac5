package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/docubrain/docubrain"
	"github.com/docubrain/docubrain/internal/log"
)

func workerCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run a standalone extraction worker",
		Long: `Run extraction workers without the HTTP server.

Useful for scaling extraction independently of the API when tasks flow
through a shared broker (BROKER_URL) or database. The worker requires a
configured vision endpoint (VISION_API_KEY).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker(envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")

	return cmd
}

func runWorker(envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	logger := log.Configure(cfg)

	attrs := append([]slog.Attr{slog.String("version", version)}, cfg.LogAttrs()...)
	logger.LogAttrs(context.Background(), slog.LevelInfo, "starting docubrain worker", attrs...)

	opts := append(docubrain.FromAppConfig(cfg), docubrain.WithLogger(logger))
	// The dispatcher runs in the serving process only; a standalone worker
	// consumes tasks and never sweeps.
	opts = append(opts, docubrain.WithDispatch(cfg.Dispatch().WithEnabled(false)))
	client, err := docubrain.New(opts...)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close client", slog.Any("error", err))
		}
	}()

	if !client.ExtractionEnabled() {
		return fmt.Errorf("vision endpoint not configured, set VISION_API_KEY")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client.Start(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down worker")
	return nil
}
