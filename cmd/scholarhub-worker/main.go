package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"scholarhub/internal/cli"
	"scholarhub/internal/log"
	"scholarhub/internal/services"
	"scholarhub/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting scholarhub-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	cat := cli.LoadCatalog(logger, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exporter, err := cli.NewExporter(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize report exporter", "error", err)
		os.Exit(1)
	}

	amqpClient, err := cli.ConnectAMQP(logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	if amqpClient != nil {
		defer amqpClient.Close()
	}

	// The worker reads fresh counts on every refresh, so it runs uncached.
	reports := services.NewReportService(repo, cat, nil)
	w := worker.NewReconcileWorker(reports, exporter)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(gctx, cfg.ReconcileInterval)
	})
	if amqpClient != nil {
		g.Go(func() error {
			return amqpClient.Consume(gctx, w.HandleStatusMessage)
		})
	} else {
		logger.Info("Skipping AMQP message consumption - periodic sweep only")
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
