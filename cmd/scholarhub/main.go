package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"scholarhub/internal/auth"
	"scholarhub/internal/cli"
	"scholarhub/internal/core"
	apphttp "scholarhub/internal/http"
	"scholarhub/internal/log"
	"scholarhub/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	logger.Info("Starting scholarhub")

	cfg := cli.LoadAndValidateAPIConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	cat := cli.LoadCatalog(logger, cfg)

	reportCache, stopCache := cli.NewReportCache(cfg)
	defer stopCache()

	// Status events are best effort; the API runs without a broker.
	var publisher services.StatusPublisher
	amqpClient, err := cli.ConnectAMQP(logger, cfg)
	if err != nil {
		logger.Warn("AMQP unavailable, status events disabled", "error", err)
	} else if amqpClient != nil {
		defer amqpClient.Close()
		publisher = amqpClient
	}

	policy := core.SignupPolicy{
		EmailDomain:       cfg.EmailDomain,
		MinPasswordLength: cfg.MinPasswordLength,
	}
	reports := services.NewReportService(repo, cat, reportCache)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Accounts:     services.NewAccountService(repo, auth.NewHasher(cfg.BcryptCost), cat, policy),
		Applications: services.NewApplicationService(repo, cat, publisher, reports),
		Reports:      reports,
		Tokens: auth.NewTokenService(auth.TokenConfig{
			Secret: cfg.JWTSecret,
			TTL:    cfg.JWTTTL,
			Issuer: cfg.JWTIssuer,
		}),
		Catalog:            cat,
		Health:             repo,
		Logger:             logger,
		LoginRatePerMinute: cfg.LoginRatePerMinute,
		TrustProxyHeaders:  cfg.TrustProxyHeaders,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	go func() {
		logger.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
}
