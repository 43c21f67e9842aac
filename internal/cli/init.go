// Package cli provides common initialization used by cmd/scholarhub,
// cmd/scholarhub-worker and cmd/scholarhub-admin.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"scholarhub/internal/amqp"
	"scholarhub/internal/cache"
	"scholarhub/internal/catalog"
	"scholarhub/internal/config"
	"scholarhub/internal/log"
	ports "scholarhub/internal/sheets"
	gsheet "scholarhub/internal/sheets/google"
	mem "scholarhub/internal/sheets/memory"
	"scholarhub/internal/storage"
)

// SetupLogger builds the process logger from LOG_LEVEL and sets it as the
// slog default.
func SetupLogger(component string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(os.Getenv("LOG_LEVEL"))
	cfg.Component = component
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates the settings shared
// by every binary. Exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	exitOnInvalidConfig(logger, cfg.Validate())
	return cfg
}

// LoadAndValidateAPIConfig is LoadAndValidateConfig for the API server, which
// also needs valid token settings.
func LoadAndValidateAPIConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	exitOnInvalidConfig(logger, cfg.ValidateAPI())
	return cfg
}

func exitOnInvalidConfig(logger *log.Logger, err error) {
	if err != nil {
		logger.Error("Configuration validation failed", log.FieldErrorType, log.ErrorTypeConfiguration, "error", err)
		os.Exit(1)
	}
}

// InitSQLite opens the repository, applying pending migrations.
// Returns the repository or exits the process on failure.
func InitSQLite(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldErrorType, log.ErrorTypeDatabase, "error", err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// LoadCatalog returns the catalog override from cfg or the embedded default.
// Exits the process when the override cannot be parsed.
func LoadCatalog(logger *log.Logger, cfg *config.Config) *catalog.Catalog {
	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		logger.Error("Failed to load catalog", log.FieldErrorType, log.ErrorTypeConfiguration, "error", err, "path", cfg.CatalogFile)
		os.Exit(1)
	}
	logger.Info("Catalog loaded",
		"colleges", len(cat.Colleges()),
		"municipalities", len(cat.Municipalities()),
		"scholarships", len(cat.Scholarships()))
	return cat
}

// NewReportCache builds the report LRU and starts a janitor for it. Call
// the returned stop function on shutdown.
func NewReportCache(cfg *config.Config) (cache.Cache[any], func()) {
	lru := cache.NewLRUCache[any](cfg.ReportCacheSize, cfg.ReportCacheTTL)
	if cfg.ReportCacheTTL <= 0 {
		return lru, func() {}
	}
	janitor := cache.NewJanitor(lru)
	janitor.Start(cfg.ReportCacheTTL)
	return lru, janitor.Stop
}

// NewExporter returns the configured dashboard exporter: Google Sheets when
// REPORT_EXPORT=sheets, an in-memory exporter otherwise.
func NewExporter(ctx context.Context, logger *log.Logger, cfg *config.Config) (ports.ReportExporter, error) {
	switch cfg.ReportExport {
	case "sheets":
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleReportSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			return nil, fmt.Errorf("init Google Sheets exporter: %w", err)
		}
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleReportSheetName)
		return client, nil
	default:
		logger.Info("Dashboard export kept in memory", "report_export", cfg.ReportExport)
		return mem.New(), nil
	}
}

// ConnectAMQP dials the broker when AMQP_URL is set. It returns nil without
// error when AMQP is disabled.
func ConnectAMQP(logger *log.Logger, cfg *config.Config) (*amqp.Client, error) {
	if !cfg.AMQPEnabled() {
		logger.Info("AMQP disabled - no AMQP_URL provided")
		return nil, nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return nil, err
	}
	logger.Info("AMQP client connected", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client, nil
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that is closed once cleanup has run.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		cancel()

		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup finished.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
