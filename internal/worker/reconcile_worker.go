package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"scholarhub/internal/amqp"
	"scholarhub/internal/core"
	"scholarhub/internal/sheets"
)

// Reports is the slice of services.ReportService the worker needs.
type Reports interface {
	Reconcile(ctx context.Context) (int64, error)
	Dashboard(ctx context.Context) (core.Dashboard, error)
}

// ReconcileWorker keeps scholar statuses and the exported dashboard in step
// with application status changes. Status messages trigger an immediate
// refresh; the periodic sweep covers messages that were lost.
type ReconcileWorker struct {
	reports  Reports
	exporter sheets.ReportExporter
}

// NewReconcileWorker creates a worker. A nil exporter disables export.
func NewReconcileWorker(reports Reports, exporter sheets.ReportExporter) *ReconcileWorker {
	return &ReconcileWorker{
		reports:  reports,
		exporter: exporter,
	}
}

// HandleStatusMessage processes one status-change message from AMQP.
// A returned error makes the consumer requeue the message.
func (w *ReconcileWorker) HandleStatusMessage(ctx context.Context, msg *amqp.ApplicationStatusMessage) error {
	slog.InfoContext(ctx, "Processing status message",
		"application_id", msg.ApplicationID,
		"username", msg.Username,
		"from", msg.From,
		"to", msg.To)

	if err := w.refresh(ctx); err != nil {
		return fmt.Errorf("refresh after application %d: %w", msg.ApplicationID, err)
	}
	return nil
}

// Sweep reconciles every student and re-exports the dashboard.
func (w *ReconcileWorker) Sweep(ctx context.Context) error {
	return w.refresh(ctx)
}

// Run sweeps once at startup and then every interval until ctx is done.
func (w *ReconcileWorker) Run(ctx context.Context, interval time.Duration) error {
	slog.InfoContext(ctx, "Performing startup reconciliation")
	if err := w.Sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.ErrorContext(ctx, "Startup reconciliation failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Sweep(ctx); err != nil {
				// next tick retries
				slog.ErrorContext(ctx, "Periodic reconciliation failed", "error", err)
			}
		}
	}
}

func (w *ReconcileWorker) refresh(ctx context.Context) error {
	promoted, err := w.reports.Reconcile(ctx)
	if err != nil {
		return err
	}

	if w.exporter == nil {
		slog.DebugContext(ctx, "No report exporter configured, skipping export", "scholars", promoted)
		return nil
	}

	d, err := w.reports.Dashboard(ctx)
	if err != nil {
		return fmt.Errorf("build dashboard: %w", err)
	}
	if err := w.exporter.ExportDashboard(ctx, d); err != nil {
		return fmt.Errorf("export dashboard: %w", err)
	}

	slog.InfoContext(ctx, "Dashboard exported",
		"scholars", d.Scholars.Overall.Scholars,
		"non_scholars", d.Scholars.Overall.NonScholars)
	return nil
}
