package memory

import (
	"context"
	"sync"
	"time"

	"scholarhub/internal/core"
	ports "scholarhub/internal/sheets"
)

var _ ports.ReportExporter = (*Exporter)(nil)

// Exporter keeps the last exported dashboard in memory. It is the default
// when no external export is configured.
type Exporter struct {
	mu         sync.Mutex
	last       core.Dashboard
	exportedAt time.Time
	count      int
}

func New() *Exporter {
	return &Exporter{}
}

func (e *Exporter) ExportDashboard(_ context.Context, d core.Dashboard) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.last = d
	e.exportedAt = time.Now()
	e.count++
	return nil
}

// Last returns the most recent dashboard and whether one was exported.
func (e *Exporter) Last() (core.Dashboard, time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last, e.exportedAt, e.count > 0
}

func (e *Exporter) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.count
}
