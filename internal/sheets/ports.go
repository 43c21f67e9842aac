package sheets

import (
	"context"

	"scholarhub/internal/core"
)

// ReportExporter publishes a freshly computed dashboard to an outside
// destination for staff who do not use the API.
type ReportExporter interface {
	ExportDashboard(ctx context.Context, d core.Dashboard) error
}
