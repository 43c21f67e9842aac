package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"scholarhub/internal/amqp"
	"scholarhub/internal/catalog"
	"scholarhub/internal/core"
)

// ApplicationService orchestrates scholarship applications across SQLite and AMQP.
type ApplicationService struct {
	store       ApplicationStore
	catalog     *catalog.Catalog
	publisher   StatusPublisher
	invalidator ReportInvalidator
}

// NewApplicationService wires the service. publisher and invalidator may be nil.
func NewApplicationService(store ApplicationStore, cat *catalog.Catalog, publisher StatusPublisher, invalidator ReportInvalidator) *ApplicationService {
	return &ApplicationService{
		store:       store,
		catalog:     cat,
		publisher:   publisher,
		invalidator: invalidator,
	}
}

// Submit files a PENDING application for username. Only students with a
// complete profile may apply, and only once per scholarship program.
func (s *ApplicationService) Submit(ctx context.Context, username, scholarship string, average float64) (core.Application, error) {
	acct, err := s.store.GetAccount(ctx, username)
	if err != nil {
		return core.Application{}, err
	}
	if acct.Type != core.Student {
		return core.Application{}, core.ErrNotStudent
	}
	if !acct.Profile.Complete(acct.Type) {
		return core.Application{}, core.ErrProfileIncomplete
	}

	name := strings.TrimSpace(scholarship)
	if name == "" {
		return core.Application{}, core.ErrEmptyScholarship
	}
	var ceiling float64
	if s.catalog != nil {
		prog, ok := s.catalog.Scholarship(name)
		if !ok {
			return core.Application{}, fmt.Errorf("%w: %q", core.ErrUnknownScholarship, name)
		}
		name, ceiling = prog.Name, prog.MaxAverage
	}
	if err := core.ValidateAverage(average, ceiling); err != nil {
		return core.Application{}, err
	}

	app, err := s.store.CreateApplication(ctx, core.NewApplication(acct, name, average))
	if err != nil {
		return core.Application{}, err
	}
	s.invalidate()

	slog.InfoContext(ctx, "Application submitted",
		"application_id", app.ID,
		"username", app.Username,
		"scholarship", app.Scholarship)
	return app, nil
}

func (s *ApplicationService) ListMine(ctx context.Context, username string) ([]core.Application, error) {
	return s.store.ListApplicationsByUsername(ctx, username)
}

// ListAll returns every application, optionally filtered by status.
func (s *ApplicationService) ListAll(ctx context.Context, status core.ApplicationStatus) ([]core.Application, error) {
	return s.store.ListApplications(ctx, status)
}

// Transition applies an admin decision. The applicant's scholar status is
// reconciled in the same transaction; the status event is published after
// commit and a publish failure never fails the request.
func (s *ApplicationService) Transition(ctx context.Context, id int64, next core.ApplicationStatus) (core.Transition, error) {
	tr, err := s.store.TransitionApplication(ctx, id, next)
	if err != nil {
		return core.Transition{}, err
	}
	s.invalidate()

	if err := s.publish(ctx, tr); err != nil {
		slog.ErrorContext(ctx, "Failed to publish status change",
			"application_id", id, "error", err)
	}
	return tr, nil
}

func (s *ApplicationService) publish(ctx context.Context, tr core.Transition) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping status message")
		return nil
	}
	return s.publisher.PublishStatusChange(ctx, amqp.NewApplicationStatusMessage(tr))
}

func (s *ApplicationService) invalidate() {
	if s.invalidator != nil {
		s.invalidator.Invalidate()
	}
}
