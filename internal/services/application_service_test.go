package services

import (
	"context"
	"errors"
	"testing"

	"scholarhub/internal/catalog"
	"scholarhub/internal/core"
)

func TestApplicationService_Submit(t *testing.T) {
	repo := newTestRepo(t)
	accounts := newAccountService(repo)
	inv := &countingInvalidator{}
	svc := NewApplicationService(repo, catalog.Default(), nil, inv)
	ctx := context.Background()

	mustStudent(t, accounts, "jdoe", "Balayan", "CICS", "BSIT")
	if _, err := accounts.Signup(ctx, core.Signup{Type: core.Student, Username: "fresh", Email: "fresh" + domain, Password: "password123"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := accounts.Signup(ctx, core.Signup{Type: core.Admin, Username: "admin", Email: "admin" + domain, Password: "password123"}); err != nil {
		t.Fatalf("signup admin: %v", err)
	}

	app, err := svc.Submit(ctx, "jdoe", "bcd scholarship", 1.75)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if app.Status != core.Pending || app.Scholarship != "BCD SCHOLARSHIP" {
		t.Fatalf("Submit() = %+v", app)
	}
	if app.Municipality != "Balayan" || app.College != "CICS" || app.Program != "BSIT" {
		t.Fatalf("profile snapshot not taken: %+v", app)
	}
	if inv.n != 1 {
		t.Fatalf("reports invalidated %d times, want 1", inv.n)
	}

	tests := []struct {
		name        string
		username    string
		scholarship string
		average     float64
		want        error
	}{
		{"duplicate", "jdoe", "BCD SCHOLARSHIP", 1.5, core.ErrDuplicateApplication},
		{"incomplete profile", "fresh", "BCD SCHOLARSHIP", 1.5, core.ErrProfileIncomplete},
		{"admin", "admin", "BCD SCHOLARSHIP", 1.5, core.ErrNotStudent},
		{"unknown account", "ghost", "BCD SCHOLARSHIP", 1.5, core.ErrAccountNotFound},
		{"empty scholarship", "jdoe", "  ", 1.5, core.ErrEmptyScholarship},
		{"unknown scholarship", "jdoe", "MOON GRANT", 1.5, core.ErrUnknownScholarship},
		{"average off scale", "jdoe", "DSWD EDUCATIONAL ASSISTANCE", 7, core.ErrInvalidAverage},
		{"average above ceiling", "jdoe", "DSWD EDUCATIONAL ASSISTANCE", 3.0, core.ErrAverageAboveCeiling},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, tt.username, tt.scholarship, tt.average)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Submit() error = %v, want %v", err, tt.want)
			}
		})
	}

	mine, err := svc.ListMine(ctx, "jdoe")
	if err != nil || len(mine) != 1 {
		t.Fatalf("ListMine() = %d, %v; want 1 application", len(mine), err)
	}
}

func TestApplicationService_Transition(t *testing.T) {
	repo := newTestRepo(t)
	accounts := newAccountService(repo)
	pub := &fakePublisher{}
	inv := &countingInvalidator{}
	svc := NewApplicationService(repo, catalog.Default(), pub, inv)
	ctx := context.Background()

	mustStudent(t, accounts, "jdoe", "Balayan", "CICS", "BSIT")
	app, err := svc.Submit(ctx, "jdoe", "BCD SCHOLARSHIP", 1.75)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	tr, err := svc.Transition(ctx, app.ID, core.Accepted)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if tr.From != core.Pending || tr.To != core.Accepted || tr.ScholarStatus != core.Scholar {
		t.Fatalf("accept transition = %+v", tr)
	}

	acct, err := accounts.Profile(ctx, "jdoe")
	if err != nil || acct.ScholarStatus != core.Scholar {
		t.Fatalf("after accept status = %s, %v", acct.ScholarStatus, err)
	}

	if _, err := svc.Transition(ctx, app.ID, core.Rejected); !errors.Is(err, core.ErrInvalidTransition) {
		t.Fatalf("ACCEPTED -> REJECTED error = %v", err)
	}

	tr, err = svc.Transition(ctx, app.ID, core.Dropped)
	if err != nil {
		t.Fatalf("drop: %v", err)
	}
	if tr.ScholarStatus != core.NonScholar {
		t.Fatalf("after drop status = %s", tr.ScholarStatus)
	}

	if _, err := svc.Transition(ctx, app.ID, core.Accepted); !errors.Is(err, core.ErrInvalidTransition) {
		t.Fatalf("DROPPED is terminal, got %v", err)
	}
	if _, err := svc.Transition(ctx, 9999, core.Accepted); !errors.Is(err, core.ErrApplicationNotFound) {
		t.Fatalf("missing application error = %v", err)
	}

	msgs := pub.published()
	if len(msgs) != 2 {
		t.Fatalf("published %d messages, want 2", len(msgs))
	}
	if msgs[0].To != "ACCEPTED" || msgs[0].ScholarStatus != "SCHOLAR" || msgs[1].To != "DROPPED" {
		t.Fatalf("unexpected messages: %+v %+v", msgs[0], msgs[1])
	}
	// submit plus two successful transitions
	if inv.n != 3 {
		t.Fatalf("reports invalidated %d times, want 3", inv.n)
	}
}

func TestApplicationService_TransitionSurvivesPublishFailure(t *testing.T) {
	repo := newTestRepo(t)
	accounts := newAccountService(repo)
	svc := NewApplicationService(repo, catalog.Default(), &fakePublisher{err: errBroker}, nil)
	ctx := context.Background()

	mustStudent(t, accounts, "jdoe", "Balayan", "CICS", "BSIT")
	app, err := svc.Submit(ctx, "jdoe", "BCD SCHOLARSHIP", 1.75)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, err := svc.Transition(ctx, app.ID, core.Rejected); err != nil {
		t.Fatalf("Transition() must not fail on publish errors: %v", err)
	}

	apps, err := svc.ListAll(ctx, core.Rejected)
	if err != nil || len(apps) != 1 {
		t.Fatalf("ListAll(REJECTED) = %d, %v", len(apps), err)
	}
	apps, err = svc.ListAll(ctx, core.Pending)
	if err != nil || len(apps) != 0 {
		t.Fatalf("ListAll(PENDING) = %d, %v", len(apps), err)
	}
}
