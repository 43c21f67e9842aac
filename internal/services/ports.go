package services

import (
	"context"

	"scholarhub/internal/amqp"
	"scholarhub/internal/core"
)

// Storage ports, satisfied by *storage.SQLiteRepository.
type (
	AccountStore interface {
		CreateAccount(ctx context.Context, t core.AccountType, username, email, passwordHash string) (core.Account, error)
		GetAccount(ctx context.Context, username string) (core.Account, error)
		GetAccountByLogin(ctx context.Context, login string) (core.Account, error)
		AccountType(ctx context.Context, username string) (core.AccountType, error)
		UpdateProfile(ctx context.Context, username string, p core.Profile) (core.Account, error)
		UpdatePasswordHash(ctx context.Context, username, hash string) error
	}

	ApplicationStore interface {
		GetAccount(ctx context.Context, username string) (core.Account, error)
		CreateApplication(ctx context.Context, app core.Application) (core.Application, error)
		ListApplicationsByUsername(ctx context.Context, username string) ([]core.Application, error)
		ListApplications(ctx context.Context, status core.ApplicationStatus) ([]core.Application, error)
		TransitionApplication(ctx context.Context, id int64, next core.ApplicationStatus) (core.Transition, error)
	}

	ReportStore interface {
		ReconcileAll(ctx context.Context) (int64, error)
		ScholarCounts(ctx context.Context) (core.ScholarCounts, error)
		MunicipalityScholarCounts(ctx context.Context) ([]core.MunicipalityScholarCounts, error)
		AcceptedByScholarship(ctx context.Context) ([]core.ProgramCount, error)
		AcceptedByMunicipalityAndScholarship(ctx context.Context) ([]core.MunicipalityProgramCounts, error)
		AcceptedByCollege(ctx context.Context, scholarship string) ([]core.CollegeCount, error)
		AcceptedByDegreeProgram(ctx context.Context, scholarship, college string) ([]core.DegreeProgramCount, error)
		CountApplications(ctx context.Context) (int64, error)
		ListStudents(ctx context.Context) ([]core.Account, error)
		ListApplications(ctx context.Context, status core.ApplicationStatus) ([]core.Application, error)
	}
)

// StatusPublisher is satisfied by *amqp.Client.
type StatusPublisher interface {
	PublishStatusChange(ctx context.Context, msg *amqp.ApplicationStatusMessage) error
}

// ReportInvalidator drops cached reports after a write that changes them.
type ReportInvalidator interface {
	Invalidate()
}
