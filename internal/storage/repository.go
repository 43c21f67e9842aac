package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"scholarhub/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	path    string
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		path:    dbPath,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the connection and that the schema is not left dirty by a
// failed migration.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	_, dirty, err := MigrationVersion(r.path)
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}
	if dirty {
		return errors.New("database schema is dirty")
	}
	return nil
}

// withTx runs fn inside a transaction, rolling back on any error.
func (r *SQLiteRepository) withTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(r.queries.WithTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Failed to rollback transaction", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Accounts

// CreateAccount inserts a new account with status NON-SCHOLAR. The password
// must already be hashed.
func (r *SQLiteRepository) CreateAccount(ctx context.Context, t core.AccountType, username, email, passwordHash string) (core.Account, error) {
	row, err := r.queries.CreateAccount(ctx, CreateAccountParams{
		AccountType:  string(t),
		Username:     username,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
	})
	if err != nil {
		return core.Account{}, mapError("create account", err, nil)
	}

	slog.InfoContext(ctx, "Account created",
		"id", row.ID,
		"username", row.Username,
		"account_type", row.AccountType)

	return toCoreAccount(row), nil
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, username string) (core.Account, error) {
	row, err := r.queries.GetAccountByUsername(ctx, username)
	if err != nil {
		return core.Account{}, mapError("get account", err, core.ErrAccountNotFound)
	}
	return toCoreAccount(row), nil
}

// GetAccountByLogin finds an account by username or by email, ignoring the
// email's case.
func (r *SQLiteRepository) GetAccountByLogin(ctx context.Context, login string) (core.Account, error) {
	row, err := r.queries.GetAccountByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		return core.Account{}, mapError("get account by login", err, core.ErrAccountNotFound)
	}
	return toCoreAccount(row), nil
}

func (r *SQLiteRepository) AccountType(ctx context.Context, username string) (core.AccountType, error) {
	t, err := r.queries.GetAccountType(ctx, username)
	if err != nil {
		return "", mapError("get account type", err, core.ErrAccountNotFound)
	}
	return core.AccountType(t), nil
}

// UpdateProfile replaces the profile fields. A nil Photo keeps the stored one.
func (r *SQLiteRepository) UpdateProfile(ctx context.Context, username string, p core.Profile) (core.Account, error) {
	studentID := sql.NullString{String: strings.TrimSpace(p.StudentID), Valid: strings.TrimSpace(p.StudentID) != ""}
	n, err := r.queries.UpdateProfile(ctx, UpdateProfileParams{
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		MiddleInitial: p.MiddleInitial,
		Suffix:        p.Suffix,
		CivilStatus:   p.CivilStatus,
		Gender:        p.Gender,
		DateOfBirth:   p.DateOfBirth,
		Age:           int64(p.Age),
		StudentID:     studentID,
		College:       p.College,
		YearLevel:     p.YearLevel,
		Program:       p.Program,
		Municipality:  p.Municipality,
		PhoneNumber:   p.PhoneNumber,
		ProfilePhoto:  p.Photo,
		Username:      username,
	})
	if err != nil {
		return core.Account{}, mapError("update profile", err, nil)
	}
	if n == 0 {
		return core.Account{}, core.ErrAccountNotFound
	}

	slog.InfoContext(ctx, "Profile updated", "username", username, "photo_replaced", p.Photo != nil)

	return r.GetAccount(ctx, username)
}

func (r *SQLiteRepository) UpdatePasswordHash(ctx context.Context, username, hash string) error {
	n, err := r.queries.UpdatePasswordHash(ctx, username, hash)
	if err != nil {
		return mapError("update password", err, nil)
	}
	if n == 0 {
		return core.ErrAccountNotFound
	}
	slog.InfoContext(ctx, "Password hash updated", "username", username)
	return nil
}

func (r *SQLiteRepository) ListStudents(ctx context.Context) ([]core.Account, error) {
	rows, err := r.queries.ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	out := make([]core.Account, 0, len(rows))
	for _, row := range rows {
		out = append(out, toCoreAccount(row))
	}
	return out, nil
}

// Applications

// CreateApplication stores a PENDING application. An existing application for
// the same (username, scholarship) pair in any status is a duplicate.
func (r *SQLiteRepository) CreateApplication(ctx context.Context, app core.Application) (core.Application, error) {
	var created Application
	err := r.withTx(ctx, func(q *Queries) error {
		exists, err := q.ApplicationExists(ctx, app.Username, app.Scholarship)
		if err != nil {
			return fmt.Errorf("check existing application: %w", err)
		}
		if exists {
			return core.ErrDuplicateApplication
		}
		created, err = q.CreateApplication(ctx, CreateApplicationParams{
			Username:        app.Username,
			ScholarshipName: app.Scholarship,
			Average:         app.Average,
			FirstName:       app.FirstName,
			LastName:        app.LastName,
			MiddleName:      app.MiddleName,
			Suffix:          app.Suffix,
			Email:           app.Email,
			Municipality:    app.Municipality,
			College:         app.College,
			Program:         app.Program,
			YearLevel:       app.YearLevel,
		})
		return mapError("create application", err, nil)
	})
	if err != nil {
		return core.Application{}, err
	}

	slog.InfoContext(ctx, "Application submitted",
		"id", created.ID,
		"username", created.Username,
		"scholarship", created.ScholarshipName)

	return toCoreApplication(created), nil
}

func (r *SQLiteRepository) GetApplication(ctx context.Context, id int64) (core.Application, error) {
	row, err := r.queries.GetApplication(ctx, id)
	if err != nil {
		return core.Application{}, mapError("get application", err, core.ErrApplicationNotFound)
	}
	return toCoreApplication(row), nil
}

func (r *SQLiteRepository) ListApplicationsByUsername(ctx context.Context, username string) ([]core.Application, error) {
	rows, err := r.queries.ListApplicationsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list applications for %s: %w", username, err)
	}
	return toCoreApplications(rows), nil
}

// ListApplications returns every application, or only those in status when
// status is non-empty.
func (r *SQLiteRepository) ListApplications(ctx context.Context, status core.ApplicationStatus) ([]core.Application, error) {
	var (
		rows []Application
		err  error
	)
	if status == "" {
		rows, err = r.queries.ListApplications(ctx)
	} else {
		if !status.Valid() {
			return nil, fmt.Errorf("%w: %q", core.ErrInvalidStatus, status)
		}
		rows, err = r.queries.ListApplicationsByStatus(ctx, string(status))
	}
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return toCoreApplications(rows), nil
}

// TransitionApplication moves an application to next and reconciles the
// owning account in the same transaction.
func (r *SQLiteRepository) TransitionApplication(ctx context.Context, id int64, next core.ApplicationStatus) (core.Transition, error) {
	var result core.Transition
	err := r.withTx(ctx, func(q *Queries) error {
		row, err := q.GetApplication(ctx, id)
		if err != nil {
			return mapError("get application", err, core.ErrApplicationNotFound)
		}
		from := core.ApplicationStatus(row.Status)
		if err := core.ValidateTransition(from, next); err != nil {
			return err
		}

		n, err := q.UpdateApplicationStatus(ctx, id, string(from), string(next))
		if err != nil {
			return fmt.Errorf("update application status: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: application %d changed concurrently", core.ErrInvalidTransition, id)
		}

		status, err := reconcileAccount(ctx, q, row.Username)
		if err != nil {
			return err
		}

		updated, err := q.GetApplication(ctx, id)
		if err != nil {
			return fmt.Errorf("reload application: %w", err)
		}

		result = core.Transition{
			Application:   toCoreApplication(updated),
			From:          from,
			To:            next,
			ScholarStatus: status,
		}
		return nil
	})
	if err != nil {
		return core.Transition{}, err
	}

	slog.InfoContext(ctx, "Application status changed",
		"id", id,
		"username", result.Application.Username,
		"from", result.From,
		"to", result.To,
		"scholar_status", result.ScholarStatus)

	return result, nil
}

// Reconciliation

// ReconcileAll resets every student to NON-SCHOLAR and promotes those with an
// ACCEPTED application, atomically. It returns the number promoted.
func (r *SQLiteRepository) ReconcileAll(ctx context.Context) (int64, error) {
	var reset, promoted int64
	err := r.withTx(ctx, func(q *Queries) error {
		var err error
		if reset, err = q.ResetStudentStatuses(ctx); err != nil {
			return fmt.Errorf("reset student statuses: %w", err)
		}
		if promoted, err = q.PromoteScholars(ctx); err != nil {
			return fmt.Errorf("promote scholars: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.DebugContext(ctx, "Scholar statuses reconciled", "students", reset, "scholars", promoted)
	return promoted, nil
}

func (r *SQLiteRepository) ReconcileAccount(ctx context.Context, username string) (core.ScholarStatus, error) {
	var status core.ScholarStatus
	err := r.withTx(ctx, func(q *Queries) error {
		var err error
		status, err = reconcileAccount(ctx, q, username)
		return err
	})
	return status, err
}

// reconcileAccount recomputes one account's status. Admin accounts are left
// untouched and their stored status is returned.
func reconcileAccount(ctx context.Context, q *Queries, username string) (core.ScholarStatus, error) {
	status, err := q.ReconcileAccount(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		status, err = q.GetScholarshipStatus(ctx, username)
		if err != nil {
			return "", mapError("get scholarship status", err, core.ErrAccountNotFound)
		}
		return core.ScholarStatus(status), nil
	}
	if err != nil {
		return "", fmt.Errorf("reconcile account %s: %w", username, err)
	}
	return core.ScholarStatus(status), nil
}

// Reports. These read the stored statuses; callers reconcile first.

func (r *SQLiteRepository) ScholarCounts(ctx context.Context) (core.ScholarCounts, error) {
	scholars, nonScholars, err := r.queries.CountStudentsByStatus(ctx)
	if err != nil {
		return core.ScholarCounts{}, fmt.Errorf("count students by status: %w", err)
	}
	return core.ScholarCounts{Scholars: scholars, NonScholars: nonScholars}, nil
}

func (r *SQLiteRepository) MunicipalityScholarCounts(ctx context.Context) ([]core.MunicipalityScholarCounts, error) {
	rows, err := r.queries.CountStudentsByMunicipality(ctx)
	if err != nil {
		return nil, fmt.Errorf("count students by municipality: %w", err)
	}
	out := make([]core.MunicipalityScholarCounts, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.MunicipalityScholarCounts{
			Municipality:  row.Municipality,
			ScholarCounts: core.ScholarCounts{Scholars: row.Scholars, NonScholars: row.NonScholars},
		})
	}
	return out, nil
}

func (r *SQLiteRepository) AcceptedByScholarship(ctx context.Context) ([]core.ProgramCount, error) {
	rows, err := r.queries.CountAcceptedByScholarship(ctx)
	if err != nil {
		return nil, fmt.Errorf("count accepted by scholarship: %w", err)
	}
	out := make([]core.ProgramCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.ProgramCount{Scholarship: row.Key, Accepted: row.Count})
	}
	return out, nil
}

// AcceptedByMunicipalityAndScholarship groups accepted applications by the
// municipality snapshot taken at submission.
func (r *SQLiteRepository) AcceptedByMunicipalityAndScholarship(ctx context.Context) ([]core.MunicipalityProgramCounts, error) {
	rows, err := r.queries.CountAcceptedByMunicipalityAndScholarship(ctx)
	if err != nil {
		return nil, fmt.Errorf("count accepted by municipality and scholarship: %w", err)
	}
	var out []core.MunicipalityProgramCounts
	for _, row := range rows {
		if len(out) == 0 || out[len(out)-1].Municipality != row.Municipality {
			out = append(out, core.MunicipalityProgramCounts{Municipality: row.Municipality})
		}
		last := &out[len(out)-1]
		last.Programs = append(last.Programs, core.ProgramCount{Scholarship: row.ScholarshipName, Accepted: row.Count})
	}
	return out, nil
}

func (r *SQLiteRepository) AcceptedByCollege(ctx context.Context, scholarship string) ([]core.CollegeCount, error) {
	rows, err := r.queries.CountAcceptedByCollege(ctx, scholarship)
	if err != nil {
		return nil, fmt.Errorf("count accepted by college for %s: %w", scholarship, err)
	}
	out := make([]core.CollegeCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.CollegeCount{College: row.Key, Accepted: row.Count})
	}
	return out, nil
}

func (r *SQLiteRepository) AcceptedByDegreeProgram(ctx context.Context, scholarship, college string) ([]core.DegreeProgramCount, error) {
	rows, err := r.queries.CountAcceptedByProgram(ctx, scholarship, college)
	if err != nil {
		return nil, fmt.Errorf("count accepted by program for %s/%s: %w", scholarship, college, err)
	}
	out := make([]core.DegreeProgramCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.DegreeProgramCount{Program: row.Key, Accepted: row.Count})
	}
	return out, nil
}

func (r *SQLiteRepository) CountApplications(ctx context.Context) (int64, error) {
	n, err := r.queries.CountApplications(ctx)
	if err != nil {
		return 0, fmt.Errorf("count applications: %w", err)
	}
	return n, nil
}

func toCoreAccount(row Account) core.Account {
	return core.Account{
		ID:            row.ID,
		Type:          core.AccountType(row.AccountType),
		Username:      row.Username,
		Email:         row.Email,
		PasswordHash:  row.PasswordHash,
		ScholarStatus: core.ScholarStatus(row.ScholarshipStatus),
		Profile: core.Profile{
			FirstName:     row.FirstName,
			LastName:      row.LastName,
			MiddleInitial: row.MiddleInitial,
			Suffix:        row.Suffix,
			CivilStatus:   row.CivilStatus,
			Gender:        row.Gender,
			DateOfBirth:   row.DateOfBirth,
			Age:           int(row.Age),
			StudentID:     row.StudentID.String,
			College:       row.College,
			YearLevel:     row.YearLevel,
			Program:       row.Program,
			Municipality:  row.Municipality,
			PhoneNumber:   row.PhoneNumber,
			Photo:         row.ProfilePhoto,
		},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func toCoreApplication(row Application) core.Application {
	return core.Application{
		ID:           row.ID,
		Username:     row.Username,
		Scholarship:  row.ScholarshipName,
		Status:       core.ApplicationStatus(row.Status),
		Average:      row.Average,
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		MiddleName:   row.MiddleName,
		Suffix:       row.Suffix,
		Email:        row.Email,
		Municipality: row.Municipality,
		College:      row.College,
		Program:      row.Program,
		YearLevel:    row.YearLevel,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func toCoreApplications(rows []Application) []core.Application {
	out := make([]core.Application, 0, len(rows))
	for _, row := range rows {
		out = append(out, toCoreApplication(row))
	}
	return out
}
