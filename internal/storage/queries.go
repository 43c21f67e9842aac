package storage

import (
	"context"
	"database/sql"
)

const accountColumns = `id, account_type, username, email, password_hash, scholarship_status, profile_photo,
       first_name, last_name, middle_initial, suffix, civil_status, gender, date_of_birth, age,
       student_id, college, year_level, program, municipality, phone_number, created_at, updated_at`

func scanAccount(row interface{ Scan(...interface{}) error }) (Account, error) {
	var a Account
	err := row.Scan(
		&a.ID, &a.AccountType, &a.Username, &a.Email, &a.PasswordHash, &a.ScholarshipStatus, &a.ProfilePhoto,
		&a.FirstName, &a.LastName, &a.MiddleInitial, &a.Suffix, &a.CivilStatus, &a.Gender, &a.DateOfBirth, &a.Age,
		&a.StudentID, &a.College, &a.YearLevel, &a.Program, &a.Municipality, &a.PhoneNumber, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

const applicationColumns = `id, username, scholarship_name, status, average, first_name, last_name, middle_name, suffix,
       email, municipality, college, program, year_level, created_at, updated_at`

func scanApplication(row interface{ Scan(...interface{}) error }) (Application, error) {
	var a Application
	err := row.Scan(
		&a.ID, &a.Username, &a.ScholarshipName, &a.Status, &a.Average, &a.FirstName, &a.LastName, &a.MiddleName, &a.Suffix,
		&a.Email, &a.Municipality, &a.College, &a.Program, &a.YearLevel, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

const createAccount = `
INSERT INTO accounts (account_type, username, email, password_hash, scholarship_status)
VALUES (?, ?, ?, ?, 'NON-SCHOLAR')`

type CreateAccountParams struct {
	AccountType  string
	Username     string
	Email        string
	PasswordHash string
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) (Account, error) {
	res, err := q.db.ExecContext(ctx, createAccount, arg.AccountType, arg.Username, arg.Email, arg.PasswordHash)
	if err != nil {
		return Account{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Account{}, err
	}
	return q.GetAccountByID(ctx, id)
}

const getAccountByID = `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`

func (q *Queries) GetAccountByID(ctx context.Context, id int64) (Account, error) {
	return scanAccount(q.db.QueryRowContext(ctx, getAccountByID, id))
}

const getAccountByUsername = `SELECT ` + accountColumns + ` FROM accounts WHERE username = ?`

func (q *Queries) GetAccountByUsername(ctx context.Context, username string) (Account, error) {
	return scanAccount(q.db.QueryRowContext(ctx, getAccountByUsername, username))
}

const getAccountByLogin = `SELECT ` + accountColumns + ` FROM accounts WHERE username = ? OR email = lower(?) LIMIT 1`

func (q *Queries) GetAccountByLogin(ctx context.Context, login string) (Account, error) {
	return scanAccount(q.db.QueryRowContext(ctx, getAccountByLogin, login, login))
}

const getAccountType = `SELECT account_type FROM accounts WHERE username = ?`

func (q *Queries) GetAccountType(ctx context.Context, username string) (string, error) {
	var t string
	err := q.db.QueryRowContext(ctx, getAccountType, username).Scan(&t)
	return t, err
}

const listStudents = `SELECT ` + accountColumns + ` FROM accounts WHERE account_type = 'STUDENT' ORDER BY username`

func (q *Queries) ListStudents(ctx context.Context) ([]Account, error) {
	rows, err := q.db.QueryContext(ctx, listStudents)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

const updateProfile = `
UPDATE accounts SET
    first_name = ?, last_name = ?, middle_initial = ?, suffix = ?, civil_status = ?, gender = ?,
    date_of_birth = ?, age = ?, student_id = ?, college = ?, year_level = ?, program = ?,
    municipality = ?, phone_number = ?, profile_photo = COALESCE(?, profile_photo),
    updated_at = CURRENT_TIMESTAMP
WHERE username = ?`

type UpdateProfileParams struct {
	FirstName     string
	LastName      string
	MiddleInitial string
	Suffix        string
	CivilStatus   string
	Gender        string
	DateOfBirth   string
	Age           int64
	StudentID     sql.NullString
	College       string
	YearLevel     string
	Program       string
	Municipality  string
	PhoneNumber   string
	ProfilePhoto  []byte // nil keeps the stored photo
	Username      string
}

func (q *Queries) UpdateProfile(ctx context.Context, arg UpdateProfileParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateProfile,
		arg.FirstName, arg.LastName, arg.MiddleInitial, arg.Suffix, arg.CivilStatus, arg.Gender,
		arg.DateOfBirth, arg.Age, arg.StudentID, arg.College, arg.YearLevel, arg.Program,
		arg.Municipality, arg.PhoneNumber, arg.ProfilePhoto, arg.Username,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const updatePasswordHash = `UPDATE accounts SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE username = ?`

func (q *Queries) UpdatePasswordHash(ctx context.Context, username, hash string) (int64, error) {
	res, err := q.db.ExecContext(ctx, updatePasswordHash, hash, username)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const resetStudentStatuses = `
UPDATE accounts SET scholarship_status = 'NON-SCHOLAR'
WHERE account_type = 'STUDENT'`

func (q *Queries) ResetStudentStatuses(ctx context.Context) (int64, error) {
	res, err := q.db.ExecContext(ctx, resetStudentStatuses)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const promoteScholars = `
UPDATE accounts SET scholarship_status = 'SCHOLAR'
WHERE account_type = 'STUDENT'
  AND username IN (SELECT username FROM applications WHERE status = 'ACCEPTED')`

func (q *Queries) PromoteScholars(ctx context.Context) (int64, error) {
	res, err := q.db.ExecContext(ctx, promoteScholars)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const reconcileAccountQuery = `
UPDATE accounts SET scholarship_status = CASE
    WHEN EXISTS (SELECT 1 FROM applications WHERE applications.username = accounts.username AND status = 'ACCEPTED')
    THEN 'SCHOLAR' ELSE 'NON-SCHOLAR' END
WHERE username = ? AND account_type = 'STUDENT'
RETURNING scholarship_status`

// ReconcileAccount recomputes one student's status. sql.ErrNoRows means the
// account does not exist or is not a student.
func (q *Queries) ReconcileAccount(ctx context.Context, username string) (string, error) {
	var status string
	err := q.db.QueryRowContext(ctx, reconcileAccountQuery, username).Scan(&status)
	return status, err
}

const getScholarshipStatus = `SELECT scholarship_status FROM accounts WHERE username = ?`

func (q *Queries) GetScholarshipStatus(ctx context.Context, username string) (string, error) {
	var status string
	err := q.db.QueryRowContext(ctx, getScholarshipStatus, username).Scan(&status)
	return status, err
}

const applicationExists = `SELECT COUNT(*) FROM applications WHERE username = ? AND scholarship_name = ?`

func (q *Queries) ApplicationExists(ctx context.Context, username, scholarship string) (bool, error) {
	var n int64
	if err := q.db.QueryRowContext(ctx, applicationExists, username, scholarship).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

const createApplication = `
INSERT INTO applications (
    username, scholarship_name, status, average, first_name, last_name, middle_name, suffix,
    email, municipality, college, program, year_level
) VALUES (?, ?, 'PENDING', ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

type CreateApplicationParams struct {
	Username        string
	ScholarshipName string
	Average         float64
	FirstName       string
	LastName        string
	MiddleName      string
	Suffix          string
	Email           string
	Municipality    string
	College         string
	Program         string
	YearLevel       string
}

func (q *Queries) CreateApplication(ctx context.Context, arg CreateApplicationParams) (Application, error) {
	res, err := q.db.ExecContext(ctx, createApplication,
		arg.Username, arg.ScholarshipName, arg.Average, arg.FirstName, arg.LastName, arg.MiddleName, arg.Suffix,
		arg.Email, arg.Municipality, arg.College, arg.Program, arg.YearLevel,
	)
	if err != nil {
		return Application{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Application{}, err
	}
	return q.GetApplication(ctx, id)
}

const getApplication = `SELECT ` + applicationColumns + ` FROM applications WHERE id = ?`

func (q *Queries) GetApplication(ctx context.Context, id int64) (Application, error) {
	return scanApplication(q.db.QueryRowContext(ctx, getApplication, id))
}

const listApplicationsByUsername = `SELECT ` + applicationColumns + ` FROM applications WHERE username = ? ORDER BY id`

func (q *Queries) ListApplicationsByUsername(ctx context.Context, username string) ([]Application, error) {
	return q.listApplications(ctx, listApplicationsByUsername, username)
}

const listApplications = `SELECT ` + applicationColumns + ` FROM applications ORDER BY id`

func (q *Queries) ListApplications(ctx context.Context) ([]Application, error) {
	return q.listApplications(ctx, listApplications)
}

const listApplicationsByStatus = `SELECT ` + applicationColumns + ` FROM applications WHERE status = ? ORDER BY id`

func (q *Queries) ListApplicationsByStatus(ctx context.Context, status string) ([]Application, error) {
	return q.listApplications(ctx, listApplicationsByStatus, status)
}

func (q *Queries) listApplications(ctx context.Context, query string, args ...interface{}) ([]Application, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

const updateApplicationStatus = `
UPDATE applications SET status = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND status = ?`

// UpdateApplicationStatus is a compare-and-set on the current status.
func (q *Queries) UpdateApplicationStatus(ctx context.Context, id int64, from, to string) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateApplicationStatus, to, id, from)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countStudentsByStatus = `
SELECT
    COALESCE(SUM(CASE WHEN scholarship_status = 'SCHOLAR' THEN 1 ELSE 0 END), 0) AS scholars,
    COALESCE(SUM(CASE WHEN scholarship_status <> 'SCHOLAR' THEN 1 ELSE 0 END), 0) AS non_scholars
FROM accounts
WHERE account_type = 'STUDENT'`

func (q *Queries) CountStudentsByStatus(ctx context.Context) (scholars, nonScholars int64, err error) {
	err = q.db.QueryRowContext(ctx, countStudentsByStatus).Scan(&scholars, &nonScholars)
	return scholars, nonScholars, err
}

const countStudentsByMunicipality = `
SELECT municipality,
       SUM(CASE WHEN scholarship_status = 'SCHOLAR' THEN 1 ELSE 0 END) AS scholars,
       SUM(CASE WHEN scholarship_status <> 'SCHOLAR' THEN 1 ELSE 0 END) AS non_scholars
FROM accounts
WHERE account_type = 'STUDENT'
GROUP BY municipality
ORDER BY municipality`

type MunicipalityStatusRow struct {
	Municipality string
	Scholars     int64
	NonScholars  int64
}

func (q *Queries) CountStudentsByMunicipality(ctx context.Context) ([]MunicipalityStatusRow, error) {
	rows, err := q.db.QueryContext(ctx, countStudentsByMunicipality)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MunicipalityStatusRow
	for rows.Next() {
		var r MunicipalityStatusRow
		if err := rows.Scan(&r.Municipality, &r.Scholars, &r.NonScholars); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

// GroupCountRow is a (key, count) pair from a GROUP BY query.
type GroupCountRow struct {
	Key   string
	Count int64
}

func (q *Queries) groupCounts(ctx context.Context, query string, args ...interface{}) ([]GroupCountRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GroupCountRow
	for rows.Next() {
		var r GroupCountRow
		if err := rows.Scan(&r.Key, &r.Count); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const countAcceptedByScholarship = `
SELECT scholarship_name, COUNT(*)
FROM applications
WHERE status = 'ACCEPTED'
GROUP BY scholarship_name
ORDER BY scholarship_name`

func (q *Queries) CountAcceptedByScholarship(ctx context.Context) ([]GroupCountRow, error) {
	return q.groupCounts(ctx, countAcceptedByScholarship)
}

const countAcceptedByCollege = `
SELECT college, COUNT(*)
FROM applications
WHERE scholarship_name = ? AND status = 'ACCEPTED'
GROUP BY college`

func (q *Queries) CountAcceptedByCollege(ctx context.Context, scholarship string) ([]GroupCountRow, error) {
	return q.groupCounts(ctx, countAcceptedByCollege, scholarship)
}

const countAcceptedByProgram = `
SELECT program, COUNT(*)
FROM applications
WHERE scholarship_name = ? AND college = ? AND status = 'ACCEPTED'
GROUP BY program`

func (q *Queries) CountAcceptedByProgram(ctx context.Context, scholarship, college string) ([]GroupCountRow, error) {
	return q.groupCounts(ctx, countAcceptedByProgram, scholarship, college)
}

const countAcceptedByMunicipalityAndScholarship = `
SELECT municipality, scholarship_name, COUNT(*)
FROM applications
WHERE status = 'ACCEPTED'
GROUP BY municipality, scholarship_name
ORDER BY municipality, scholarship_name`

type MunicipalityScholarshipRow struct {
	Municipality    string
	ScholarshipName string
	Count           int64
}

func (q *Queries) CountAcceptedByMunicipalityAndScholarship(ctx context.Context) ([]MunicipalityScholarshipRow, error) {
	rows, err := q.db.QueryContext(ctx, countAcceptedByMunicipalityAndScholarship)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MunicipalityScholarshipRow
	for rows.Next() {
		var r MunicipalityScholarshipRow
		if err := rows.Scan(&r.Municipality, &r.ScholarshipName, &r.Count); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const countApplications = `SELECT COUNT(*) FROM applications`

func (q *Queries) CountApplications(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countApplications).Scan(&n)
	return n, err
}
