package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"scholarhub/internal/core"
)

// uniqueViolations maps the column list SQLite reports for a UNIQUE failure
// to the domain error callers match on.
var uniqueViolations = []struct {
	columns string
	err     error
}{
	{"applications.username, applications.scholarship_name", core.ErrDuplicateApplication},
	{"accounts.username", core.ErrUsernameExists},
	{"accounts.email", core.ErrEmailExists},
	{"accounts.student_id", core.ErrStudentIDExists},
}

func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || serr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

// mapError turns driver errors into domain errors, wrapping anything else
// with op for context.
func mapError(op string, err error, notFound error) error {
	if err == nil {
		return nil
	}
	if notFound != nil && errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	if isUniqueViolation(err) {
		msg := err.Error()
		for _, v := range uniqueViolations {
			if strings.Contains(msg, v.columns) {
				return v.err
			}
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
