package core

import "errors"

// Storage-level outcomes surfaced to callers.
var (
	ErrUsernameExists      = errors.New("username already exists")
	ErrEmailExists         = errors.New("email already exists")
	ErrStudentIDExists     = errors.New("student ID already exists")
	ErrAccountNotFound     = errors.New("account not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrNotStudent          = errors.New("only student accounts can apply")
	ErrPermissionDenied    = errors.New("permission denied")
)

// IsConflict reports whether err is one of the uniqueness violations.
func IsConflict(err error) bool {
	return errors.Is(err, ErrUsernameExists) ||
		errors.Is(err, ErrEmailExists) ||
		errors.Is(err, ErrStudentIDExists) ||
		errors.Is(err, ErrDuplicateApplication)
}

// IsNotFound reports whether err is a missing account or application.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound) || errors.Is(err, ErrApplicationNotFound)
}
