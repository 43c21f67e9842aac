package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Pending  ApplicationStatus = "PENDING"
	Accepted ApplicationStatus = "ACCEPTED"
	Rejected ApplicationStatus = "REJECTED"
	Dropped  ApplicationStatus = "DROPPED"
)

// Averages are on the 1.0 (highest) to 5.0 (failing) grading scale.
const (
	MinAverage = 0.0
	MaxAverage = 5.0
)

type (
	ApplicationStatus string

	// Application is one scholarship submission. The profile fields are a
	// snapshot taken at submission time so reports stay stable when the
	// applicant later edits their profile.
	Application struct {
		ID           int64
		Username     string
		Scholarship  string
		Status       ApplicationStatus
		Average      float64
		FirstName    string
		LastName     string
		MiddleName   string
		Suffix       string
		Email        string
		Municipality string
		College      string
		Program      string
		YearLevel    string
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	// Transition is the outcome of an admin status change.
	Transition struct {
		Application   Application
		From          ApplicationStatus
		To            ApplicationStatus
		ScholarStatus ScholarStatus
	}
)

var (
	ErrInvalidStatus        = errors.New("invalid application status")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrEmptyScholarship     = errors.New("scholarship name is required")
	ErrUnknownScholarship   = errors.New("unknown scholarship program")
	ErrInvalidAverage       = errors.New("average must be between 0.0 and 5.0")
	ErrAverageAboveCeiling  = errors.New("average exceeds the allowed limit")
	ErrDuplicateApplication = errors.New("application already exists for this scholarship")
)

var transitions = map[ApplicationStatus][]ApplicationStatus{
	Pending:  {Accepted, Rejected},
	Accepted: {Dropped},
}

// ParseApplicationStatus accepts any casing of a known status.
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

func (s ApplicationStatus) Valid() bool {
	switch s {
	case Pending, Accepted, Rejected, Dropped:
		return true
	}
	return false
}

func (s ApplicationStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is possible.
func (s ApplicationStatus) IsTerminal() bool {
	return s == Rejected || s == Dropped
}

func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidateTransition returns ErrInvalidTransition wrapped with both states.
func ValidateTransition(from, to ApplicationStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// DeriveScholarStatus is the reconciliation policy: SCHOLAR iff at least one
// application is ACCEPTED.
func DeriveScholarStatus(statuses []ApplicationStatus) ScholarStatus {
	for _, s := range statuses {
		if s == Accepted {
			return Scholar
		}
	}
	return NonScholar
}

// ValidateAverage checks the scale and, when ceiling > 0, the qualification limit.
func ValidateAverage(avg, ceiling float64) error {
	if avg < MinAverage || avg > MaxAverage {
		return ErrInvalidAverage
	}
	if ceiling > 0 && avg > ceiling {
		return fmt.Errorf("%w (%.2f)", ErrAverageAboveCeiling, ceiling)
	}
	return nil
}

// NewApplication builds a PENDING application from the applicant's current profile.
func NewApplication(acct Account, scholarship string, average float64) Application {
	p := acct.Profile
	return Application{
		Username:     acct.Username,
		Scholarship:  strings.TrimSpace(scholarship),
		Status:       Pending,
		Average:      average,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		MiddleName:   p.MiddleInitial,
		Suffix:       p.Suffix,
		Email:        acct.Email,
		Municipality: p.Municipality,
		College:      p.College,
		Program:      p.Program,
		YearLevel:    p.YearLevel,
	}
}
