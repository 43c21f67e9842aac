package core

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

const (
	Student AccountType = "STUDENT"
	Admin   AccountType = "ADMIN"

	Scholar    ScholarStatus = "SCHOLAR"
	NonScholar ScholarStatus = "NON-SCHOLAR"
)

type (
	AccountType   string
	ScholarStatus string

	// Profile is the personal and academic record filled in after signup.
	Profile struct {
		FirstName     string
		LastName      string
		MiddleInitial string
		Suffix        string
		CivilStatus   string
		Gender        string
		DateOfBirth   string // YYYY-MM-DD
		Age           int
		StudentID     string
		College       string
		YearLevel     string
		Program       string
		Municipality  string
		PhoneNumber   string
		Photo         []byte
	}

	Account struct {
		ID            int64
		Type          AccountType
		Username      string
		Email         string
		PasswordHash  string
		ScholarStatus ScholarStatus
		Profile       Profile
		CreatedAt     time.Time
		UpdatedAt     time.Time
	}

	// Signup carries the credentials supplied when an account is created.
	Signup struct {
		Type     AccountType
		Username string
		Email    string
		Password string
	}

	// SignupPolicy holds the institution-specific signup rules.
	SignupPolicy struct {
		EmailDomain       string // e.g. "@bcd.scholarship.edu.ph"; empty disables the check
		MinPasswordLength int
	}
)

var (
	ErrEmptyUsername      = errors.New("username is required")
	ErrUsernameTooLong    = errors.New("username too long (max 64 characters)")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrEmailDomain        = errors.New("email is not in the institutional domain")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrProfileIncomplete  = errors.New("profile is incomplete")
	ErrInvalidAge         = errors.New("invalid age")
	ErrInvalidBirthDate   = errors.New("invalid date of birth (expected YYYY-MM-DD)")

	ErrUnknownMunicipality = errors.New("unknown municipality")
	ErrUnknownCollege      = errors.New("unknown college")
	ErrUnknownProgram      = errors.New("program is not offered by the selected college")
	ErrUnknownYearLevel    = errors.New("unknown year level")
)

func (t AccountType) Valid() bool {
	return t == Student || t == Admin
}

func (t AccountType) String() string {
	return string(t)
}

func (s ScholarStatus) Valid() bool {
	return s == Scholar || s == NonScholar
}

func (s ScholarStatus) String() string {
	return string(s)
}

// ParseAccountType accepts any casing of STUDENT or ADMIN.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidAccountType, s)
	}
	return t, nil
}

// DefaultSignupPolicy mirrors the rules enforced by the registration form.
func DefaultSignupPolicy() SignupPolicy {
	return SignupPolicy{
		EmailDomain:       "@bcd.scholarship.edu.ph",
		MinPasswordLength: 8,
	}
}

func (s Signup) Validate(p SignupPolicy) error {
	if strings.TrimSpace(s.Username) == "" {
		return ErrEmptyUsername
	}
	if len(s.Username) > 64 {
		return ErrUsernameTooLong
	}
	if !s.Type.Valid() {
		return ErrInvalidAccountType
	}
	addr, err := mail.ParseAddress(s.Email)
	if err != nil || addr.Address != strings.TrimSpace(s.Email) {
		return ErrInvalidEmail
	}
	if p.EmailDomain != "" && !strings.HasSuffix(strings.ToLower(s.Email), strings.ToLower(p.EmailDomain)) {
		return ErrEmailDomain
	}
	if len(s.Password) < p.MinPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrPasswordTooShort, p.MinPasswordLength)
	}
	return nil
}

// Validate checks the shape of the profile fields that are present.
func (p Profile) Validate() error {
	if p.Age < 0 || p.Age > 150 {
		return ErrInvalidAge
	}
	if p.DateOfBirth != "" {
		if _, err := time.Parse("2006-01-02", p.DateOfBirth); err != nil {
			return ErrInvalidBirthDate
		}
	}
	return nil
}

// Complete reports whether every field required to apply for a scholarship is set.
// Admin profiles do not carry academic fields.
func (p Profile) Complete(t AccountType) bool {
	required := []string{p.FirstName, p.LastName, p.CivilStatus, p.Gender, p.DateOfBirth, p.Municipality, p.PhoneNumber}
	if t == Student {
		required = append(required, p.StudentID, p.College, p.YearLevel, p.Program)
	}
	for _, v := range required {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return p.Age > 0
}

// FullName joins the name parts the way they are printed on the admin cards.
func (p Profile) FullName() string {
	parts := []string{p.FirstName}
	if p.MiddleInitial != "" {
		parts = append(parts, p.MiddleInitial)
	}
	parts = append(parts, p.LastName)
	if p.Suffix != "" {
		parts = append(parts, p.Suffix)
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func (a Account) IsAdmin() bool {
	return a.Type == Admin
}
