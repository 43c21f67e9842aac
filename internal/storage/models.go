package storage

import (
	"database/sql"
	"time"
)

type Account struct {
	ID                int64
	AccountType       string
	Username          string
	Email             string
	PasswordHash      string
	ScholarshipStatus string
	ProfilePhoto      []byte
	FirstName         string
	LastName          string
	MiddleInitial     string
	Suffix            string
	CivilStatus       string
	Gender            string
	DateOfBirth       string
	Age               int64
	StudentID         sql.NullString
	College           string
	YearLevel         string
	Program           string
	Municipality      string
	PhoneNumber       string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Application struct {
	ID              int64
	Username        string
	ScholarshipName string
	Status          string
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
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
