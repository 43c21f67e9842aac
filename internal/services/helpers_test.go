package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"scholarhub/internal/amqp"
	"scholarhub/internal/auth"
	"scholarhub/internal/catalog"
	"scholarhub/internal/core"
	"scholarhub/internal/storage"
)

const domain = "@bcd.scholarship.edu.ph"

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "scholarhub.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newAccountService(repo *storage.SQLiteRepository) *AccountService {
	return NewAccountService(repo, auth.NewHasher(4), catalog.Default(), core.DefaultSignupPolicy())
}

func completeProfile(studentID, municipality, college, program string) core.Profile {
	return core.Profile{
		FirstName:    "Juan",
		LastName:     "Dela Cruz",
		CivilStatus:  "Single",
		Gender:       "Male",
		DateOfBirth:  "2004-05-06",
		Age:          20,
		StudentID:    studentID,
		College:      college,
		YearLevel:    "1st - Year",
		Program:      program,
		Municipality: municipality,
		PhoneNumber:  "09171234567",
	}
}

// mustStudent signs up a student with a complete profile.
func mustStudent(t *testing.T, svc *AccountService, username, municipality, college, program string) core.Account {
	t.Helper()
	ctx := context.Background()
	_, err := svc.Signup(ctx, core.Signup{
		Type:     core.Student,
		Username: username,
		Email:    username + domain,
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("signup %s: %v", username, err)
	}
	acct, err := svc.UpdateProfile(ctx, username, completeProfile("ID-"+username, municipality, college, program))
	if err != nil {
		t.Fatalf("profile %s: %v", username, err)
	}
	return acct
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []*amqp.ApplicationStatusMessage
	err  error
}

func (f *fakePublisher) PublishStatusChange(_ context.Context, msg *amqp.ApplicationStatusMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakePublisher) published() []*amqp.ApplicationStatusMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*amqp.ApplicationStatusMessage(nil), f.msgs...)
}

type countingInvalidator struct{ n int }

func (c *countingInvalidator) Invalidate() { c.n++ }

var errBroker = errors.New("broker unavailable")
