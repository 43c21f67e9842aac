package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"scholarhub/internal/auth"
	"scholarhub/internal/catalog"
	"scholarhub/internal/core"
)

// AccountService handles signup, login and self-service profile changes.
type AccountService struct {
	store   AccountStore
	hasher  *auth.Hasher
	catalog *catalog.Catalog
	policy  core.SignupPolicy
}

func NewAccountService(store AccountStore, hasher *auth.Hasher, cat *catalog.Catalog, policy core.SignupPolicy) *AccountService {
	return &AccountService{
		store:   store,
		hasher:  hasher,
		catalog: cat,
		policy:  policy,
	}
}

// Signup validates and creates an account. Username and email uniqueness is
// enforced by the store and surfaces as core.ErrUsernameExists or
// core.ErrEmailExists.
func (s *AccountService) Signup(ctx context.Context, req core.Signup) (core.Account, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := req.Validate(s.policy); err != nil {
		return core.Account{}, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return core.Account{}, err
	}

	acct, err := s.store.CreateAccount(ctx, req.Type, req.Username, req.Email, hash)
	if err != nil {
		if core.IsConflict(err) {
			slog.InfoContext(ctx, "Signup rejected", "username", req.Username, "reason", err)
		}
		return core.Account{}, err
	}
	return acct, nil
}

// Login accepts a username or an email. Accounts still holding a legacy
// SHA-256 digest are re-hashed with bcrypt on their first successful login.
func (s *AccountService) Login(ctx context.Context, login, password string) (core.Account, error) {
	acct, err := s.store.GetAccountByLogin(ctx, login)
	if errors.Is(err, core.ErrAccountNotFound) {
		return core.Account{}, core.ErrInvalidCredentials
	}
	if err != nil {
		return core.Account{}, err
	}

	if auth.IsLegacyDigest(acct.PasswordHash) {
		if !auth.CheckLegacyDigest(acct.PasswordHash, password) {
			return core.Account{}, core.ErrInvalidCredentials
		}
		s.upgradeLegacyHash(ctx, &acct, password)
		return acct, nil
	}

	if !s.hasher.Check(acct.PasswordHash, password) {
		return core.Account{}, core.ErrInvalidCredentials
	}
	return acct, nil
}

func (s *AccountService) upgradeLegacyHash(ctx context.Context, acct *core.Account, password string) {
	hash, err := s.hasher.Hash(password)
	if err == nil {
		err = s.store.UpdatePasswordHash(ctx, acct.Username, hash)
	}
	if err != nil {
		// the login itself is valid; retry on the next one
		slog.WarnContext(ctx, "Failed to upgrade legacy password hash", "username", acct.Username, "error", err)
		return
	}
	acct.PasswordHash = hash
	slog.InfoContext(ctx, "Legacy password hash upgraded", "username", acct.Username)
}

func (s *AccountService) Profile(ctx context.Context, username string) (core.Account, error) {
	return s.store.GetAccount(ctx, username)
}

// UpdateProfile checks the profile against the catalog and stores it.
func (s *AccountService) UpdateProfile(ctx context.Context, username string, p core.Profile) (core.Account, error) {
	if err := p.Validate(); err != nil {
		return core.Account{}, err
	}
	if err := s.checkCatalog(p); err != nil {
		return core.Account{}, err
	}
	return s.store.UpdateProfile(ctx, username, p)
}

func (s *AccountService) checkCatalog(p core.Profile) error {
	if s.catalog == nil {
		return nil
	}
	if p.Municipality != "" && !s.catalog.HasMunicipality(p.Municipality) {
		return fmt.Errorf("%w: %q", core.ErrUnknownMunicipality, p.Municipality)
	}
	if p.College != "" && s.catalog.Programs(p.College) == nil {
		return fmt.Errorf("%w: %q", core.ErrUnknownCollege, p.College)
	}
	if p.Program != "" && !s.catalog.HasCollegeProgram(p.College, p.Program) {
		return fmt.Errorf("%w: %q", core.ErrUnknownProgram, p.Program)
	}
	if p.YearLevel != "" && !s.catalog.HasYearLevel(p.YearLevel) {
		return fmt.Errorf("%w: %q", core.ErrUnknownYearLevel, p.YearLevel)
	}
	return nil
}

// ChangePassword verifies the current password and stores a bcrypt hash of
// the new one.
func (s *AccountService) ChangePassword(ctx context.Context, username, current, next string) error {
	acct, err := s.store.GetAccount(ctx, username)
	if err != nil {
		return err
	}

	ok := false
	if auth.IsLegacyDigest(acct.PasswordHash) {
		ok = auth.CheckLegacyDigest(acct.PasswordHash, current)
	} else {
		ok = s.hasher.Check(acct.PasswordHash, current)
	}
	if !ok {
		return core.ErrInvalidCredentials
	}

	if len(next) < s.policy.MinPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", core.ErrPasswordTooShort, s.policy.MinPasswordLength)
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	return s.store.UpdatePasswordHash(ctx, username, hash)
}

func (s *AccountService) IsAdmin(ctx context.Context, username string) (bool, error) {
	t, err := s.store.AccountType(ctx, username)
	if err != nil {
		return false, err
	}
	return t == core.Admin, nil
}
