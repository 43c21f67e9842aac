package auth

import (
	"errors"
	"testing"
	"time"

	"scholarhub/internal/core"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "test-secret", TTL: time.Hour, Issuer: "scholarhub"})
	token, expiresIn, err := svc.Issue(core.Account{Username: "admin1", Type: core.Admin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if expiresIn != 3600 {
		t.Fatalf("expiresIn = %d", expiresIn)
	}
	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Username != "admin1" || !claims.IsAdmin() {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestTokenRejections(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "test-secret", TTL: time.Minute, Issuer: "scholarhub"})
	token, _, err := svc.Issue(core.Account{Username: "jdoe", Type: core.Student})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenService(TokenConfig{Secret: "other", Issuer: "scholarhub"})
		if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewTokenService(TokenConfig{Secret: "test-secret", Issuer: "elsewhere"})
		if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { svc.now = time.Now }()
		if _, err := svc.Validate(token); !errors.Is(err, ErrExpiredToken) {
			t.Fatalf("expected ErrExpiredToken, got %v", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := svc.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})
}

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer   xyz", "xyz", true},
		{"Token abc", "", false},
		{"Bearer", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ExtractBearerToken(tc.header)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("%q: got %q, %v", tc.header, got, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%q: expected error", tc.header)
		}
	}
}
