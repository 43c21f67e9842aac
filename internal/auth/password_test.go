package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
)

func TestHasher(t *testing.T) {
	h := NewHasher(4)
	hash, err := h.Hash("secret123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Fatalf("expected bcrypt hash, got %q", hash)
	}
	if !h.Check(hash, "secret123") {
		t.Fatal("expected password to match")
	}
	if h.Check(hash, "secret124") {
		t.Fatal("expected mismatch")
	}

	other, _ := h.Hash("secret123")
	if other == hash {
		t.Fatal("hashes must be salted")
	}

	if _, err := h.Hash(strings.Repeat("x", 73)); err != ErrPasswordTooLong {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}

func TestNewHasherClampsCost(t *testing.T) {
	if h := NewHasher(1); h.cost != DefaultCost {
		t.Fatalf("cost = %d", h.cost)
	}
	if h := NewHasher(99); h.cost != DefaultCost {
		t.Fatalf("cost = %d", h.cost)
	}
}

func TestLegacyDigest(t *testing.T) {
	sum := sha256.Sum256([]byte("oldpass99"))
	digest := hex.EncodeToString(sum[:])

	if !IsLegacyDigest(digest) {
		t.Fatal("expected sha256 hex to be detected")
	}
	if IsLegacyDigest("$2a$04$abcdefghijklmnopqrstuu") {
		t.Fatal("bcrypt hash is not legacy")
	}
	if IsLegacyDigest(strings.Repeat("z", 64)) {
		t.Fatal("non-hex string is not legacy")
	}
	if !CheckLegacyDigest(strings.ToUpper(digest), "oldpass99") {
		t.Fatal("expected legacy digest to verify")
	}
	if CheckLegacyDigest(digest, "wrong") {
		t.Fatal("expected legacy mismatch")
	}
}
