package auth

import (
	"testing"
	"time"
)

const testTokenSecret = "test-secret-key-0123456789abcdef"

func TestIssueAndVerify(t *testing.T) {
	ti := NewTokenIssuer(testTokenSecret, 30*time.Minute)

	tokenStr, err := ti.Issue(42, "alice", "client")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := ti.Verify(tokenStr)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	if claims.UserID() != 42 {
		t.Errorf("UserID() = %d, want 42", claims.UserID())
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q, want %q", claims.Username, "alice")
	}
	if claims.Role != "client" {
		t.Errorf("Role = %q, want %q", claims.Role, "client")
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	ti := NewTokenIssuer(testTokenSecret, -time.Minute)

	tokenStr, err := ti.Issue(42, "alice", "client")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := ti.Verify(tokenStr); err == nil {
		t.Error("Verify() expected error for expired token, got nil")
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	ti := NewTokenIssuer(testTokenSecret, 30*time.Minute)
	other := NewTokenIssuer("another-secret-key-0123456789abc", 30*time.Minute)

	tokenStr, err := ti.Issue(42, "alice", "client")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := other.Verify(tokenStr); err == nil {
		t.Error("Verify() expected error for token signed with different secret, got nil")
	}
}

func TestVerifyGarbage(t *testing.T) {
	ti := NewTokenIssuer(testTokenSecret, 30*time.Minute)

	for _, tok := range []string{"", "not.a.token", "aaaa.bbbb.cccc"} {
		if _, err := ti.Verify(tok); err == nil {
			t.Errorf("Verify(%q) expected error, got nil", tok)
		}
	}
}
