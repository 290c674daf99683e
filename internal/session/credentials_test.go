package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStore_TokenRoundTrip(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if got := s.Token(); got != "" {
		t.Errorf("expected empty token on fresh store, got %q", got)
	}

	if err := s.SetToken("tok-123"); err != nil {
		t.Fatalf("SetToken failed: %v", err)
	}
	if got := s.Token(); got != "tok-123" {
		t.Errorf("expected tok-123, got %q", got)
	}

	// Empty token removes the stored value
	if err := s.SetToken(""); err != nil {
		t.Fatalf("SetToken(\"\") failed: %v", err)
	}
	if got := s.Token(); got != "" {
		t.Errorf("expected token cleared, got %q", got)
	}
}

func TestStore_EmailIndependentOfToken(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := s.SetEmail("a@b.com"); err != nil {
		t.Fatalf("SetEmail failed: %v", err)
	}
	if got := s.Email(); got != "a@b.com" {
		t.Errorf("expected a@b.com, got %q", got)
	}
	if got := s.Token(); got != "" {
		t.Errorf("setting email must not touch the token, got %q", got)
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.SetToken("persist-me"); err != nil {
		t.Fatalf("SetToken failed: %v", err)
	}
	if err := s.SetEmail("user@example.com"); err != nil {
		t.Fatalf("SetEmail failed: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if got := reopened.Token(); got != "persist-me" {
		t.Errorf("expected persisted token, got %q", got)
	}
	if got := reopened.Email(); got != "user@example.com" {
		t.Errorf("expected persisted email, got %q", got)
	}
}

func TestStore_LogoutClearsBoth(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.SetToken("tok"); err != nil {
		t.Fatalf("SetToken failed: %v", err)
	}
	if err := s.SetEmail("a@b.com"); err != nil {
		t.Fatalf("SetEmail failed: %v", err)
	}

	if err := s.Logout(); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if s.Token() != "" || s.Email() != "" {
		t.Errorf("expected both cleared, got token=%q email=%q", s.Token(), s.Email())
	}

	// The cleared state persists too
	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if reopened.Token() != "" || reopened.Email() != "" {
		t.Errorf("logout did not persist, got token=%q email=%q", reopened.Token(), reopened.Email())
	}
}

func TestStore_LogoutIdempotent(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	// Nothing stored: logout must still succeed, any number of times
	if err := s.Logout(); err != nil {
		t.Fatalf("Logout on empty store failed: %v", err)
	}
	if err := s.Logout(); err != nil {
		t.Fatalf("second Logout failed: %v", err)
	}
	if s.Token() != "" || s.Email() != "" {
		t.Errorf("expected empty state, got token=%q email=%q", s.Token(), s.Email())
	}
}

func TestStore_CorruptFileRejected(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "credentials.json"), []byte("{not json"), 0600); err != nil {
		t.Fatalf("failed to write corrupt file: %v", err)
	}

	if _, err := Open(dir); err == nil {
		t.Error("expected error opening corrupt credential file")
	}
}
