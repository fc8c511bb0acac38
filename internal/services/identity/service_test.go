package identity_test

import (
	"testing"

	"mizu/internal/services/identity"
	"mizu/internal/store"
)

func TestGenerateIdentityThenFingerprintMatches(t *testing.T) {
	s := identity.New(store.NewIdentityFileStore(t.TempDir()))

	_, fp, err := s.GenerateIdentity("pass")
	if err != nil {
		t.Fatalf("GenerateIdentity: %v", err)
	}

	got, err := s.FingerprintIdentity("pass")
	if err != nil {
		t.Fatalf("FingerprintIdentity: %v", err)
	}
	if got != fp {
		t.Fatalf("got %q, want %q", got, fp)
	}
}

func TestLoadIdentityWrongPassphraseFails(t *testing.T) {
	s := identity.New(store.NewIdentityFileStore(t.TempDir()))

	if _, _, err := s.GenerateIdentity("correct"); err != nil {
		t.Fatalf("GenerateIdentity: %v", err)
	}
	if _, err := s.LoadIdentity("wrong"); err == nil {
		t.Fatal("expected error with wrong passphrase")
	}
}
