package store_test

import (
	"testing"

	"mizu/internal/domain"
	"mizu/internal/store"
)

func TestIdentitySaveLoadRoundTrip(t *testing.T) {
	home := t.TempDir()
	s := store.NewIdentityFileStore(home)

	id := domain.Identity{XPub: domain.IdentityPublicKey{1}, XPriv: domain.IdentityPrivateKey{2}}
	if err := s.SaveIdentity("pass", id); err != nil {
		t.Fatalf("SaveIdentity: %v", err)
	}

	got, err := s.LoadIdentity("pass")
	if err != nil {
		t.Fatalf("LoadIdentity: %v", err)
	}
	if got != id {
		t.Fatalf("got %+v, want %+v", got, id)
	}
}

func TestIdentityWrongPassphraseFails(t *testing.T) {
	home := t.TempDir()
	s := store.NewIdentityFileStore(home)

	id := domain.Identity{XPub: domain.IdentityPublicKey{1}, XPriv: domain.IdentityPrivateKey{2}}
	if err := s.SaveIdentity("correct", id); err != nil {
		t.Fatalf("SaveIdentity: %v", err)
	}
	if _, err := s.LoadIdentity("wrong"); err == nil {
		t.Fatal("expected error with wrong passphrase")
	}
}
