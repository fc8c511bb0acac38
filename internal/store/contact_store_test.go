package store_test

import (
	"testing"

	"mizu/internal/domain"
	"mizu/internal/store"
)

func TestContactSaveLoadList(t *testing.T) {
	home := t.TempDir()
	s := store.NewContactFileStore(home)

	alice := domain.UserData{IdentityKey: domain.IdentityPublicKey{1}, Prekey: domain.PrekeyPublicKey{2}}
	if err := s.SaveContact("alice", alice); err != nil {
		t.Fatalf("SaveContact: %v", err)
	}

	got, ok, err := s.LoadContact("alice")
	if err != nil || !ok || got.IdentityKey != alice.IdentityKey {
		t.Fatalf("LoadContact: got %+v, ok=%v, err=%v", got, ok, err)
	}

	if _, ok, err := s.LoadContact("bob"); err != nil || ok {
		t.Fatalf("LoadContact(unknown): expected ok=false, got ok=%v, err=%v", ok, err)
	}

	bob := domain.UserData{IdentityKey: domain.IdentityPublicKey{3}}
	if err := s.SaveContact("bob", bob); err != nil {
		t.Fatalf("SaveContact: %v", err)
	}

	all, err := s.ListContacts()
	if err != nil {
		t.Fatalf("ListContacts: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d contacts, want 2", len(all))
	}
}
