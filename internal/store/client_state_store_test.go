package store_test

import (
	"bytes"
	"testing"

	"mizu/internal/store"
)

func TestClientStateSaveLoadIsScopedToPairing(t *testing.T) {
	home := t.TempDir()
	s := store.NewClientStateFileStore(home)

	aliceToBob := []byte("alice-bob-state")
	if err := s.SaveClientState("alice", "bob", aliceToBob); err != nil {
		t.Fatalf("SaveClientState: %v", err)
	}

	got, ok, err := s.LoadClientState("alice", "bob")
	if err != nil || !ok || !bytes.Equal(got, aliceToBob) {
		t.Fatalf("LoadClientState: got %q, ok=%v, err=%v", got, ok, err)
	}

	if _, ok, err := s.LoadClientState("bob", "alice"); err != nil || ok {
		t.Fatalf("LoadClientState(reverse pairing): expected ok=false, got ok=%v, err=%v", ok, err)
	}

	aliceToCarol := []byte("alice-carol-state")
	if err := s.SaveClientState("alice", "carol", aliceToCarol); err != nil {
		t.Fatalf("SaveClientState: %v", err)
	}
	got, ok, err = s.LoadClientState("alice", "bob")
	if err != nil || !ok || !bytes.Equal(got, aliceToBob) {
		t.Fatalf("LoadClientState(alice,bob) after unrelated save: got %q, ok=%v, err=%v", got, ok, err)
	}
}
