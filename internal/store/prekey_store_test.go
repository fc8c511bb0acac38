package store_test

import (
	"testing"

	"mizu/internal/domain"
	"mizu/internal/store"
)

func TestPrekeyRotationRetainsPrevious(t *testing.T) {
	home := t.TempDir()
	s := store.NewPrekeyFileStore(home)

	first := domain.PrekeyKeyPair{ID: "one", Pub: domain.PrekeyPublicKey{1}}
	if err := s.SaveCurrent(first); err != nil {
		t.Fatalf("SaveCurrent: %v", err)
	}

	second := domain.PrekeyKeyPair{ID: "two", Pub: domain.PrekeyPublicKey{2}}
	if err := s.RetainPrevious(first, 100); err != nil {
		t.Fatalf("RetainPrevious: %v", err)
	}
	if err := s.SaveCurrent(second); err != nil {
		t.Fatalf("SaveCurrent: %v", err)
	}

	current, ok, err := s.LoadCurrent()
	if err != nil || !ok || current.ID != "two" {
		t.Fatalf("LoadCurrent: got %+v, ok=%v, err=%v", current, ok, err)
	}

	previous, ok, err := s.LoadPrevious()
	if err != nil || !ok || previous.ID != "one" {
		t.Fatalf("LoadPrevious: got %+v, ok=%v, err=%v", previous, ok, err)
	}

	if _, ok, err := s.Find("one"); err != nil || !ok {
		t.Fatalf("Find(previous): ok=%v, err=%v", ok, err)
	}
	if _, ok, err := s.Find("two"); err != nil || !ok {
		t.Fatalf("Find(current): ok=%v, err=%v", ok, err)
	}
	if _, ok, err := s.Find("ghost"); err != nil || ok {
		t.Fatalf("Find(unknown): expected ok=false, got ok=%v, err=%v", ok, err)
	}
}

func TestPrekeyLoadCurrentMissingIsNotError(t *testing.T) {
	home := t.TempDir()
	s := store.NewPrekeyFileStore(home)

	_, ok, err := s.LoadCurrent()
	if err != nil {
		t.Fatalf("LoadCurrent: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false before any prekey is saved")
	}
}
