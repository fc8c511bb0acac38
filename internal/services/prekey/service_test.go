package prekey_test

import (
	"testing"

	"mizu/internal/services/prekey"
	"mizu/internal/store"
)

func TestCurrentBootstrapsAPrekeyWhenNoneExists(t *testing.T) {
	s := prekey.New(store.NewPrekeyFileStore(t.TempDir()))

	got, err := s.Current("pass")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if got.ID == "" {
		t.Fatal("expected a bootstrapped prekey id")
	}
}

func TestRotateRetainsPreviousAndChangesID(t *testing.T) {
	pkStore := store.NewPrekeyFileStore(t.TempDir())
	s := prekey.New(pkStore)

	first, err := s.Rotate("pass")
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	second, err := s.Rotate("pass")
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("expected rotation to produce a new id")
	}

	previous, ok, err := pkStore.LoadPrevious()
	if err != nil || !ok || previous.ID != first.ID {
		t.Fatalf("LoadPrevious: got %+v, ok=%v, err=%v", previous, ok, err)
	}
}
