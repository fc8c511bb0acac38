package store_test

import (
	"testing"

	"mizu/internal/domain"
	"mizu/internal/store"
)

func TestHistoryAppendAndLastSeen(t *testing.T) {
	home := t.TempDir()
	s := store.NewHistoryFileStore(home)

	ts, err := s.LastSeen("alice", "bob")
	if err != nil || ts != 0 {
		t.Fatalf("LastSeen before any message: got %d, err=%v", ts, err)
	}

	msg := domain.DecryptedMessage{From: "bob", Plaintext: []byte("hi"), Timestamp: 5}
	if err := s.AppendHistory("alice", "bob", msg); err != nil {
		t.Fatalf("AppendHistory: %v", err)
	}
	if err := s.SetLastSeen("alice", "bob", msg.Timestamp); err != nil {
		t.Fatalf("SetLastSeen: %v", err)
	}

	ts, err = s.LastSeen("alice", "bob")
	if err != nil || ts != 5 {
		t.Fatalf("LastSeen after message: got %d, err=%v", ts, err)
	}

	if ts, err := s.LastSeen("alice", "carol"); err != nil || ts != 0 {
		t.Fatalf("LastSeen for unrelated pairing: got %d, err=%v", ts, err)
	}
}
