package store

import (
	"fmt"
	"path/filepath"
	"sync"

	"mizu/internal/domain"
)

const (
	historyFile = "history.json"
	lastSeenFile = "last_seen.json"
)

// HistoryFileStore keeps decrypted message history and the last-seen
// timestamp per (me, peer) pairing, so repeated fetches from the
// transport don't get replayed into the displayed history twice.
type HistoryFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewHistoryFileStore returns a HistoryFileStore rooted at dir.
func NewHistoryFileStore(dir string) *HistoryFileStore {
	return &HistoryFileStore{dir: dir}
}

func historyKey(me, peer domain.Address) string {
	return fmt.Sprintf("%s|%s", me.String(), peer.String())
}

// AppendHistory records msg under the (me, peer) pairing's history.
func (s *HistoryFileStore) AppendHistory(me, peer domain.Address, msg domain.DecryptedMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, historyFile)
	all := make(map[string][]domain.DecryptedMessage)
	if err := readJSON(path, &all); err != nil {
		return err
	}
	key := historyKey(me, peer)
	all[key] = append(all[key], msg)
	return writeJSON(path, all, 0o600)
}

// LastSeen returns the last-seen timestamp recorded for (me, peer), or
// zero if none has been recorded yet.
func (s *HistoryFileStore) LastSeen(me, peer domain.Address) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, lastSeenFile)
	m := make(map[string]int64)
	if err := readJSON(path, &m); err != nil {
		return 0, err
	}
	return m[historyKey(me, peer)], nil
}

// SetLastSeen records the last-seen timestamp for (me, peer).
func (s *HistoryFileStore) SetLastSeen(me, peer domain.Address, timestamp int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, lastSeenFile)
	m := make(map[string]int64)
	if err := readJSON(path, &m); err != nil {
		return err
	}
	m[historyKey(me, peer)] = timestamp
	return writeJSON(path, m, 0o600)
}

var _ domain.HistoryStore = (*HistoryFileStore)(nil)
