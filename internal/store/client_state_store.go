package store

import (
	"encoding/base64"
	"path/filepath"
	"sync"

	"mizu/internal/domain"
)

const clientStateFile = "client_state.json"

// ClientStateFileStore persists the serialized Outer Client for each
// (me, peer) pairing — the X3DH identity, Double Ratchet session, and
// any unacknowledged first message — so a restart can resume an
// in-progress conversation instead of re-running a handshake.
type ClientStateFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewClientStateFileStore returns a ClientStateFileStore rooted at dir.
func NewClientStateFileStore(dir string) *ClientStateFileStore {
	return &ClientStateFileStore{dir: dir}
}

func pairingKey(me, peer domain.Address) string {
	return me.String() + "\x00" + peer.String()
}

// SaveClientState persists the opaque serialized state for (me, peer).
func (s *ClientStateFileStore) SaveClientState(me, peer domain.Address, state []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, clientStateFile)
	m := make(map[string]string)
	if err := readJSON(path, &m); err != nil {
		return err
	}
	m[pairingKey(me, peer)] = base64.StdEncoding.EncodeToString(state)
	return writeJSON(path, m, 0o600)
}

// LoadClientState loads the opaque serialized state for (me, peer).
func (s *ClientStateFileStore) LoadClientState(me, peer domain.Address) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, clientStateFile)
	m := make(map[string]string)
	if err := readJSON(path, &m); err != nil {
		return nil, false, err
	}
	encoded, ok := m[pairingKey(me, peer)]
	if !ok {
		return nil, false, nil
	}
	state, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, false, err
	}
	return state, true, nil
}

var _ domain.ClientStateStore = (*ClientStateFileStore)(nil)
