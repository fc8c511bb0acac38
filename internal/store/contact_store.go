package store

import (
	"path/filepath"
	"sync"

	"mizu/internal/domain"
)

const contactsFile = "contacts.json"

// ContactFileStore caches the last UserData fetched for each peer
// address, so resending to a peer you've already looked up doesn't
// require a fresh transport round trip.
type ContactFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewContactFileStore returns a ContactFileStore rooted at dir.
func NewContactFileStore(dir string) *ContactFileStore {
	return &ContactFileStore{dir: dir}
}

// SaveContact caches data for address, overwriting whatever was
// cached before.
func (s *ContactFileStore) SaveContact(address domain.Address, data domain.UserData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, contactsFile)
	m := map[domain.Address]domain.UserData{}
	if err := readJSON(path, &m); err != nil {
		return err
	}
	m[address] = data
	return writeJSON(path, m, 0o600)
}

// LoadContact returns the cached UserData for address, if any.
func (s *ContactFileStore) LoadContact(address domain.Address) (domain.UserData, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, contactsFile)
	m := map[domain.Address]domain.UserData{}
	if err := readJSON(path, &m); err != nil {
		return domain.UserData{}, false, err
	}
	data, ok := m[address]
	return data, ok, nil
}

// ListContacts returns every cached contact.
func (s *ContactFileStore) ListContacts() (map[domain.Address]domain.UserData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, contactsFile)
	m := map[domain.Address]domain.UserData{}
	if err := readJSON(path, &m); err != nil {
		return nil, err
	}
	return m, nil
}

var _ domain.ContactStore = (*ContactFileStore)(nil)
