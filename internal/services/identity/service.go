package identity

import (
	"crypto/rand"

	"mizu/internal/crypto"
	"mizu/internal/domain"
)

// Service creates and loads the local long-term identity.
type Service struct {
	store domain.IdentityStore
}

// New constructs an identity Service backed by store.
func New(s domain.IdentityStore) *Service {
	return &Service{store: s}
}

var _ domain.IdentityService = (*Service)(nil)

// GenerateIdentity creates a fresh X25519 identity keypair and
// persists it, encrypted under passphrase.
func (s *Service) GenerateIdentity(passphrase string) (domain.Identity, domain.Fingerprint, error) {
	xpriv, xpub, err := crypto.GenerateX25519(rand.Reader)
	if err != nil {
		return domain.Identity{}, "", err
	}
	id := domain.Identity{XPub: domain.IdentityPublicKey(xpub), XPriv: domain.IdentityPrivateKey(xpriv)}
	if err := s.store.SaveIdentity(passphrase, id); err != nil {
		return domain.Identity{}, "", err
	}
	fp := domain.Fingerprint(crypto.Fingerprint(id.XPub.Slice()))
	return id, fp, nil
}

// LoadIdentity decrypts and returns the persisted identity.
func (s *Service) LoadIdentity(passphrase string) (domain.Identity, error) {
	return s.store.LoadIdentity(passphrase)
}

// FingerprintIdentity returns a short, human-comparable fingerprint of
// the persisted identity's public key.
func (s *Service) FingerprintIdentity(passphrase string) (domain.Fingerprint, error) {
	id, err := s.store.LoadIdentity(passphrase)
	if err != nil {
		return "", err
	}
	return domain.Fingerprint(crypto.Fingerprint(id.XPub.Slice())), nil
}
