package prekey

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"mizu/internal/crypto"
	"mizu/internal/domain"
)

// Service rotates the published prekey and reports the current one.
type Service struct {
	pkStore domain.PrekeyStore
}

// New constructs a prekey Service backed by pkStore.
func New(pkStore domain.PrekeyStore) *Service {
	return &Service{pkStore: pkStore}
}

var _ domain.PrekeyService = (*Service)(nil)

// Rotate generates a new prekey, retains the one it replaces for a
// grace window, and persists both.
func (s *Service) Rotate(passphrase string) (domain.PrekeyPublic, error) {
	id, err := newPrekeyID()
	if err != nil {
		return domain.PrekeyPublic{}, err
	}
	priv, pub, err := crypto.GenerateX25519(rand.Reader)
	if err != nil {
		return domain.PrekeyPublic{}, err
	}
	next := domain.PrekeyKeyPair{ID: id, Priv: domain.PrekeyPrivateKey(priv), Pub: domain.PrekeyPublicKey(pub)}

	if previous, ok, err := s.pkStore.LoadCurrent(); err != nil {
		return domain.PrekeyPublic{}, err
	} else if ok {
		if err := s.pkStore.RetainPrevious(previous, time.Now().Unix()); err != nil {
			return domain.PrekeyPublic{}, err
		}
	}

	if err := s.pkStore.SaveCurrent(next); err != nil {
		return domain.PrekeyPublic{}, err
	}
	return domain.PrekeyPublic{ID: next.ID, Pub: next.Pub, RotatedAt: time.Now().Unix()}, nil
}

// Current returns the currently published prekey, generating one if
// none exists yet.
func (s *Service) Current(passphrase string) (domain.PrekeyPublic, error) {
	current, ok, err := s.pkStore.LoadCurrent()
	if err != nil {
		return domain.PrekeyPublic{}, err
	}
	if !ok {
		return s.Rotate(passphrase)
	}
	return domain.PrekeyPublic{ID: current.ID, Pub: current.Pub}, nil
}

func newPrekeyID() (domain.PrekeyID, error) {
	var raw [16]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", fmt.Errorf("prekey: generating id: %w", err)
	}
	return domain.PrekeyID(hex.EncodeToString(raw[:])), nil
}
