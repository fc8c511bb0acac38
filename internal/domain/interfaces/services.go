package interfaces

import (
	"context"

	domaintypes "mizu/internal/domain/types"
)

// IdentityService creates, retrieves, and inspects your identity keys.
type IdentityService interface {
	GenerateIdentity(passphrase string) (
		domaintypes.Identity,
		domaintypes.Fingerprint,
		error,
	)
	LoadIdentity(passphrase string) (domaintypes.Identity, error)
	FingerprintIdentity(passphrase string) (domaintypes.Fingerprint, error)
}

// PrekeyService rotates the published prekey, retaining the previous
// one for a grace window so messages already in flight still decrypt.
type PrekeyService interface {
	Rotate(passphrase string) (domaintypes.PrekeyPublic, error)
	Current(passphrase string) (domaintypes.PrekeyPublic, error)
}

// MessagingService encrypts and sends, or fetches and decrypts, messages
// for a single local identity talking to any number of peers.
type MessagingService interface {
	Send(
		ctx context.Context,
		passphrase string,
		me domaintypes.Address,
		peer domaintypes.Address,
		plaintext []byte,
	) error
	Receive(
		ctx context.Context,
		passphrase string,
		me domaintypes.Address,
		limit int,
	) ([]domaintypes.DecryptedMessage, error)
}
