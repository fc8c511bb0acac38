package x3dh

import (
	"fmt"
	"io"

	"mizu/internal/crypto"
	"mizu/internal/domain"
	"mizu/internal/protocol/protoerr"
)

// Agent holds the long-term material a party needs to run X3DH: its own
// identity keypair and its currently-published prekey keypair. There is
// no signed-prekey step and no one-time prekeys: the transport is
// trusted not to replay published bundles, so the extra one-time key
// X3DH normally mixes in buys nothing here.
type Agent struct {
	Identity domain.Identity
	Prekey   domain.PrekeyKeyPair
}

// NewAgent builds an Agent from freshly generated identity and prekey
// material, drawing randomness from rng.
func NewAgent(rng io.Reader) (Agent, error) {
	xpriv, xpub, err := crypto.GenerateX25519(rng)
	if err != nil {
		return Agent{}, fmt.Errorf("x3dh: generating identity key: %w", err)
	}
	ppriv, ppub, err := crypto.GenerateX25519(rng)
	if err != nil {
		return Agent{}, fmt.Errorf("x3dh: generating prekey: %w", err)
	}
	return Agent{
		Identity: domain.Identity{XPub: domain.IdentityPublicKey(xpub), XPriv: domain.IdentityPrivateKey(xpriv)},
		Prekey:   domain.PrekeyKeyPair{Pub: domain.PrekeyPublicKey(ppub), Priv: domain.PrekeyPrivateKey(ppriv)},
	}, nil
}

// DeriveInitialKeys runs the initiator side of X3DH against a peer's
// published identity key and prekey, producing the 32-byte shared
// secret and the fresh ephemeral public key to send along with it.
//
//	DH1 = DH(our identity,  peer prekey)
//	DH2 = DH(our ephemeral, peer identity)
//	DH3 = DH(our ephemeral, peer prekey)
func (a Agent) DeriveInitialKeys(rng io.Reader, peerIdentityPub domain.IdentityPublicKey, peerPrekeyPub domain.PrekeyPublicKey) (secret [32]byte, ephemeralPub domain.EphemeralPublicKey, err error) {
	rawEphPriv, rawEphPub, err := crypto.GenerateX25519(rng)
	if err != nil {
		return secret, ephemeralPub, fmt.Errorf("x3dh: generating ephemeral key: %w", err)
	}
	ephPriv, ephPub := domain.EphemeralPrivateKey(rawEphPriv), domain.EphemeralPublicKey(rawEphPub)

	dh1, err := crypto.DH(domain.X25519Private(a.Identity.XPriv), domain.X25519Public(peerPrekeyPub))
	if err != nil {
		return secret, ephemeralPub, err
	}
	dh2, err := crypto.DH(domain.X25519Private(ephPriv), domain.X25519Public(peerIdentityPub))
	if err != nil {
		return secret, ephemeralPub, err
	}
	dh3, err := crypto.DH(domain.X25519Private(ephPriv), domain.X25519Public(peerPrekeyPub))
	if err != nil {
		return secret, ephemeralPub, err
	}

	concat := make([]byte, 0, 96)
	concat = append(concat, dh1[:]...)
	concat = append(concat, dh2[:]...)
	concat = append(concat, dh3[:]...)
	crypto.Wipe(dh1[:])
	crypto.Wipe(dh2[:])
	crypto.Wipe(dh3[:])

	blocks, err := crypto.X3DHKDF(concat, 3)
	crypto.Wipe(concat)
	if err != nil {
		return secret, ephemeralPub, err
	}
	copy(secret[:], blocks[0])
	return secret, ephPub, nil
}

// respondKeys runs the responder side of X3DH: it recomputes the same
// three Diffie-Hellman values from the other direction using the
// prekey that was actually addressed and the initiator's identity and
// ephemeral public keys carried in the envelope.
//
//	DH1 = DH(our prekey,   peer identity)
//	DH2 = DH(our identity, peer ephemeral)
//	DH3 = DH(our prekey,   peer ephemeral)
func respondKeys(ourPrekeyPriv domain.PrekeyPrivateKey, ourIdentityPriv domain.IdentityPrivateKey, peerIdentityPub domain.IdentityPublicKey, peerEphemeralPub domain.EphemeralPublicKey) (secret [32]byte, err error) {
	dh1, err := crypto.DH(domain.X25519Private(ourPrekeyPriv), domain.X25519Public(peerIdentityPub))
	if err != nil {
		return secret, err
	}
	dh2, err := crypto.DH(domain.X25519Private(ourIdentityPriv), domain.X25519Public(peerEphemeralPub))
	if err != nil {
		return secret, err
	}
	dh3, err := crypto.DH(domain.X25519Private(ourPrekeyPriv), domain.X25519Public(peerEphemeralPub))
	if err != nil {
		return secret, err
	}

	concat := make([]byte, 0, 96)
	concat = append(concat, dh1[:]...)
	concat = append(concat, dh2[:]...)
	concat = append(concat, dh3[:]...)
	crypto.Wipe(dh1[:])
	crypto.Wipe(dh2[:])
	crypto.Wipe(dh3[:])

	blocks, err := crypto.X3DHKDF(concat, 3)
	crypto.Wipe(concat)
	if err != nil {
		return secret, err
	}
	copy(secret[:], blocks[0])
	return secret, nil
}

// BuildAssociatedData assembles the X3DH associated data binding both
// parties' identity keys and out-of-band info strings into every
// message exchanged over the resulting session.
func BuildAssociatedData(senderIdentityPub, receiverIdentityPub domain.IdentityPublicKey, senderInfo, receiverInfo []byte) []byte {
	ad := make([]byte, 0, 64+len(senderInfo)+len(receiverInfo))
	ad = append(ad, senderIdentityPub[:]...)
	ad = append(ad, receiverIdentityPub[:]...)
	ad = append(ad, senderInfo...)
	ad = append(ad, receiverInfo...)
	return ad
}

// ConstructInitialMessage wraps plaintext in an X3DHEnvelope. It
// re-expands the shared secret with the X3DH KDF to obtain a key and
// nonce distinct from the secret itself, then seals plaintext with
// AES-256-GCM under ad.
func (a Agent) ConstructInitialMessage(secret [32]byte, ephemeralPub domain.EphemeralPublicKey, ad, plaintext []byte) (domain.X3DHEnvelope, error) {
	blocks, err := crypto.X3DHKDF(secret[:], 3)
	if err != nil {
		return domain.X3DHEnvelope{}, err
	}
	key, nonce := blocks[0], blocks[2][:crypto.NonceSize]

	ciphertext, err := crypto.Seal(key, nonce, ad, plaintext)
	if err != nil {
		return domain.X3DHEnvelope{}, protoerr.New(protoerr.AEADEncryption, "X3DH initial message", err)
	}
	return domain.X3DHEnvelope{
		IdentityKey:  a.Identity.XPub,
		EphemeralKey: ephemeralPub,
		Ciphertext:   ciphertext,
	}, nil
}

// DecryptInitialMessage runs the responder side of X3DH against an
// X3DHEnvelope addressed to ourPrekey, returning the shared secret (so
// the caller can bootstrap a Double Ratchet from it) and the decrypted
// plaintext.
func (a Agent) DecryptInitialMessage(ourPrekey domain.PrekeyKeyPair, env domain.X3DHEnvelope, senderInfo, receiverInfo []byte) (secret [32]byte, plaintext []byte, err error) {
	secret, err = respondKeys(ourPrekey.Priv, a.Identity.XPriv, env.IdentityKey, env.EphemeralKey)
	if err != nil {
		return secret, nil, err
	}

	blocks, err := crypto.X3DHKDF(secret[:], 3)
	if err != nil {
		return secret, nil, err
	}
	key, nonce := blocks[0], blocks[2][:crypto.NonceSize]

	ad := BuildAssociatedData(env.IdentityKey, a.Identity.XPub, senderInfo, receiverInfo)
	plaintext, err = crypto.Open(key, nonce, ad, env.Ciphertext)
	if err != nil {
		return secret, nil, protoerr.New(protoerr.AEADDecryption, "X3DH initial message", err)
	}
	return secret, plaintext, nil
}
