// Package ratchet implements the Double Ratchet algorithm: per-direction
// symmetric KDF chains for forward secrecy, plus a Diffie-Hellman
// ratchet step on each change of sender so a later compromise of
// in-memory state doesn't expose past or (after the next DH step)
// future messages.
//
// Concurrency: Agent is NOT safe for concurrent use. Callers must
// serialise access per peer.
package ratchet

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"

	"mizu/internal/crypto"
	"mizu/internal/domain"
	"mizu/internal/protocol/protoerr"
)

// MaxSkip bounds how many consecutive message keys in a chain may be
// skipped and stored (e.g. to tolerate out-of-order delivery) before a
// message is rejected outright. This defends against an adversary who
// forges a huge skip count to force unbounded memory growth.
const MaxSkip = 32

// Agent holds one side's full Double Ratchet state for one peer.
type Agent struct {
	RootKey []byte `json:"root_key"`

	DHPriv domain.RatchetPrivateKey `json:"dh_priv"`
	DHPub  domain.RatchetPublicKey  `json:"dh_pub"`

	// PeerDHPub and HasPeerDHPub: the responder doesn't learn the
	// peer's ratchet public key until the first inbound message, so
	// this must be tracked explicitly rather than relying on a
	// well-known zero value.
	PeerDHPub    domain.RatchetPublicKey `json:"peer_dh_pub"`
	HasPeerDHPub bool                    `json:"has_peer_dh_pub"`

	SendCK []byte `json:"send_ck,omitempty"`
	RecvCK []byte `json:"recv_ck,omitempty"`

	Ns uint64 `json:"ns"`
	Nr uint64 `json:"nr"`
	PN uint64 `json:"pn"`

	// Skipped holds (message key || nonce) pairs derived ahead of
	// their arrival, keyed by (ratchet public key, chain index).
	// Entries from a previous sender ratchet public key remain valid
	// after a DH ratchet step and are never bulk-evicted; they expire
	// only when individually consumed.
	Skipped map[string][]byte `json:"skipped,omitempty"`
}

// Initiate starts a Double Ratchet as the party that ran X3DH as
// initiator: sharedSecret becomes the root key, and a single DH against
// the peer's prekey (reinterpreted as their first ratchet public key)
// seeds the sending chain.
func Initiate(rng io.Reader, sharedSecret [32]byte, peerPrekeyPub domain.PrekeyPublicKey) (Agent, error) {
	rawPriv, rawPub, err := crypto.GenerateX25519(rng)
	if err != nil {
		return Agent{}, fmt.Errorf("ratchet: generating ratchet key: %w", err)
	}
	priv, pub := domain.RatchetPrivateKey(rawPriv), domain.RatchetPublicKey(rawPub)

	// The peer's prekey doubles as their first ratchet public key; this
	// reinterpretation is deliberate, not a type mismatch.
	peerRatchetPub := domain.RatchetPublicKey(peerPrekeyPub)

	dh, err := crypto.DH(domain.X25519Private(priv), domain.X25519Public(peerRatchetPub))
	if err != nil {
		return Agent{}, err
	}
	newRoot, sendCK, err := crypto.RootKDF(sharedSecret[:], dh[:])
	crypto.Wipe(dh[:])
	if err != nil {
		return Agent{}, err
	}

	return Agent{
		RootKey:      newRoot,
		DHPriv:       priv,
		DHPub:        pub,
		PeerDHPub:    peerRatchetPub,
		HasPeerDHPub: true,
		SendCK:       sendCK,
		Skipped:      make(map[string][]byte),
	}, nil
}

// Respond starts a Double Ratchet as the party that ran X3DH as
// responder: sharedSecret becomes the root key directly, and the
// already-published prekey keypair is reused as the initial ratchet
// keypair. Neither chain key is known yet; the first inbound message
// triggers the DH ratchet step that derives them.
func Respond(sharedSecret [32]byte, ownPrekey domain.PrekeyKeyPair) Agent {
	return Agent{
		RootKey: sharedSecret[:],
		DHPriv:  domain.RatchetPrivateKey(ownPrekey.Priv),
		DHPub:   domain.RatchetPublicKey(ownPrekey.Pub),
		Skipped: make(map[string][]byte),
	}
}

// EncryptMessage seals plaintext under the current sending chain. It is
// an invariant violation to call this before the sending chain has been
// seeded (Initiate, or a Respond agent that has completed its first DH
// ratchet step via AttemptMessageDecryption) — such a call indicates a
// caller bug, not a recoverable runtime condition, so it panics.
func (a *Agent) EncryptMessage(ad, plaintext []byte) (domain.DRMessage, error) {
	if a.SendCK == nil {
		panic("ratchet: EncryptMessage called before the sending chain is established")
	}

	mk, nonce := deriveMessageKeyAndNonce(a.SendCK)
	a.SendCK = crypto.ChainKDFNextChainKey(a.SendCK)

	header := domain.DRHeader{RatchetPub: a.DHPub, PN: a.PN, Ns: a.Ns}
	ciphertext, err := crypto.Seal(mk, nonce, perMessageAD(ad, header), plaintext)
	crypto.Wipe(mk)
	if err != nil {
		return domain.DRMessage{}, protoerr.New(protoerr.AEADEncryption, "double ratchet message", err)
	}
	a.Ns++
	return domain.DRMessage{Header: header, Ciphertext: ciphertext}, nil
}

// AttemptMessageDecryption tries to decrypt msg under ad. It follows a
// tentative-copy-then-commit discipline: a scratch copy of the agent
// absorbs any DH ratchet step and chain advances, and is only written
// back to the receiver on successful decryption, so a forged or
// corrupt message can never leave the ratchet in a half-updated state.
func (a *Agent) AttemptMessageDecryption(rng io.Reader, msg domain.DRMessage, ad []byte) ([]byte, error) {
	header := msg.Header
	perAD := perMessageAD(ad, header)

	// A previously skipped key, if present, decrypts independently of
	// the rest of the state and is simply consumed on success.
	skipKey := skippedKeyID(header.RatchetPub, header.Ns)
	if stored, ok := a.Skipped[skipKey]; ok {
		mk, nonce := stored[:32], stored[32:32+crypto.NonceSize]
		plaintext, err := crypto.Open(mk, nonce, perAD, msg.Ciphertext)
		if err != nil {
			return nil, protoerr.New(protoerr.AEADDecryption, "double ratchet message (skipped key)", err)
		}
		delete(a.Skipped, skipKey)
		return plaintext, nil
	}

	next := a.clone()

	if !next.HasPeerDHPub || next.PeerDHPub != header.RatchetPub {
		if err := skipToIndex(&next, header.PN); err != nil {
			return nil, err
		}
		next.PN, next.Ns, next.Nr = next.Ns, 0, 0
		next.PeerDHPub, next.HasPeerDHPub = header.RatchetPub, true

		dh1, err := crypto.DH(domain.X25519Private(next.DHPriv), domain.X25519Public(header.RatchetPub))
		if err != nil {
			return nil, err
		}
		newRoot, recvCK, err := crypto.RootKDF(next.RootKey, dh1[:])
		crypto.Wipe(dh1[:])
		if err != nil {
			return nil, err
		}
		next.RootKey, next.RecvCK = newRoot, recvCK

		rawPriv, rawPub, err := crypto.GenerateX25519(rng)
		if err != nil {
			return nil, fmt.Errorf("ratchet: generating ratchet key: %w", err)
		}
		priv, pub := domain.RatchetPrivateKey(rawPriv), domain.RatchetPublicKey(rawPub)
		dh2, err := crypto.DH(domain.X25519Private(priv), domain.X25519Public(header.RatchetPub))
		if err != nil {
			return nil, err
		}
		newRoot2, sendCK, err := crypto.RootKDF(next.RootKey, dh2[:])
		crypto.Wipe(dh2[:])
		if err != nil {
			return nil, err
		}
		next.RootKey, next.DHPriv, next.DHPub, next.SendCK = newRoot2, priv, pub, sendCK
	}

	if err := skipToIndex(&next, header.Ns); err != nil {
		return nil, err
	}

	mk, nonce := deriveMessageKeyAndNonce(next.RecvCK)
	next.RecvCK = crypto.ChainKDFNextChainKey(next.RecvCK)

	plaintext, err := crypto.Open(mk, nonce, perAD, msg.Ciphertext)
	crypto.Wipe(mk)
	if err != nil {
		return nil, protoerr.New(protoerr.AEADDecryption, "double ratchet message", err)
	}
	next.Nr = header.Ns + 1

	*a = next
	return plaintext, nil
}

// clone makes an independent copy so a failed decryption never mutates
// the committed state.
func (a *Agent) clone() Agent {
	next := *a
	next.RootKey = append([]byte(nil), a.RootKey...)
	next.SendCK = append([]byte(nil), a.SendCK...)
	next.RecvCK = append([]byte(nil), a.RecvCK...)
	next.Skipped = make(map[string][]byte, len(a.Skipped))
	for k, v := range a.Skipped {
		next.Skipped[k] = append([]byte(nil), v...)
	}
	return next
}

// skipToIndex derives and stores message keys (with their nonces) for
// the receiving chain up to (but not including) until, failing rather
// than silently dropping keys if doing so would skip more than MaxSkip
// messages.
func skipToIndex(a *Agent, until uint64) error {
	if a.RecvCK == nil {
		return nil
	}
	if until < a.Nr {
		return nil
	}
	if until-a.Nr > MaxSkip {
		return protoerr.ErrTooManySkippedMessages
	}
	for a.Nr < until {
		mk, nonce := deriveMessageKeyAndNonce(a.RecvCK)
		a.Skipped[skippedKeyID(a.PeerDHPub, a.Nr)] = append(mk, nonce...)
		a.RecvCK = crypto.ChainKDFNextChainKey(a.RecvCK)
		a.Nr++
	}
	return nil
}

// deriveMessageKeyAndNonce derives the AEAD key and nonce for the
// message at the current position of a chain key, without advancing
// the chain itself.
func deriveMessageKeyAndNonce(chainKey []byte) (key, nonce []byte) {
	key = crypto.ChainKDFMessageKey(chainKey)
	nonce = crypto.ChainKDFNonceMaterial(chainKey)[:crypto.NonceSize]
	return key, nonce
}

// skippedKeyID yields a unique map key from a ratchet public key and a
// chain index. Hex-encoded rather than a raw byte string so the
// Skipped map survives a JSON round trip: a map key built from raw
// public-key bytes is not guaranteed to be valid UTF-8, which
// encoding/json would otherwise mangle.
func skippedKeyID(pub domain.RatchetPublicKey, n uint64) string {
	var buf [40]byte
	copy(buf[:32], pub[:])
	binary.BigEndian.PutUint64(buf[32:], n)
	return hex.EncodeToString(buf[:])
}

// perMessageAD appends the deterministic encoding of header to the
// X3DH associated data, binding every ratcheted message to both the
// original handshake and its own header.
func perMessageAD(x3dhAD []byte, header domain.DRHeader) []byte {
	out := make([]byte, 0, len(x3dhAD)+48)
	out = append(out, x3dhAD...)
	out = append(out, header.RatchetPub[:]...)
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], header.PN)
	out = append(out, tmp[:]...)
	binary.LittleEndian.PutUint64(tmp[:], header.Ns)
	out = append(out, tmp[:]...)
	return out
}
