package types

// X25519Public is a raw Curve25519 public key, the undifferentiated
// output of key generation and the type Diffie-Hellman itself operates
// on internally. Each key's role (identity, prekey, ephemeral, ratchet)
// is a distinct named type further down in this file, converted from
// X25519Public/X25519Private at the point a freshly generated key is
// assigned its role, so a function whose parameters name two different
// roles rejects swapped arguments at compile time. DH itself takes the
// raw types, so each DH call site converts its role keys explicitly.
type X25519Public [32]byte

// Slice returns the key as a []byte.
func (p X25519Public) Slice() []byte { return p[:] }

// X25519Private is a raw Curve25519 private key. See X25519Public.
type X25519Private [32]byte

// Slice returns the key as a []byte.
func (k X25519Private) Slice() []byte { return k[:] }

// IdentityPublicKey is a party's long-term X25519 public key, published
// once and rarely rotated.
type IdentityPublicKey [32]byte

// Slice returns the key as a []byte.
func (k IdentityPublicKey) Slice() []byte { return k[:] }

// IdentityPrivateKey is the private half of IdentityPublicKey.
type IdentityPrivateKey [32]byte

// Slice returns the key as a []byte.
func (k IdentityPrivateKey) Slice() []byte { return k[:] }

// PrekeyPublicKey is a party's currently published prekey, rotated
// periodically. There is no signature over it and no one-time prekeys.
type PrekeyPublicKey [32]byte

// Slice returns the key as a []byte.
func (k PrekeyPublicKey) Slice() []byte { return k[:] }

// PrekeyPrivateKey is the private half of PrekeyPublicKey.
type PrekeyPrivateKey [32]byte

// Slice returns the key as a []byte.
func (k PrekeyPrivateKey) Slice() []byte { return k[:] }

// EphemeralPublicKey is a per-handshake key generated fresh by an X3DH
// initiator and sent alongside the handshake it belongs to, including in
// every retransmitted X3DH envelope until the handshake is acknowledged.
type EphemeralPublicKey [32]byte

// Slice returns the key as a []byte.
func (k EphemeralPublicKey) Slice() []byte { return k[:] }

// EphemeralPrivateKey is the private half of EphemeralPublicKey.
type EphemeralPrivateKey [32]byte

// Slice returns the key as a []byte.
func (k EphemeralPrivateKey) Slice() []byte { return k[:] }

// RatchetPublicKey is a Double Ratchet DH keypair's public half, rotated
// on every change of sender. The responder's first ratchet keypair is
// its published prekey, reinterpreted for this role.
type RatchetPublicKey [32]byte

// Slice returns the key as a []byte.
func (k RatchetPublicKey) Slice() []byte { return k[:] }

// RatchetPrivateKey is the private half of RatchetPublicKey.
type RatchetPrivateKey [32]byte

// Slice returns the key as a []byte.
func (k RatchetPrivateKey) Slice() []byte { return k[:] }
