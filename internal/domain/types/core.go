package types

// Address identifies an account on the transport network (e.g. a chain
// address). It is the public handle used to look up identity keys,
// prekeys and postal boxes, and is bound into the associated data of
// every handshake.
type Address string

// String returns the string form of the address.
func (a Address) String() string { return string(a) }

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// PrekeyID uniquely identifies a published prekey.
type PrekeyID string

// String returns the string form of the identifier.
func (id PrekeyID) String() string { return string(id) }
