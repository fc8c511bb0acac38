package types

// MessageKind tags the two shapes a Message on the wire can take. The
// numeric values match the deterministic encoding's leading tag.
type MessageKind uint32

const (
	MessageKindX3DH    MessageKind = 0
	MessageKindRegular MessageKind = 1
)

// DRHeader accompanies every Double Ratchet ciphertext.
type DRHeader struct {
	RatchetPub RatchetPublicKey `json:"ratchet_pub"`
	PN         uint64           `json:"pn"`
	Ns         uint64           `json:"ns"`
}

// DRMessage is a ciphertext produced by the Double Ratchet, together
// with the header needed to decrypt it.
type DRMessage struct {
	Header     DRHeader `json:"header"`
	Ciphertext []byte   `json:"ciphertext"`
}

// X3DHEnvelope carries an X3DH-wrapped first message. The prekey ID is
// deliberately absent: including it would let a third party link a
// message to a specific recipient by prekey-matching.
type X3DHEnvelope struct {
	IdentityKey  IdentityPublicKey  `json:"identity_key"`
	EphemeralKey EphemeralPublicKey `json:"ephemeral_key"`
	Ciphertext   []byte             `json:"ciphertext"`
}

// RegularEnvelope carries a ratcheted message once both sides have an
// established Double Ratchet.
type RegularEnvelope struct {
	IdentityKey IdentityPublicKey `json:"identity_key"`
	Message     DRMessage         `json:"message"`
}

// Message is the sum type posted to and fetched from the transport: an
// initial X3DH-wrapped message, or a regular ratcheted one.
type Message struct {
	Kind    MessageKind      `json:"kind"`
	X3DH    *X3DHEnvelope    `json:"x3dh,omitempty"`
	Regular *RegularEnvelope `json:"regular,omitempty"`
}

// DecryptedMessage is what the messaging service returns for a
// successfully decrypted inbound message.
type DecryptedMessage struct {
	From      Address `json:"from"`
	Plaintext []byte  `json:"plaintext"`
	Timestamp int64   `json:"timestamp"`
}
