// Package wire implements the deterministic binary encoding for
// protocol messages. The format is fixed, little-endian, and
// length-prefixed rather than self-describing: two independent
// implementations given the same Message must produce byte-identical
// output, which JSON's field ordering and numeric formatting do not
// guarantee.
//
// Grammar:
//
//	Message      := u32(kind) (X3DHEnvelope | RegularEnvelope)
//	X3DHEnvelope := pub(32) pub(32) bytes
//	RegularEnvelope := pub(32) DRMessage
//	DRMessage    := DRHeader bytes
//	DRHeader     := pub(32) u64(PN) u64(Ns)
//	bytes        := u64(len) <len bytes>
//
// All integers are little-endian.
package wire

import (
	"encoding/binary"
	"fmt"

	"mizu/internal/domain"
)

// EncodeMessage renders m in the deterministic wire format.
func EncodeMessage(m domain.Message) ([]byte, error) {
	var buf []byte
	buf = putU32(buf, uint32(m.Kind))

	switch m.Kind {
	case domain.MessageKindX3DH:
		if m.X3DH == nil {
			return nil, fmt.Errorf("wire: X3DH message missing envelope")
		}
		buf = append(buf, m.X3DH.IdentityKey[:]...)
		buf = append(buf, m.X3DH.EphemeralKey[:]...)
		buf = putBytes(buf, m.X3DH.Ciphertext)
	case domain.MessageKindRegular:
		if m.Regular == nil {
			return nil, fmt.Errorf("wire: regular message missing envelope")
		}
		buf = append(buf, m.Regular.IdentityKey[:]...)
		buf = encodeDRMessage(buf, m.Regular.Message)
	default:
		return nil, fmt.Errorf("wire: unknown message kind %d", m.Kind)
	}
	return buf, nil
}

// DecodeMessage parses the deterministic wire format produced by
// EncodeMessage.
func DecodeMessage(b []byte) (domain.Message, error) {
	kind, b, err := getU32(b)
	if err != nil {
		return domain.Message{}, err
	}

	switch domain.MessageKind(kind) {
	case domain.MessageKindX3DH:
		rawIDPub, b, err := getRaw32(b)
		if err != nil {
			return domain.Message{}, err
		}
		rawEphPub, b, err := getRaw32(b)
		if err != nil {
			return domain.Message{}, err
		}
		ciphertext, b, err := getBytes(b)
		if err != nil {
			return domain.Message{}, err
		}
		if len(b) != 0 {
			return domain.Message{}, fmt.Errorf("wire: trailing bytes after X3DH message")
		}
		return domain.Message{
			Kind: domain.MessageKindX3DH,
			X3DH: &domain.X3DHEnvelope{
				IdentityKey:  domain.IdentityPublicKey(rawIDPub),
				EphemeralKey: domain.EphemeralPublicKey(rawEphPub),
				Ciphertext:   ciphertext,
			},
		}, nil

	case domain.MessageKindRegular:
		rawIDPub, b, err := getRaw32(b)
		if err != nil {
			return domain.Message{}, err
		}
		idPub := domain.IdentityPublicKey(rawIDPub)
		drMsg, b, err := decodeDRMessage(b)
		if err != nil {
			return domain.Message{}, err
		}
		if len(b) != 0 {
			return domain.Message{}, fmt.Errorf("wire: trailing bytes after regular message")
		}
		return domain.Message{
			Kind:    domain.MessageKindRegular,
			Regular: &domain.RegularEnvelope{IdentityKey: idPub, Message: drMsg},
		}, nil

	default:
		return domain.Message{}, fmt.Errorf("wire: unknown message kind %d", kind)
	}
}

// EncodeDRMessage renders a standalone DRMessage (header plus
// ciphertext), independent of any enclosing Message envelope. The
// initiator embeds the result as the plaintext an X3DHEnvelope seals,
// so the first Double Ratchet message travels inside the X3DH
// handshake rather than waiting for it to be acknowledged.
func EncodeDRMessage(m domain.DRMessage) []byte {
	return encodeDRMessage(nil, m)
}

// DecodeDRMessage parses the output of EncodeDRMessage.
func DecodeDRMessage(b []byte) (domain.DRMessage, error) {
	m, rest, err := decodeDRMessage(b)
	if err != nil {
		return domain.DRMessage{}, err
	}
	if len(rest) != 0 {
		return domain.DRMessage{}, fmt.Errorf("wire: trailing bytes after DR message")
	}
	return m, nil
}

// EncodeDRHeader renders a DRHeader, used to build per-message
// associated data.
func EncodeDRHeader(h domain.DRHeader) []byte {
	buf := make([]byte, 0, 48)
	buf = append(buf, h.RatchetPub[:]...)
	buf = putU64(buf, h.PN)
	buf = putU64(buf, h.Ns)
	return buf
}

func encodeDRMessage(buf []byte, m domain.DRMessage) []byte {
	buf = append(buf, EncodeDRHeader(m.Header)...)
	return putBytes(buf, m.Ciphertext)
}

func decodeDRMessage(b []byte) (domain.DRMessage, []byte, error) {
	rawRatchetPub, b, err := getRaw32(b)
	if err != nil {
		return domain.DRMessage{}, nil, err
	}
	ratchetPub := domain.RatchetPublicKey(rawRatchetPub)
	pn, b, err := getU64(b)
	if err != nil {
		return domain.DRMessage{}, nil, err
	}
	ns, b, err := getU64(b)
	if err != nil {
		return domain.DRMessage{}, nil, err
	}
	ciphertext, b, err := getBytes(b)
	if err != nil {
		return domain.DRMessage{}, nil, err
	}
	return domain.DRMessage{
		Header:     domain.DRHeader{RatchetPub: ratchetPub, PN: pn, Ns: ns},
		Ciphertext: ciphertext,
	}, b, nil
}

func putU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func putU64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

func putBytes(buf, b []byte) []byte {
	buf = putU64(buf, uint64(len(b)))
	return append(buf, b...)
}

func getU32(b []byte) (uint32, []byte, error) {
	if len(b) < 4 {
		return 0, nil, fmt.Errorf("wire: truncated u32")
	}
	return binary.LittleEndian.Uint32(b[:4]), b[4:], nil
}

func getU64(b []byte) (uint64, []byte, error) {
	if len(b) < 8 {
		return 0, nil, fmt.Errorf("wire: truncated u64")
	}
	return binary.LittleEndian.Uint64(b[:8]), b[8:], nil
}

// getRaw32 reads a 32-byte key, leaving the caller to attach the
// specific role type (identity, ephemeral, ratchet) the field calls for.
func getRaw32(b []byte) ([32]byte, []byte, error) {
	var pub [32]byte
	if len(b) < 32 {
		return pub, nil, fmt.Errorf("wire: truncated public key")
	}
	copy(pub[:], b[:32])
	return pub, b[32:], nil
}

func getBytes(b []byte) ([]byte, []byte, error) {
	n, b, err := getU64(b)
	if err != nil {
		return nil, nil, err
	}
	if uint64(len(b)) < n {
		return nil, nil, fmt.Errorf("wire: truncated byte string")
	}
	return b[:n], b[n:], nil
}
