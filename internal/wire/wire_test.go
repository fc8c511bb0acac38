package wire_test

import (
	"bytes"
	"testing"

	"mizu/internal/domain"
	"mizu/internal/wire"
)

func fill(b byte) [32]byte {
	var p [32]byte
	for i := range p {
		p[i] = b
	}
	return p
}

func TestEncodeDecodeX3DH(t *testing.T) {
	msg := domain.Message{
		Kind: domain.MessageKindX3DH,
		X3DH: &domain.X3DHEnvelope{
			IdentityKey:  domain.IdentityPublicKey(fill(1)),
			EphemeralKey: domain.EphemeralPublicKey(fill(2)),
			Ciphertext:   []byte("ciphertext"),
		},
	}
	b, err := wire.EncodeMessage(msg)
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	got, err := wire.DecodeMessage(b)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if got.Kind != domain.MessageKindX3DH {
		t.Fatalf("got kind %v", got.Kind)
	}
	if got.X3DH.IdentityKey != msg.X3DH.IdentityKey || got.X3DH.EphemeralKey != msg.X3DH.EphemeralKey {
		t.Fatal("public keys did not round-trip")
	}
	if !bytes.Equal(got.X3DH.Ciphertext, msg.X3DH.Ciphertext) {
		t.Fatal("ciphertext did not round-trip")
	}
}

func TestEncodeDecodeRegular(t *testing.T) {
	msg := domain.Message{
		Kind: domain.MessageKindRegular,
		Regular: &domain.RegularEnvelope{
			IdentityKey: domain.IdentityPublicKey(fill(3)),
			Message: domain.DRMessage{
				Header:     domain.DRHeader{RatchetPub: domain.RatchetPublicKey(fill(4)), PN: 7, Ns: 42},
				Ciphertext: []byte("sealed"),
			},
		},
	}
	b, err := wire.EncodeMessage(msg)
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	got, err := wire.DecodeMessage(b)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if got.Regular.Message.Header.PN != 7 || got.Regular.Message.Header.Ns != 42 {
		t.Fatalf("header did not round-trip: %+v", got.Regular.Message.Header)
	}
	if !bytes.Equal(got.Regular.Message.Ciphertext, msg.Regular.Message.Ciphertext) {
		t.Fatal("ciphertext did not round-trip")
	}
}

func TestDecodeRejectsTruncatedInput(t *testing.T) {
	if _, err := wire.DecodeMessage([]byte{0, 0}); err == nil {
		t.Fatal("expected an error decoding truncated input")
	}
}

func TestDecodeRejectsUnknownKind(t *testing.T) {
	b := []byte{9, 0, 0, 0}
	if _, err := wire.DecodeMessage(b); err == nil {
		t.Fatal("expected an error decoding an unknown message kind")
	}
}

func TestEncodeDecodeDRMessageStandalone(t *testing.T) {
	msg := domain.DRMessage{
		Header:     domain.DRHeader{RatchetPub: domain.RatchetPublicKey(fill(5)), PN: 1, Ns: 2},
		Ciphertext: []byte("embedded"),
	}
	b := wire.EncodeDRMessage(msg)
	got, err := wire.DecodeDRMessage(b)
	if err != nil {
		t.Fatalf("DecodeDRMessage: %v", err)
	}
	if got.Header != msg.Header || !bytes.Equal(got.Ciphertext, msg.Ciphertext) {
		t.Fatal("DRMessage did not round-trip")
	}
}
