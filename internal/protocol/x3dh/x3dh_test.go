package x3dh_test

import (
	"bytes"
	"crypto/rand"
	"testing"

	"mizu/internal/protocol/x3dh"
)

func TestInitialKeyAgreement(t *testing.T) {
	alice, err := x3dh.NewAgent(rand.Reader)
	if err != nil {
		t.Fatalf("NewAgent(alice): %v", err)
	}
	bob, err := x3dh.NewAgent(rand.Reader)
	if err != nil {
		t.Fatalf("NewAgent(bob): %v", err)
	}

	secretA, ephPub, err := alice.DeriveInitialKeys(rand.Reader, bob.Identity.XPub, bob.Prekey.Pub)
	if err != nil {
		t.Fatalf("DeriveInitialKeys: %v", err)
	}

	ad := x3dh.BuildAssociatedData(alice.Identity.XPub, bob.Identity.XPub, []byte("alice"), []byte("bob"))
	env, err := alice.ConstructInitialMessage(secretA, ephPub, ad, []byte("hello bob"))
	if err != nil {
		t.Fatalf("ConstructInitialMessage: %v", err)
	}
	if env.IdentityKey != alice.Identity.XPub {
		t.Fatal("envelope identity key should be the sender's")
	}

	secretB, plaintext, err := bob.DecryptInitialMessage(bob.Prekey, env, []byte("alice"), []byte("bob"))
	if err != nil {
		t.Fatalf("DecryptInitialMessage: %v", err)
	}
	if secretA != secretB {
		t.Fatal("initiator and responder disagree on the shared secret")
	}
	if string(plaintext) != "hello bob" {
		t.Fatalf("got plaintext %q", plaintext)
	}
}

func TestDecryptInitialMessageRejectsTampering(t *testing.T) {
	alice, err := x3dh.NewAgent(rand.Reader)
	if err != nil {
		t.Fatalf("NewAgent(alice): %v", err)
	}
	bob, err := x3dh.NewAgent(rand.Reader)
	if err != nil {
		t.Fatalf("NewAgent(bob): %v", err)
	}

	secretA, ephPub, err := alice.DeriveInitialKeys(rand.Reader, bob.Identity.XPub, bob.Prekey.Pub)
	if err != nil {
		t.Fatalf("DeriveInitialKeys: %v", err)
	}
	ad := x3dh.BuildAssociatedData(alice.Identity.XPub, bob.Identity.XPub, []byte("alice"), []byte("bob"))
	env, err := alice.ConstructInitialMessage(secretA, ephPub, ad, []byte("hello bob"))
	if err != nil {
		t.Fatalf("ConstructInitialMessage: %v", err)
	}

	tampered := append([]byte(nil), env.Ciphertext...)
	tampered[0] ^= 0x01
	env.Ciphertext = tampered

	if _, _, err := bob.DecryptInitialMessage(bob.Prekey, env, []byte("alice"), []byte("bob")); err == nil {
		t.Fatal("expected decryption of tampered ciphertext to fail")
	}
}

func TestDifferentPeersDeriveDifferentSecrets(t *testing.T) {
	alice, err := x3dh.NewAgent(rand.Reader)
	if err != nil {
		t.Fatalf("NewAgent(alice): %v", err)
	}
	bob, err := x3dh.NewAgent(rand.Reader)
	if err != nil {
		t.Fatalf("NewAgent(bob): %v", err)
	}
	carol, err := x3dh.NewAgent(rand.Reader)
	if err != nil {
		t.Fatalf("NewAgent(carol): %v", err)
	}

	secretBob, _, err := alice.DeriveInitialKeys(rand.Reader, bob.Identity.XPub, bob.Prekey.Pub)
	if err != nil {
		t.Fatalf("DeriveInitialKeys(bob): %v", err)
	}
	secretCarol, _, err := alice.DeriveInitialKeys(rand.Reader, carol.Identity.XPub, carol.Prekey.Pub)
	if err != nil {
		t.Fatalf("DeriveInitialKeys(carol): %v", err)
	}
	if bytes.Equal(secretBob[:], secretCarol[:]) {
		t.Fatal("shared secrets with distinct peers must differ")
	}
}
