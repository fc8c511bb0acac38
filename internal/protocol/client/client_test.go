package client_test

import (
	"crypto/rand"
	"errors"
	"testing"

	"mizu/internal/domain"
	"mizu/internal/protocol/client"
	"mizu/internal/protocol/protoerr"
	"mizu/internal/protocol/ratchet"
)

func newPair(t *testing.T) (alice, bob *client.Client) {
	t.Helper()
	alice, err := client.New(rand.Reader, []byte("alice"), []byte("bob"))
	if err != nil {
		t.Fatalf("New(alice): %v", err)
	}
	bob, err = client.New(rand.Reader, []byte("bob"), []byte("alice"))
	if err != nil {
		t.Fatalf("New(bob): %v", err)
	}
	return alice, bob
}

func TestFirstMessageEstablishesSession(t *testing.T) {
	for _, pt := range []string{"", "Hello from alice!", "こんにちは"} {
		alice, bob := newPair(t)

		msg, err := alice.CreateMessage(rand.Reader, bob.X3DH.Identity.XPub, bob.X3DH.Prekey.Pub, []byte(pt))
		if err != nil {
			t.Fatalf("CreateMessage: %v", err)
		}
		if !alice.HasSession() || !alice.Unacknowledged() {
			t.Fatal("alice should have a session with an unacknowledged handshake")
		}

		plaintext, err := bob.AttemptMessageDecryption(rand.Reader, msg)
		if err != nil {
			t.Fatalf("bob decrypt: %v", err)
		}
		if string(plaintext) != pt {
			t.Fatalf("got %q, want %q", plaintext, pt)
		}
		if !bob.HasSession() {
			t.Fatal("bob should have a session after the first message")
		}

		// bob replies; this acknowledges alice's handshake once she
		// reads it.
		reply, err := bob.CreateMessage(rand.Reader, alice.X3DH.Identity.XPub, alice.X3DH.Prekey.Pub, []byte("waiting for response..."))
		if err != nil {
			t.Fatalf("bob CreateMessage: %v", err)
		}
		replyPlain, err := alice.AttemptMessageDecryption(rand.Reader, reply)
		if err != nil {
			t.Fatalf("alice decrypt reply: %v", err)
		}
		if string(replyPlain) != "waiting for response..." {
			t.Fatalf("got %q", replyPlain)
		}
		if alice.Unacknowledged() {
			t.Fatal("alice's handshake should be acknowledged after reading bob's reply")
		}
	}
}

func TestRetransmitReusesHandshake(t *testing.T) {
	alice, bob := newPair(t)

	first, err := alice.CreateMessage(rand.Reader, bob.X3DH.Identity.XPub, bob.X3DH.Prekey.Pub, []byte("first"))
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}

	// bob never replies; alice sends a second message before any ack.
	second, err := alice.CreateMessage(rand.Reader, bob.X3DH.Identity.XPub, bob.X3DH.Prekey.Pub, []byte("second"))
	if err != nil {
		t.Fatalf("CreateMessage (retransmit): %v", err)
	}
	if second.Kind != first.Kind {
		t.Fatalf("retransmit should still be an X3DH envelope, got kind %v", second.Kind)
	}
	if second.X3DH.IdentityKey != first.X3DH.IdentityKey || second.X3DH.EphemeralKey != first.X3DH.EphemeralKey {
		t.Fatal("retransmit must reuse the original handshake's ephemeral key")
	}

	// bob can still read the first message he actually received
	// (the second one, in delivery order here) and establish a
	// session from it.
	plaintext, err := bob.AttemptMessageDecryption(rand.Reader, second)
	if err != nil {
		t.Fatalf("bob decrypt: %v", err)
	}
	if string(plaintext) != "second" {
		t.Fatalf("got %q", plaintext)
	}
}

func TestRegularMessageWithNoSessionIsUnreadable(t *testing.T) {
	alice, bob := newPair(t)

	// Establish a real session between alice and bob, including an
	// ack, so bob's next message is a plain Regular envelope.
	first, err := alice.CreateMessage(rand.Reader, bob.X3DH.Identity.XPub, bob.X3DH.Prekey.Pub, []byte("hi"))
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if _, err := bob.AttemptMessageDecryption(rand.Reader, first); err != nil {
		t.Fatalf("bob decrypt first: %v", err)
	}
	ack, err := bob.CreateMessage(rand.Reader, alice.X3DH.Identity.XPub, alice.X3DH.Prekey.Pub, []byte("ack"))
	if err != nil {
		t.Fatalf("bob ack: %v", err)
	}
	if _, err := alice.AttemptMessageDecryption(rand.Reader, ack); err != nil {
		t.Fatalf("alice decrypt ack: %v", err)
	}
	regular, err := bob.CreateMessage(rand.Reader, alice.X3DH.Identity.XPub, alice.X3DH.Prekey.Pub, []byte("plain"))
	if err != nil {
		t.Fatalf("bob CreateMessage (regular): %v", err)
	}
	if regular.Kind != domain.MessageKindRegular {
		t.Fatalf("expected a Regular envelope once acknowledged, got kind %v", regular.Kind)
	}

	// carol never ran a handshake with anyone, so she has no ratchet
	// session to read bob's Regular envelope under.
	carol, err := client.New(rand.Reader, []byte("carol"), []byte("bob"))
	if err != nil {
		t.Fatalf("New(carol): %v", err)
	}
	if _, err := carol.AttemptMessageDecryption(rand.Reader, regular); err == nil {
		t.Fatal("expected an error decrypting a Regular message with no session")
	}
}

func TestExceedingMaxSkipSurfacesFromClient(t *testing.T) {
	alice, bob := newPair(t)

	first, err := alice.CreateMessage(rand.Reader, bob.X3DH.Identity.XPub, bob.X3DH.Prekey.Pub, []byte("start"))
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if _, err := bob.AttemptMessageDecryption(rand.Reader, first); err != nil {
		t.Fatalf("bob decrypt first: %v", err)
	}
	ack, err := bob.CreateMessage(rand.Reader, alice.X3DH.Identity.XPub, alice.X3DH.Prekey.Pub, []byte("ack"))
	if err != nil {
		t.Fatalf("bob ack: %v", err)
	}
	if _, err := alice.AttemptMessageDecryption(rand.Reader, ack); err != nil {
		t.Fatalf("alice decrypt ack: %v", err)
	}

	var msg domain.Message
	for i := 0; i < ratchet.MaxSkip+2; i++ {
		msg, err = alice.CreateMessage(rand.Reader, bob.X3DH.Identity.XPub, bob.X3DH.Prekey.Pub, []byte("spam"))
		if err != nil {
			t.Fatalf("CreateMessage: %v", err)
		}
	}

	if _, err := bob.AttemptMessageDecryption(rand.Reader, msg); !errors.Is(err, protoerr.ErrTooManySkippedMessages) {
		t.Fatalf("got err %v, want ErrTooManySkippedMessages", err)
	}
}

func TestTamperedMessageRejected(t *testing.T) {
	alice, bob := newPair(t)

	first, err := alice.CreateMessage(rand.Reader, bob.X3DH.Identity.XPub, bob.X3DH.Prekey.Pub, []byte("hello"))
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if _, err := bob.AttemptMessageDecryption(rand.Reader, first); err != nil {
		t.Fatalf("bob decrypt first: %v", err)
	}
	ack, err := bob.CreateMessage(rand.Reader, alice.X3DH.Identity.XPub, alice.X3DH.Prekey.Pub, []byte("ack"))
	if err != nil {
		t.Fatalf("bob ack: %v", err)
	}
	if _, err := alice.AttemptMessageDecryption(rand.Reader, ack); err != nil {
		t.Fatalf("alice decrypt ack: %v", err)
	}

	msg, err := alice.CreateMessage(rand.Reader, bob.X3DH.Identity.XPub, bob.X3DH.Prekey.Pub, []byte("second"))
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	tampered := append([]byte(nil), msg.Regular.Message.Ciphertext...)
	tampered[0] ^= 0x01
	msg.Regular.Message.Ciphertext = tampered

	if _, err := bob.AttemptMessageDecryption(rand.Reader, msg); err == nil {
		t.Fatal("expected tampered ciphertext to be rejected")
	}
}

func TestSimultaneousInitiateReplacesSession(t *testing.T) {
	alice, bob := newPair(t)

	// Both sides initiate before receiving anything from the other.
	aliceFirst, err := alice.CreateMessage(rand.Reader, bob.X3DH.Identity.XPub, bob.X3DH.Prekey.Pub, []byte("from alice"))
	if err != nil {
		t.Fatalf("alice CreateMessage: %v", err)
	}
	bobFirst, err := bob.CreateMessage(rand.Reader, alice.X3DH.Identity.XPub, alice.X3DH.Prekey.Pub, []byte("from bob"))
	if err != nil {
		t.Fatalf("bob CreateMessage: %v", err)
	}

	// Each receives the other's X3DH envelope and, since it's an
	// X3DHEnvelope, unconditionally replaces whatever ratchet session
	// it already had from initiating its own handshake.
	if _, err := bob.AttemptMessageDecryption(rand.Reader, aliceFirst); err != nil {
		t.Fatalf("bob decrypt alice's handshake: %v", err)
	}
	if _, err := alice.AttemptMessageDecryption(rand.Reader, bobFirst); err != nil {
		t.Fatalf("alice decrypt bob's handshake: %v", err)
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	alice, bob := newPair(t)

	msg, err := alice.CreateMessage(rand.Reader, bob.X3DH.Identity.XPub, bob.X3DH.Prekey.Pub, []byte("persisted"))
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}

	blob, err := alice.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	restored, err := client.Unmarshal(blob)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !restored.HasSession() || !restored.Unacknowledged() {
		t.Fatal("restored client should keep its session and pending handshake")
	}

	if _, err := bob.AttemptMessageDecryption(rand.Reader, msg); err != nil {
		t.Fatalf("bob decrypt: %v", err)
	}
	reply, err := bob.CreateMessage(rand.Reader, restored.X3DH.Identity.XPub, restored.X3DH.Prekey.Pub, []byte("hi back"))
	if err != nil {
		t.Fatalf("bob CreateMessage: %v", err)
	}
	plaintext, err := restored.AttemptMessageDecryption(rand.Reader, reply)
	if err != nil {
		t.Fatalf("restored client decrypt: %v", err)
	}
	if string(plaintext) != "hi back" {
		t.Fatalf("got %q", plaintext)
	}
}
