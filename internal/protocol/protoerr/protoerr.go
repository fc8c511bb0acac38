// Package protoerr defines the error taxonomy returned by the protocol
// layer (x3dh, ratchet, client). Most conditions here are ordinary,
// recoverable failures a caller should expect and handle — a forged or
// corrupt message, an unlucky skip distance. Invariant violations (e.g.
// encrypting before a session exists) are bugs, not error conditions,
// and are panics instead; see each package's docs for which is which.
package protoerr

import (
	"errors"
	"fmt"
)

// Kind classifies a CryptoError.
type Kind int

const (
	// AEADEncryption means sealing a plaintext failed. With a
	// correctly sized key and nonce this cannot happen in practice;
	// seeing it means the AEAD primitive itself is broken.
	AEADEncryption Kind = iota
	// AEADDecryption means opening a ciphertext failed: a forged,
	// corrupted, or misrouted message, or associated data that
	// doesn't match what the sender used.
	AEADDecryption
	// Serialization means encoding a value to the wire format failed.
	Serialization
	// Deserialization means decoding a wire value failed: truncated
	// input, a bad length prefix, or an unrecognised tag.
	Deserialization
	// TooManySkippedMessages means accepting a message would require
	// skipping more keys in a chain than MaxSkip allows.
	TooManySkippedMessages
	// UnreadableDoubleRatchetMessage means a Regular envelope arrived
	// before any Double Ratchet session exists to read it with.
	UnreadableDoubleRatchetMessage
)

func (k Kind) String() string {
	switch k {
	case AEADEncryption:
		return "aead_encryption"
	case AEADDecryption:
		return "aead_decryption"
	case Serialization:
		return "serialization"
	case Deserialization:
		return "deserialization"
	case TooManySkippedMessages:
		return "too_many_skipped_messages"
	case UnreadableDoubleRatchetMessage:
		return "unreadable_double_ratchet_message"
	default:
		return "unknown"
	}
}

// CryptoError is the error type returned by the protocol layer. Label
// names the operation or object involved (e.g. "initial message", a
// peer address); Detail, when set, wraps the underlying cause.
type CryptoError struct {
	Kind   Kind
	Label  string
	Detail error
}

func (e *CryptoError) Error() string {
	if e.Detail != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Label, e.Detail)
	}
	if e.Label != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Label)
	}
	return e.Kind.String()
}

func (e *CryptoError) Unwrap() error { return e.Detail }

// Is reports whether target is a CryptoError of the same Kind,
// independent of Label/Detail, so callers can do
// errors.Is(err, protoerr.New(protoerr.TooManySkippedMessages, "", nil)).
func (e *CryptoError) Is(target error) bool {
	var other *CryptoError
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

// New builds a CryptoError.
func New(kind Kind, label string, detail error) *CryptoError {
	return &CryptoError{Kind: kind, Label: label, Detail: detail}
}

// Sentinels for the parameterless kinds, for errors.Is comparisons.
var (
	ErrTooManySkippedMessages         = New(TooManySkippedMessages, "", nil)
	ErrUnreadableDoubleRatchetMessage = New(UnreadableDoubleRatchetMessage, "", nil)
)
