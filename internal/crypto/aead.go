package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// NonceSize is the AES-256-GCM nonce length used throughout the
// protocol: 12 bytes, the standard GCM nonce size.
const NonceSize = 12

// Seal encrypts plaintext under key (32 bytes) and nonce (12 bytes),
// authenticating ad, and returns ciphertext with the 16-byte GCM tag
// appended.
func Seal(key, nonce, ad, plaintext []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("crypto: bad nonce size %d", len(nonce))
	}
	return aead.Seal(nil, nonce, plaintext, ad), nil
}

// Open decrypts and authenticates ciphertext produced by Seal.
func Open(key, nonce, ad, ciphertext []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("crypto: bad nonce size %d", len(nonce))
	}
	return aead.Open(nil, nonce, ciphertext, ad)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
