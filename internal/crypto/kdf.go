package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// x3dhDomainSeparator is prepended to every KDF input used by X3DH. It
// guarantees the KDF never operates on a raw all-zero shared secret that
// could arise from a degenerate Diffie-Hellman input, and separates the
// X3DH KDF's output space from any other HKDF use in the protocol.
var x3dhDomainSeparator = [32]byte{
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
}

const x3dhInfo = "MizuProtocol"

// X3DHKDF derives n 32-byte blocks from an X3DH input (the concatenated
// Diffie-Hellman outputs, or later a shared secret being re-expanded to
// derive the initial message's key and nonce). The salt is 32 zero
// bytes and the domain separator guards against operating on a
// degenerate all-zero input.
func X3DHKDF(input []byte, n int) ([][]byte, error) {
	ikm := make([]byte, 0, len(x3dhDomainSeparator)+len(input))
	ikm = append(ikm, x3dhDomainSeparator[:]...)
	ikm = append(ikm, input...)

	salt := make([]byte, sha256.Size)
	r := hkdf.New(sha256.New, ikm, salt, []byte(x3dhInfo))

	out := make([][]byte, n)
	for i := range out {
		block := make([]byte, 32)
		if _, err := io.ReadFull(r, block); err != nil {
			return nil, err
		}
		out[i] = block
	}
	return out, nil
}

const rootKDFInfo = "MizuProtocolRootKey"

// RootKDF advances the Double Ratchet's root key using the output of a
// DH ratchet step, returning a fresh root key and the first chain key
// for the new sending or receiving chain.
func RootKDF(rootKey, dhOutput []byte) (newRootKey, chainKey []byte, err error) {
	r := hkdf.New(sha256.New, dhOutput, rootKey, []byte(rootKDFInfo))
	out := make([]byte, 64)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, nil, err
	}
	return out[:32], out[32:], nil
}

// Chain KDF constant inputs. The symmetric-ratchet KDF chain is raw
// HMAC-SHA256 rather than HKDF: each step needs three independent
// outputs from the same key (message key, nonce material, next chain
// key) and HKDF's extract-then-expand construction buys nothing extra
// over labelling three single-block HMACs, which is what the Double
// Ratchet literature describes and what this mirrors.
var (
	chainKDFMessageKeyLabel = []byte{0x01}
	chainKDFNextChainLabel  = []byte{0x02}
	chainKDFNonceLabel      = []byte{0x03}
)

// ChainKDFMessageKey derives the AEAD key used to seal one message.
func ChainKDFMessageKey(chainKey []byte) []byte {
	return hmacSum(chainKey, chainKDFMessageKeyLabel)
}

// ChainKDFNonceMaterial derives 32 bytes; the first 12 are used as the
// AEAD nonce for the same message.
func ChainKDFNonceMaterial(chainKey []byte) []byte {
	return hmacSum(chainKey, chainKDFNonceLabel)
}

// ChainKDFNextChainKey advances the chain key for the next message.
func ChainKDFNextChainKey(chainKey []byte) []byte {
	return hmacSum(chainKey, chainKDFNextChainLabel)
}

func hmacSum(key, label []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(label)
	return mac.Sum(nil)
}
