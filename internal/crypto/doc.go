// Package crypto exposes the primitives the protocol layer is built on.
//
// Contents
//
//   - X25519 key generation, clamping and Diffie–Hellman (GenerateX25519,
//     ClampX25519PrivateKey, DH)
//   - The X3DH, Root and Chain KDFs (X3DHKDF, RootKDF, ChainKDF*)
//   - AES-256-GCM sealing and opening (Seal, Open)
//   - Best-effort memory wiping for sensitive byte slices (Wipe)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//
// # Notes
//
// Key generation and DH return fixed-size arrays (the raw X25519 types
// from internal/domain, and a [32]byte shared secret); the KDFs and the
// AEAD helpers return byte slices. Callers should treat returned secrets
// as sensitive and rely on Wipe when practical to reduce lifetime in
// memory.
package crypto
