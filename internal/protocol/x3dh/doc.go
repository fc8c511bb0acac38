// Package x3dh implements the X3DH key-agreement used to bootstrap a
// Double Ratchet session between two parties.
//
// # Overview
//
// X3DH lets an initiator derive a 32-byte shared secret with a
// responder who has published an identity key and a prekey. There is
// no signed prekey and no one-time prekeys: the transport is trusted
// not to replay published bundles, so the handshake uses only three
// Diffie-Hellman values.
//
// # Flows
//
// Initiator (DeriveInitialKeys):
//  1. Generate a fresh ephemeral X25519 keypair.
//  2. DH1 = DH(our identity, peer prekey); DH2 = DH(our ephemeral, peer
//     identity); DH3 = DH(our ephemeral, peer prekey).
//  3. X3DHKDF over DH1‖DH2‖DH3 to produce the shared secret.
//  4. Return the shared secret and the ephemeral public key, which
//     travels with the first message so the responder can recompute it.
//
// Responder (DecryptInitialMessage):
//  1. Recompute DH1‖DH2‖DH3 using our prekey and identity private keys
//     against the sender's identity and ephemeral public keys.
//  2. X3DHKDF the same transcript to the identical shared secret.
//  3. Re-expand the secret to an AEAD key and nonce and open the
//     envelope's ciphertext.
//
// The prekey ID is never sent on the wire: including it would let a
// third party link a message to a specific recipient by prekey
// matching.
package x3dh
