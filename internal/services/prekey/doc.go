// Package prekey manages the single medium-term X25519 prekey each
// identity publishes for X3DH bootstrap.
//
// Rotation retains the previous prekey for a grace window so a handshake
// already in flight against it can still be answered.
package prekey
