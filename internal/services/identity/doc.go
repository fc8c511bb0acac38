// Package identity manages creation, encryption and loading of the local identity.
//
// It generates the long-term X25519 identity keypair and persists it via
// the domain.IdentityStore.
package identity
