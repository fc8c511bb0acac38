// Package store provides file-based persistence for mizu's core data.
//
// It contains concrete implementations of the domain storage interfaces,
// serialising data as JSON on disk. All methods are concurrency-safe via
// internal locking. Stored files typically live under the user’s configured
// home directory. Secrets at rest (the identity, and only the identity) are
// additionally sealed behind a passphrase-derived key; see crypto_envelope.go.
//
// The package includes stores for:
//   - Identity keys (IdentityFileStore)
//   - The current and one retained previous prekey (PrekeyFileStore)
//   - Cached peer bundles (ContactFileStore)
//   - Serialized Outer Client state per conversation (ClientStateFileStore)
//   - Decrypted message history and last-seen timestamps (HistoryFileStore)
package store
