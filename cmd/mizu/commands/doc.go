// Package commands defines the mizu CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init           Create or rotate the local identity
//   - fingerprint    Print the identity fingerprint
//   - register       Rotate and publish your prekey to the postbox server
//   - contact        Cache a peer's published bundle as a known contact
//   - send           Encrypt and send a message to a peer address
//   - recv           Fetch and decrypt queued messages from known contacts
//
// # Implementation
//
// The root command constructs an HTTP client and builds a dependency graph
// (stores, services, postbox transport) before any subcommand runs, so
// handlers can use a shared app context with timeouts and connection
// pooling.
package commands
