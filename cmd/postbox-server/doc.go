// Package main runs the in-memory HTTP postbox server used by mizu during
// development and tests. It stands in for the on-chain account storage the
// production system would use: each address owns a public record holding
// its published identity key and current prekey, a postal box of opaque
// posted items, and a side-channel of pokes.
//
// HTTP API
//
//	GET /users/{address}
//	    Return the record for {address}: identity_key, prekey, postal_box
//	    (each item's bytes and the server-assigned timestamp it was
//	    received at), and any pending pokes.
//
//	POST /users/{address}/register { identity_key?, prekey }
//	    Publish {address}'s current prekey, and its identity key if this
//	    is the first registration (identity_key is immutable afterwards
//	    unless explicitly supplied again).
//
//	POST /users/{address}/postbox { add: [bytes], remove: [index] }
//	    Drop any items at the given indices of {address}'s own postal
//	    box, then append the new items, stamping each with a
//	    server-assigned, strictly increasing timestamp. A poster may only
//	    ever post to its own box; there is no server-side routing to a
//	    recipient.
//
//	POST /users/{target}/poke { from, data }
//	    Append an out-of-band notification to {target}'s poke queue,
//	    bypassing the postal box entirely. Pokes are cleared once read.
//
// Behaviour
//
//   - All state is held in memory and lost on process exit.
//   - Responses are JSON. Non-2xx statuses carry a short error message.
//   - A lightweight access log records method, path, remote, status, bytes
//     and duration for each request.
//   - The default listen address is :8080.
//
// This server never sees plaintext or private keys; it only stores
// ciphertext, public keys, and timestamps.
package main
