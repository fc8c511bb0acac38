// Package postbox provides an HTTP implementation of the domain.Transport
// interface used by mizu.
//
// The collaborator it talks to stands in for the on-chain account storage
// the production system would use: each address owns a small public
// record holding its published identity key and prekey, a postal box of
// opaque posted items, and a side-channel of pokes. Posting only ever
// appends to the caller's own record; there is no server-side routing to
// a recipient, so receiving a peer's messages means polling the peer's
// own record rather than your own.
//
// All requests are JSON over HTTP and accept a context for cancellation
// and deadlines. Non-2xx statuses are returned as errors with the HTTP
// method, the target (full URL for GET, request path for POST), and
// status text to aid diagnostics.
package postbox
