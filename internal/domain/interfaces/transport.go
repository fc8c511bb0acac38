package interfaces

import (
	"context"

	domaintypes "mizu/internal/domain/types"
)

// Transport is how we talk to the network that stands in for a peer's
// postal box: it stores published identity keys and prekeys, queues
// messages for later retrieval, and carries out-of-band pokes.
type Transport interface {
	// Address returns the address this client posts and registers as.
	Address() string

	// RetrieveUserData fetches the published identity key, prekey and
	// postal box for an address. ok is false if the address is unknown.
	RetrieveUserData(ctx context.Context, address string) (domaintypes.UserData, bool, error)

	// Post appends items to our own postal box and removes any items
	// at the given indices (after a successful fetch-and-decrypt pass).
	Post(ctx context.Context, add [][]byte, remove []int) error

	// Poke delivers an out-of-band notification to target, bypassing
	// the postal box.
	Poke(ctx context.Context, target string, data []byte) error

	// Register publishes our identity key (if non-nil; omit to keep
	// the one already on file) and current prekey.
	Register(ctx context.Context, identityKey *domaintypes.IdentityPublicKey, prekey domaintypes.PrekeyPublicKey) error
}
