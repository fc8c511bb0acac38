package interfaces

import domaintypes "mizu/internal/domain/types"

// IdentityStore persists your long-term identity keys.
type IdentityStore interface {
	SaveIdentity(passphrase string, id domaintypes.Identity) error
	LoadIdentity(passphrase string) (domaintypes.Identity, error)
}

// PrekeyStore manages the current prekey and a single previous one kept
// around after rotation. The grace window is one rotation: the previous
// prekey stays until the next rotation replaces it, with no time-based
// expiry.
type PrekeyStore interface {
	SaveCurrent(pair domaintypes.PrekeyKeyPair) error
	LoadCurrent() (domaintypes.PrekeyKeyPair, bool, error)

	// LoadPrevious returns the single retained previous prekey, so a
	// handshake built against the prekey just rotated out can still be
	// answered even though the wire format carries no prekey ID to look
	// one up by. Its age is not checked.
	LoadPrevious() (domaintypes.PrekeyKeyPair, bool, error)

	// Find looks up a prekey (current or the retained previous one) by
	// ID, so an initial message built against an about-to-rotate
	// prekey can still be answered.
	Find(id domaintypes.PrekeyID) (domaintypes.PrekeyKeyPair, bool, error)

	// RetainPrevious keeps pair around, stamped with the time it
	// stopped being current, replacing any previously retained prekey.
	// The stamp is recorded but nothing expires the pair by it.
	RetainPrevious(pair domaintypes.PrekeyKeyPair, rotatedAt int64) error
}

// ContactStore caches the last identity key and prekey fetched for a
// peer address, so a retransmit doesn't require a fresh lookup.
type ContactStore interface {
	SaveContact(address domaintypes.Address, data domaintypes.UserData) error
	LoadContact(address domaintypes.Address) (domaintypes.UserData, bool, error)

	// ListContacts returns every cached address, so a receive pass
	// knows which contacts' postal boxes to poll.
	ListContacts() (map[domaintypes.Address]domaintypes.UserData, error)
}

// ClientStateStore persists the serialized Outer Client (X3DH agent,
// Double Ratchet agent, and any unacknowledged first message) for a
// (me, peer) pairing.
type ClientStateStore interface {
	SaveClientState(me, peer domaintypes.Address, state []byte) error
	LoadClientState(me, peer domaintypes.Address) ([]byte, bool, error)
}

// HistoryStore keeps plaintext message history and the last-seen
// timestamp per pairing, so repeated fetches don't replay old messages.
type HistoryStore interface {
	AppendHistory(me, peer domaintypes.Address, msg domaintypes.DecryptedMessage) error
	LastSeen(me, peer domaintypes.Address) (int64, error)
	SetLastSeen(me, peer domaintypes.Address, timestamp int64) error
}
