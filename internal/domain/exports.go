package domain

import (
	interfaces "mizu/internal/domain/interfaces"
	types "mizu/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Address          = types.Address
	Fingerprint      = types.Fingerprint
	PrekeyID         = types.PrekeyID
	Identity         = types.Identity
	PrekeyKeyPair    = types.PrekeyKeyPair
	PrekeyPublic     = types.PrekeyPublic
	MessageKind      = types.MessageKind
	DRHeader         = types.DRHeader
	DRMessage        = types.DRMessage
	X3DHEnvelope     = types.X3DHEnvelope
	RegularEnvelope  = types.RegularEnvelope
	Message          = types.Message
	DecryptedMessage = types.DecryptedMessage
	UserData         = types.UserData
	PostalBoxItem    = types.PostalBoxItem
	X25519Public     = types.X25519Public
	X25519Private    = types.X25519Private

	IdentityPublicKey  = types.IdentityPublicKey
	IdentityPrivateKey = types.IdentityPrivateKey
	PrekeyPublicKey    = types.PrekeyPublicKey
	PrekeyPrivateKey   = types.PrekeyPrivateKey
	EphemeralPublicKey = types.EphemeralPublicKey
	EphemeralPrivateKey = types.EphemeralPrivateKey
	RatchetPublicKey    = types.RatchetPublicKey
	RatchetPrivateKey   = types.RatchetPrivateKey
)

// Constant aliases for the Message tag values.
const (
	MessageKindX3DH    = types.MessageKindX3DH
	MessageKindRegular = types.MessageKindRegular
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	IdentityService  = interfaces.IdentityService
	PrekeyService    = interfaces.PrekeyService
	MessagingService = interfaces.MessagingService
	Transport        = interfaces.Transport
	IdentityStore    = interfaces.IdentityStore
	PrekeyStore      = interfaces.PrekeyStore
	ContactStore     = interfaces.ContactStore
	ClientStateStore = interfaces.ClientStateStore
	HistoryStore     = interfaces.HistoryStore
)
