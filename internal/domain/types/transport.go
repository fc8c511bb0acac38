package types

// UserData is what the transport returns for a registered address: its
// published identity key and current prekey, its postal box of pending
// messages, and any out-of-band pokes waiting for it.
type UserData struct {
	IdentityKey IdentityPublicKey `json:"identity_key"`
	Prekey      PrekeyPublicKey   `json:"prekey"`
	PostalBox   []PostalBoxItem   `json:"postal_box"`
	Pokes       [][]byte          `json:"pokes,omitempty"`
}

// PostalBoxItem is a single posted item together with the time the
// transport received it.
type PostalBoxItem struct {
	Bytes     []byte `json:"bytes"`
	Timestamp int64  `json:"timestamp"`
}
