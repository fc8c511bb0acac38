package types

// PrekeyKeyPair is the full (private+public) prekey stored locally. There
// is no signature over it and no one-time prekeys: the transport network
// is trusted not to replay published bundles.
type PrekeyKeyPair struct {
	ID   PrekeyID         `json:"id"`
	Priv PrekeyPrivateKey `json:"priv"`
	Pub  PrekeyPublicKey  `json:"pub"`
}

// PrekeyPublic is only the public half, as published to the transport.
// RotatedAt lets a previous prekey be retained for a grace window so
// in-flight initial messages built against it still decrypt.
type PrekeyPublic struct {
	ID        PrekeyID        `json:"id"`
	Pub       PrekeyPublicKey `json:"pub"`
	RotatedAt int64           `json:"rotated_at"`
}
