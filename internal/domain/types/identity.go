package types

// Identity holds your long-term X25519 keypair. It is the only
// long-lived secret the protocol core needs; there is no signing key,
// since X3DH here has no signed-prekey step.
type Identity struct {
	XPub  IdentityPublicKey  `json:"xpub"`
	XPriv IdentityPrivateKey `json:"xpriv"`
}
