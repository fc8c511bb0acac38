// Package client composes x3dh and ratchet into the single stateful
// object an application actually talks to: something that can be
// handed a plaintext and a peer's published bundle and produce a wire
// Message, or be handed an inbound Message and produce a plaintext,
// without the caller having to know whether a Double Ratchet session
// already exists for that peer.
package client

import (
	"encoding/json"
	"fmt"
	"io"

	"mizu/internal/domain"
	"mizu/internal/protocol/protoerr"
	"mizu/internal/protocol/ratchet"
	"mizu/internal/protocol/x3dh"
	"mizu/internal/wire"
)

// pending tracks the secret and ephemeral key from an X3DH handshake
// we initiated whose first message hasn't been acknowledged yet, so a
// retransmit can reuse the same handshake material instead of running
// X3DH a second time and deriving a different ratchet from scratch.
type pending struct {
	Secret       [32]byte                  `json:"secret"`
	EphemeralPub domain.EphemeralPublicKey `json:"ephemeral_pub"`
}

// Client is one party's end of a conversation with a single peer: its
// own X3DH identity, the Double Ratchet session once one has been
// established, and any not-yet-acknowledged initial handshake.
//
// Concurrency: like ratchet.Agent, Client is not safe for concurrent
// use; callers serialise access per peer.
type Client struct {
	X3DH x3dh.Agent
	DR   *ratchet.Agent

	OurInfo   []byte
	TheirInfo []byte

	unacked *pending
}

// New builds a Client around a freshly generated X3DH identity, drawing
// randomness from rng.
func New(rng io.Reader, ourInfo, theirInfo []byte) (*Client, error) {
	agent, err := x3dh.NewAgent(rng)
	if err != nil {
		return nil, err
	}
	return FromAgent(agent, ourInfo, theirInfo), nil
}

// FromAgent wraps an already-existing X3DH identity, for restoring a
// Client from persisted state.
func FromAgent(agent x3dh.Agent, ourInfo, theirInfo []byte) *Client {
	return &Client{X3DH: agent, OurInfo: ourInfo, TheirInfo: theirInfo}
}

// CreateMessage seals plaintext for peerIdentityPub, bootstrapping an
// X3DH handshake and a Double Ratchet session on the first call and
// using the established ratchet afterwards. There are four cases,
// distinguished by whether a ratchet session and an unacknowledged
// initial handshake exist:
//
//   - neither exists: this is the very first message to this peer.
//     Run X3DH as initiator, seed a ratchet from the result, and wrap
//     the first ratchet message inside the X3DH envelope.
//   - no ratchet but an unacknowledged handshake exists: unreachable,
//     since establishing unacked always establishes DR in the same
//     call.
//   - a ratchet exists and there's nothing unacknowledged: the common
//     case, a plain ratchet-sealed message.
//   - a ratchet exists and a handshake is still unacknowledged: the
//     peer hasn't replied yet. Re-seal with the current (now advanced)
//     ratchet state but resend it inside the ORIGINAL X3DH envelope,
//     so re-registering a new ephemeral key every retry isn't needed.
func (c *Client) CreateMessage(rng io.Reader, peerIdentityPub domain.IdentityPublicKey, peerPrekeyPub domain.PrekeyPublicKey, plaintext []byte) (domain.Message, error) {
	switch {
	case c.DR == nil && c.unacked == nil:
		secret, ephPub, err := c.X3DH.DeriveInitialKeys(rng, peerIdentityPub, peerPrekeyPub)
		if err != nil {
			return domain.Message{}, err
		}
		dr, err := ratchet.Initiate(rng, secret, peerPrekeyPub)
		if err != nil {
			return domain.Message{}, err
		}

		ad := x3dh.BuildAssociatedData(c.X3DH.Identity.XPub, peerIdentityPub, c.OurInfo, c.TheirInfo)
		drMsg, err := dr.EncryptMessage(ad, plaintext)
		if err != nil {
			return domain.Message{}, err
		}
		env, err := c.X3DH.ConstructInitialMessage(secret, ephPub, ad, wire.EncodeDRMessage(drMsg))
		if err != nil {
			return domain.Message{}, err
		}

		c.DR = &dr
		c.unacked = &pending{Secret: secret, EphemeralPub: ephPub}
		return domain.Message{Kind: domain.MessageKindX3DH, X3DH: &env}, nil

	case c.DR == nil && c.unacked != nil:
		panic("client: unacknowledged X3DH handshake with no ratchet session")

	case c.DR != nil && c.unacked == nil:
		ad := x3dh.BuildAssociatedData(c.X3DH.Identity.XPub, peerIdentityPub, c.OurInfo, c.TheirInfo)
		drMsg, err := c.DR.EncryptMessage(ad, plaintext)
		if err != nil {
			return domain.Message{}, err
		}
		return domain.Message{
			Kind:    domain.MessageKindRegular,
			Regular: &domain.RegularEnvelope{IdentityKey: c.X3DH.Identity.XPub, Message: drMsg},
		}, nil

	default: // c.DR != nil && c.unacked != nil
		ad := x3dh.BuildAssociatedData(c.X3DH.Identity.XPub, peerIdentityPub, c.OurInfo, c.TheirInfo)
		drMsg, err := c.DR.EncryptMessage(ad, plaintext)
		if err != nil {
			return domain.Message{}, err
		}
		env, err := c.X3DH.ConstructInitialMessage(c.unacked.Secret, c.unacked.EphemeralPub, ad, wire.EncodeDRMessage(drMsg))
		if err != nil {
			return domain.Message{}, err
		}
		return domain.Message{Kind: domain.MessageKindX3DH, X3DH: &env}, nil
	}
}

// AttemptMessageDecryption opens an inbound Message, establishing or
// replacing the ratchet session as needed:
//
//   - a Regular envelope with no ratchet session can never be read;
//     there is nothing to derive a key from.
//   - an X3DHEnvelope is always accepted and always starts a brand new
//     ratchet session, even if one already existed — this is the same
//     choice as the handshake it mirrors, and carries the same
//     hazard: two parties who both send first at once will each
//     silently discard the other's in-flight ratchet state and have
//     to recover via retransmission.
//   - a Regular envelope with a ratchet session decrypts under it
//     directly.
//
// On success the handshake, if one was still unacknowledged, is
// considered acknowledged and cleared.
func (c *Client) AttemptMessageDecryption(rng io.Reader, msg domain.Message) ([]byte, error) {
	switch msg.Kind {
	case domain.MessageKindRegular:
		if msg.Regular == nil {
			return nil, protoerr.ErrUnreadableDoubleRatchetMessage
		}
		if c.DR == nil {
			return nil, protoerr.ErrUnreadableDoubleRatchetMessage
		}
		ad := x3dh.BuildAssociatedData(msg.Regular.IdentityKey, c.X3DH.Identity.XPub, c.TheirInfo, c.OurInfo)
		plaintext, err := c.DR.AttemptMessageDecryption(rng, msg.Regular.Message, ad)
		if err != nil {
			return nil, err
		}
		c.unacked = nil
		return plaintext, nil

	case domain.MessageKindX3DH:
		if msg.X3DH == nil {
			return nil, protoerr.New(protoerr.Deserialization, "X3DH message missing envelope", nil)
		}
		secret, inner, err := c.X3DH.DecryptInitialMessage(c.X3DH.Prekey, *msg.X3DH, c.TheirInfo, c.OurInfo)
		if err != nil {
			return nil, err
		}
		drMsg, err := wire.DecodeDRMessage(inner)
		if err != nil {
			return nil, protoerr.New(protoerr.Deserialization, "embedded Double Ratchet message", err)
		}

		dr := ratchet.Respond(secret, c.X3DH.Prekey)
		ad := x3dh.BuildAssociatedData(msg.X3DH.IdentityKey, c.X3DH.Identity.XPub, c.TheirInfo, c.OurInfo)
		plaintext, err := dr.AttemptMessageDecryption(rng, drMsg, ad)
		if err != nil {
			return nil, err
		}

		c.DR = &dr
		c.unacked = nil
		return plaintext, nil

	default:
		return nil, protoerr.New(protoerr.Deserialization, "unknown message kind", nil)
	}
}

// HasSession reports whether a Double Ratchet session has been
// established with the peer.
func (c *Client) HasSession() bool { return c.DR != nil }

// Unacknowledged reports whether CreateMessage's last X3DH handshake
// is still waiting on a reply, i.e. whether the next CreateMessage
// call will retransmit rather than derive a fresh message key range
// from a settled ratchet.
func (c *Client) Unacknowledged() bool { return c.unacked != nil }

// diskState is Client's on-disk shape. unacked is unexported so it
// needs its own field here to round-trip through encoding/json.
type diskState struct {
	X3DH      x3dh.Agent     `json:"x3dh"`
	DR        *ratchet.Agent `json:"dr,omitempty"`
	OurInfo   []byte         `json:"our_info,omitempty"`
	TheirInfo []byte         `json:"their_info,omitempty"`
	Unacked   *pending       `json:"unacked,omitempty"`
}

// Marshal renders c for persistence.
func (c *Client) Marshal() ([]byte, error) {
	b, err := json.Marshal(diskState{
		X3DH:      c.X3DH,
		DR:        c.DR,
		OurInfo:   c.OurInfo,
		TheirInfo: c.TheirInfo,
		Unacked:   c.unacked,
	})
	if err != nil {
		return nil, fmt.Errorf("client: marshaling state: %w", err)
	}
	return b, nil
}

// Unmarshal restores a Client previously rendered with Marshal.
func Unmarshal(b []byte) (*Client, error) {
	var ds diskState
	if err := json.Unmarshal(b, &ds); err != nil {
		return nil, fmt.Errorf("client: unmarshaling state: %w", err)
	}
	return &Client{
		X3DH:      ds.X3DH,
		DR:        ds.DR,
		OurInfo:   ds.OurInfo,
		TheirInfo: ds.TheirInfo,
		unacked:   ds.Unacked,
	}, nil
}
