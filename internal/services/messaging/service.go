// Package messaging sends and receives encrypted messages.
//
// It loads or bootstraps an Outer Client per (me, peer) pairing, seals or
// opens plaintext through it, and exchanges the resulting wire envelopes
// with a Transport.
package messaging

import (
	"context"
	"crypto/rand"
	"fmt"

	"mizu/internal/domain"
	"mizu/internal/protocol/client"
	"mizu/internal/protocol/x3dh"
	"mizu/internal/wire"
)

// Service sends and receives messages over a Transport using the Outer
// Client protocol.
//
// The transport has no server-side routing: posting appends to the
// poster's own box, never to a recipient's. So sending to a peer means
// sealing a message and appending it to our own box, and receiving from
// a peer means polling their box rather than ours.
//
// High-level flow:
//   - Send: load or bootstrap a Client for (me, peer), look up or fetch
//     the peer's published bundle, seal the plaintext, persist the
//     updated Client state before posting (so a crash after persisting
//     but before the network call never loses ratchet state), then post
//     to our own box.
//   - Receive: for every known contact, fetch their box, skip anything
//     at or before the last-seen timestamp for that pairing, and
//     attempt decryption of the rest. An item that doesn't decrypt may
//     simply belong to one of that contact's other correspondents; it
//     is skipped, not treated as fatal, and the timestamp still
//     advances so it is never retried.
type Service struct {
	idStore      domain.IdentityStore
	pkStore      domain.PrekeyStore
	contacts     domain.ContactStore
	clientStates domain.ClientStateStore
	history      domain.HistoryStore
	transport    domain.Transport
}

// New constructs a messaging Service.
func New(
	idStore domain.IdentityStore,
	pkStore domain.PrekeyStore,
	contacts domain.ContactStore,
	clientStates domain.ClientStateStore,
	history domain.HistoryStore,
	transport domain.Transport,
) *Service {
	return &Service{
		idStore:      idStore,
		pkStore:      pkStore,
		contacts:     contacts,
		clientStates: clientStates,
		history:      history,
		transport:    transport,
	}
}

var _ domain.MessagingService = (*Service)(nil)

// Send encrypts plaintext for peer and posts it via the transport.
func (s *Service) Send(
	ctx context.Context,
	passphrase string,
	me domain.Address,
	peer domain.Address,
	plaintext []byte,
) error {
	c, err := s.loadOrCreateClient(passphrase, me, peer)
	if err != nil {
		return err
	}
	contact, err := s.resolveContact(ctx, peer)
	if err != nil {
		return err
	}

	msg, err := c.CreateMessage(rand.Reader, contact.IdentityKey, contact.Prekey, plaintext)
	if err != nil {
		return err
	}

	// Persist before sending: a crash here should never lose ratchet
	// state that was already consumed to produce msg.
	if err := s.saveClient(me, peer, c); err != nil {
		return fmt.Errorf("messaging: persisting client state: %w", err)
	}

	encoded, err := wire.EncodeMessage(msg)
	if err != nil {
		return fmt.Errorf("messaging: encoding message: %w", err)
	}
	return s.transport.Post(ctx, [][]byte{encoded}, nil)
}

// Receive checks every known contact's own postal box for items posted
// since we last looked and decrypts what it can.
//
// There is no server-side routing: post appends to the poster's own
// box, so a box we didn't write to ourselves may hold items addressed
// to someone else entirely. Decryption failure against our session for
// that contact is the only way to tell, so it does not stop the scan —
// it just means that particular item wasn't ours, and the timestamp
// still advances so it is never retried.
func (s *Service) Receive(
	ctx context.Context,
	passphrase string,
	me domain.Address,
	limit int,
) ([]domain.DecryptedMessage, error) {
	contacts, err := s.contacts.ListContacts()
	if err != nil {
		return nil, err
	}

	var out []domain.DecryptedMessage
	for peer := range contacts {
		if limit > 0 && len(out) >= limit {
			break
		}

		received, err := s.receiveFrom(ctx, passphrase, me, peer, limit-len(out))
		if err != nil {
			return out, err
		}
		out = append(out, received...)
	}
	return out, nil
}

// receiveFrom scans a single contact's postal box for new items.
func (s *Service) receiveFrom(
	ctx context.Context,
	passphrase string,
	me, peer domain.Address,
	remaining int,
) ([]domain.DecryptedMessage, error) {
	data, ok, err := s.transport.RetrieveUserData(ctx, peer.String())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	lastSeen, err := s.history.LastSeen(me, peer)
	if err != nil {
		return nil, err
	}

	c, err := s.loadOrCreateClient(passphrase, me, peer)
	if err != nil {
		return nil, err
	}

	var out []domain.DecryptedMessage
	advanced := lastSeen
	dirty := false
	for _, item := range data.PostalBox {
		if item.Timestamp <= lastSeen {
			continue
		}
		if remaining > 0 && len(out) >= remaining {
			break
		}

		advanced = item.Timestamp
		dirty = true

		msg, err := wire.DecodeMessage(item.Bytes)
		if err != nil {
			continue
		}
		plaintext, err := c.AttemptMessageDecryption(rand.Reader, msg)
		if err != nil && msg.Kind == domain.MessageKindX3DH {
			plaintext, err = s.retryWithPreviousPrekey(c, msg)
		}
		if err != nil {
			// Not addressed to us, corrupted, or a stale retransmit.
			continue
		}

		decrypted := domain.DecryptedMessage{From: peer, Plaintext: plaintext, Timestamp: item.Timestamp}
		if err := s.history.AppendHistory(me, peer, decrypted); err != nil {
			return out, fmt.Errorf("messaging: appending history: %w", err)
		}
		out = append(out, decrypted)
	}

	if dirty {
		if err := s.saveClient(me, peer, c); err != nil {
			return out, fmt.Errorf("messaging: persisting client state: %w", err)
		}
		if err := s.history.SetLastSeen(me, peer, advanced); err != nil {
			return out, fmt.Errorf("messaging: updating last-seen: %w", err)
		}
	}
	return out, nil
}

func (s *Service) resolveContact(ctx context.Context, peer domain.Address) (domain.UserData, error) {
	if data, ok, err := s.contacts.LoadContact(peer); err != nil {
		return domain.UserData{}, err
	} else if ok {
		return data, nil
	}
	data, ok, err := s.transport.RetrieveUserData(ctx, peer.String())
	if err != nil {
		return domain.UserData{}, err
	}
	if !ok {
		return domain.UserData{}, fmt.Errorf("messaging: no published bundle for %q", peer)
	}
	if err := s.contacts.SaveContact(peer, data); err != nil {
		return domain.UserData{}, err
	}
	return data, nil
}

func (s *Service) loadOrCreateClient(passphrase string, me, peer domain.Address) (*client.Client, error) {
	if state, ok, err := s.clientStates.LoadClientState(me, peer); err != nil {
		return nil, err
	} else if ok {
		return client.Unmarshal(state)
	}

	id, err := s.idStore.LoadIdentity(passphrase)
	if err != nil {
		return nil, err
	}
	ourPrekey, ok, err := s.pkStore.LoadCurrent()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("messaging: no published prekey; rotate one first")
	}

	agent := x3dh.Agent{Identity: id, Prekey: ourPrekey}
	return client.FromAgent(agent, []byte(me.String()), []byte(peer.String())), nil
}

// retryWithPreviousPrekey retries an X3DH envelope that failed to decrypt
// under the current prekey against the single retained previous one. The
// wire format carries no prekey ID, so there's no way to pick the right
// one up front; a sender can still be racing an in-flight rotation.
//
// The attempt runs against a scratch copy of c so a failed retry (the
// message wasn't addressed to us at all) leaves c untouched. On success
// the copy's new Double Ratchet session is adopted into c, but c's own
// published prekey is restored afterward: the current prekey is still
// the one we publish going forward, and AttemptMessageDecryption's X3DH
// branch would otherwise leave the stale previous prekey installed.
func (s *Service) retryWithPreviousPrekey(c *client.Client, msg domain.Message) ([]byte, error) {
	previous, ok, err := s.pkStore.LoadPrevious()
	if err != nil || !ok {
		return nil, fmt.Errorf("messaging: decrypting with current prekey failed and no previous prekey retained")
	}

	trial := *c
	trial.X3DH.Prekey = previous
	plaintext, err := trial.AttemptMessageDecryption(rand.Reader, msg)
	if err != nil {
		return nil, err
	}

	current := c.X3DH.Prekey
	*c = trial
	c.X3DH.Prekey = current
	return plaintext, nil
}

func (s *Service) saveClient(me, peer domain.Address, c *client.Client) error {
	blob, err := c.Marshal()
	if err != nil {
		return err
	}
	return s.clientStates.SaveClientState(me, peer, blob)
}
