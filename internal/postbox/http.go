package postbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"mizu/internal/domain"
)

// HTTP is a Transport over HTTP.
type HTTP struct {
	base    string
	address string
	client  *http.Client
}

// NewHTTP constructs a Transport that posts and registers as address
// against a postbox server at base.
//
// If client is nil, http.DefaultClient is used.
func NewHTTP(base, address string, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{base: base, address: address, client: client}
}

// Address returns the address this client posts and registers as.
func (c *HTTP) Address() string { return c.address }

// RetrieveUserData fetches the published identity key, prekey, postal
// box and pokes for address via GET /users/{address}.
func (c *HTTP) RetrieveUserData(ctx context.Context, address string) (domain.UserData, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/users/"+url.PathEscape(address), nil)
	if err != nil {
		return domain.UserData{}, false, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return domain.UserData{}, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.UserData{}, false, nil
	}
	if resp.StatusCode/100 != 2 {
		return domain.UserData{}, false, fmt.Errorf("postbox get %s: %s", req.URL, resp.Status)
	}
	var data domain.UserData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return domain.UserData{}, false, err
	}
	return data, true, nil
}

// postPayload is the body of POST /users/{address}/postbox.
type postPayload struct {
	Add    [][]byte `json:"add"`
	Remove []int    `json:"remove,omitempty"`
}

// Post appends items to our own postal box and removes any items at the
// given indices.
func (c *HTTP) Post(ctx context.Context, add [][]byte, remove []int) error {
	return c.postJSON(ctx, "/users/"+url.PathEscape(c.address)+"/postbox", postPayload{Add: add, Remove: remove})
}

// pokePayload is the body of POST /users/{target}/poke.
type pokePayload struct {
	From string `json:"from"`
	Data []byte `json:"data"`
}

// Poke delivers an out-of-band notification to target.
func (c *HTTP) Poke(ctx context.Context, target string, data []byte) error {
	return c.postJSON(ctx, "/users/"+url.PathEscape(target)+"/poke", pokePayload{From: c.address, Data: data})
}

// registerPayload is the body of POST /users/{address}/register.
type registerPayload struct {
	IdentityKey *domain.IdentityPublicKey `json:"identity_key,omitempty"`
	Prekey      domain.PrekeyPublicKey    `json:"prekey"`
}

// Register publishes our identity key (if non-nil) and current prekey.
func (c *HTTP) Register(ctx context.Context, identityKey *domain.IdentityPublicKey, prekey domain.PrekeyPublicKey) error {
	return c.postJSON(ctx, "/users/"+url.PathEscape(c.address)+"/register", registerPayload{
		IdentityKey: identityKey,
		Prekey:      prekey,
	})
}

// postJSON JSON-encodes payload and POSTs it to path, discarding any
// response body.
func (c *HTTP) postJSON(ctx context.Context, path string, payload any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("postbox post %s: %s", path, resp.Status)
	}
	return nil
}

var _ domain.Transport = (*HTTP)(nil)
