package app

import (
	"net/http"

	"mizu/internal/domain"
	"mizu/internal/postbox"
	identitysvc "mizu/internal/services/identity"
	messagingsvc "mizu/internal/services/messaging"
	prekeysvc "mizu/internal/services/prekey"
	"mizu/internal/store"
)

// Wire bundles all stores, services, and clients for the CLI.
type Wire struct {
	IdentityService  domain.IdentityService
	PrekeyService    domain.PrekeyService
	MessagingService domain.MessagingService
	Transport        domain.Transport
	ContactStore     domain.ContactStore
	HTTPClient       *http.Client
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	// File-based stores.
	idStore := store.NewIdentityFileStore(cfg.HomeDir)
	prekeyStore := store.NewPrekeyFileStore(cfg.HomeDir)
	contactStore := store.NewContactFileStore(cfg.HomeDir)
	clientStateStore := store.NewClientStateFileStore(cfg.HomeDir)
	historyStore := store.NewHistoryFileStore(cfg.HomeDir)

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	transport := postbox.NewHTTP(cfg.PostboxURL, cfg.Address, httpClient)

	idSvc := identitysvc.New(idStore)
	prekeySvc := prekeysvc.New(prekeyStore)
	messagingSvc := messagingsvc.New(idStore, prekeyStore, contactStore, clientStateStore, historyStore, transport)

	return &Wire{
		IdentityService:  idSvc,
		PrekeyService:    prekeySvc,
		MessagingService: messagingSvc,
		Transport:        transport,
		ContactStore:     contactStore,
		HTTPClient:       httpClient,
	}, nil
}
