package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"mizu/internal/domain"
)

// --- Flags ---

var (
	port          int
	enableLogging bool
)

// --- Constants ---

const (
	defaultPort    = 8080
	minPort        = 0
	maxPort        = 65535
	readHeaderTO   = 5 * time.Second
	readTO         = 10 * time.Second
	writeTO        = 10 * time.Second
	idleTO         = 60 * time.Second
	maxRequestBody = 1 << 20 // 1 MiB cap for incoming JSON bodies
)

const (
	maxPerAddressBox = 1000     // cap postal box items kept per address
	maxItemBytes     = 64 << 10 // 64 KiB max posted item
	maxPendingPokes  = 100      // cap pokes kept per address
	maxPokeBytes     = 16 << 10 // 16 KiB max poke payload
)

type ctxKey string

const ctxKeyReqID ctxKey = "reqid"

// --- Types & Constructors ---

// record is one address's public state: its published keys, its own
// postal box, and any pokes waiting for it.
type record struct {
	identityKey *domain.IdentityPublicKey
	prekey      domain.PrekeyPublicKey
	postalBox   []domain.PostalBoxItem
	pokes       [][]byte
	nextTS      int64
}

// state holds every address's record.
type state struct {
	mu      sync.RWMutex
	records map[string]*record
}

func newState() *state {
	return &state{records: make(map[string]*record)}
}

// getOrCreate returns the record for address, creating an empty one if
// none exists yet. Caller must hold s.mu for writing.
func (s *state) getOrCreate(address string) *record {
	r, ok := s.records[address]
	if !ok {
		r = &record{}
		s.records[address] = r
	}
	return r
}

type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

// --- Middleware ---

func withRecover(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				writeErr(w, http.StatusInternalServerError, "internal error")
				if enableLogging {
					slog.Error("panic", "err", rec)
				}
			}
		}()
		h(w, r)
	}
}

func withReqID(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = genReqID()
		}
		w.Header().Set("X-Request-Id", id)
		ctx := context.WithValue(r.Context(), ctxKeyReqID, id)
		h(w, r.WithContext(ctx))
	}
}

func withLogging(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !enableLogging {
			h(w, r)
			return
		}
		start := time.Now()
		lrw := &loggingResponseWriter{ResponseWriter: w}
		h(lrw, r)
		slog.Info("access",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", clientIP(r),
			"status", lrw.status,
			"bytes", lrw.bytes,
			"dur", time.Since(start),
			"reqid", requestIDFromCtx(r.Context()),
		)
	}
}

func chain(h http.HandlerFunc, mws ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// --- Utilities ---

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(p []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(p)
	lrw.bytes += n
	return n, err
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("encode error: %v", err), http.StatusInternalServerError)
	}
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	if xr := r.Header.Get("X-Real-IP"); xr != "" {
		return xr
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func requestIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyReqID).(string); ok {
		return v
	}
	return ""
}

func genReqID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("req-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

func addressFromPath(r *http.Request, field string) (string, error) {
	v := r.PathValue(field)
	decoded, err := url.PathUnescape(v)
	if err != nil || decoded == "" {
		return "", errors.New("address required")
	}
	return decoded, nil
}

// --- Handlers ---

// handleGetUser returns an address's public record (GET /users/{address}).
// Reading drains its pending pokes.
func (s *state) handleGetUser(w http.ResponseWriter, r *http.Request) {
	address, err := addressFromPath(r, "address")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	rec, ok := s.records[address]
	if !ok {
		s.mu.Unlock()
		http.NotFound(w, r)
		return
	}
	data := domain.UserData{Prekey: rec.prekey}
	if rec.identityKey != nil {
		data.IdentityKey = *rec.identityKey
	}
	data.PostalBox = append(data.PostalBox, rec.postalBox...)
	data.Pokes = append(data.Pokes, rec.pokes...)
	rec.pokes = nil
	s.mu.Unlock()

	if enableLogging {
		slog.Info("get_user",
			"address", address,
			"postal_box_len", len(data.PostalBox),
			"pokes", len(data.Pokes),
			"reqid", requestIDFromCtx(r.Context()),
		)
	}
	writeJSON(w, data)
}

// registerRequest is the body of POST /users/{address}/register.
type registerRequest struct {
	IdentityKey *domain.IdentityPublicKey `json:"identity_key,omitempty"`
	Prekey      domain.PrekeyPublicKey    `json:"prekey"`
}

// handleRegister publishes an address's current prekey, and its identity
// key if supplied (POST /users/{address}/register).
func (s *state) handleRegister(w http.ResponseWriter, r *http.Request) {
	address, err := addressFromPath(r, "address")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	defer r.Body.Close()
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req registerRequest
	if err := dec.Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad request")
		return
	}

	s.mu.Lock()
	rec := s.getOrCreate(address)
	rec.prekey = req.Prekey
	if req.IdentityKey != nil {
		id := *req.IdentityKey
		rec.identityKey = &id
	}
	s.mu.Unlock()

	if enableLogging {
		slog.Info("register",
			"address", address,
			"identity_key_set", req.IdentityKey != nil,
			"reqid", requestIDFromCtx(r.Context()),
		)
	}
	w.WriteHeader(http.StatusNoContent)
}

// postboxRequest is the body of POST /users/{address}/postbox.
type postboxRequest struct {
	Add    [][]byte `json:"add"`
	Remove []int    `json:"remove,omitempty"`
}

// handlePostbox drops the given indices from an address's own postal
// box, then appends the new items, stamping each with a strictly
// increasing timestamp (POST /users/{address}/postbox). There is no server-side
// routing: an address may only ever post to its own box.
func (s *state) handlePostbox(w http.ResponseWriter, r *http.Request) {
	address, err := addressFromPath(r, "address")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	defer r.Body.Close()
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req postboxRequest
	if err := dec.Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad request")
		return
	}
	for _, item := range req.Add {
		if len(item) > maxItemBytes {
			writeErr(w, http.StatusRequestEntityTooLarge, "item too large")
			return
		}
	}

	s.mu.Lock()
	rec := s.getOrCreate(address)

	if len(req.Remove) > 0 {
		drop := make(map[int]bool, len(req.Remove))
		for _, idx := range req.Remove {
			drop[idx] = true
		}
		kept := rec.postalBox[:0]
		for i, item := range rec.postalBox {
			if !drop[i] {
				kept = append(kept, item)
			}
		}
		rec.postalBox = kept
	}

	for _, item := range req.Add {
		rec.nextTS++
		rec.postalBox = append(rec.postalBox, domain.PostalBoxItem{Bytes: item, Timestamp: rec.nextTS})
	}
	if len(rec.postalBox) > maxPerAddressBox {
		rec.postalBox = rec.postalBox[len(rec.postalBox)-maxPerAddressBox:]
	}
	boxLen := len(rec.postalBox)
	s.mu.Unlock()

	if enableLogging {
		slog.Info("postbox",
			"address", address,
			"added", len(req.Add),
			"removed", len(req.Remove),
			"box_len", boxLen,
			"reqid", requestIDFromCtx(r.Context()),
		)
	}
	w.WriteHeader(http.StatusNoContent)
}

// pokeRequest is the body of POST /users/{target}/poke.
type pokeRequest struct {
	From string `json:"from"`
	Data []byte `json:"data"`
}

// handlePoke delivers an out-of-band notification to target, bypassing
// the postal box (POST /users/{target}/poke).
func (s *state) handlePoke(w http.ResponseWriter, r *http.Request) {
	target, err := addressFromPath(r, "address")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	defer r.Body.Close()
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req pokeRequest
	if err := dec.Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad request")
		return
	}
	if len(req.Data) > maxPokeBytes {
		writeErr(w, http.StatusRequestEntityTooLarge, "poke too large")
		return
	}

	s.mu.Lock()
	rec := s.getOrCreate(target)
	rec.pokes = append(rec.pokes, req.Data)
	if len(rec.pokes) > maxPendingPokes {
		rec.pokes = rec.pokes[len(rec.pokes)-maxPendingPokes:]
	}
	s.mu.Unlock()

	if enableLogging {
		slog.Info("poke",
			"target", target,
			"from", req.From,
			"bytes", len(req.Data),
			"reqid", requestIDFromCtx(r.Context()),
		)
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Main ---

func main() {
	pflag.IntVarP(&port, "port", "p", defaultPort, "port to listen on")
	pflag.BoolVar(&enableLogging, "log", false, "enable access logging")
	pflag.Parse()

	if port <= minPort || port > maxPort {
		port = defaultPort
	}

	logger := slog.New(
		slog.NewTextHandler(log.Writer(), &slog.HandlerOptions{Level: slog.LevelInfo}),
	)
	slog.SetDefault(logger)

	s := newState()
	mux := http.NewServeMux()

	mux.HandleFunc(
		"GET /users/{address}",
		chain(s.handleGetUser, withRecover, withReqID, withLogging),
	)
	mux.HandleFunc(
		"POST /users/{address}/register",
		chain(s.handleRegister, withRecover, withReqID, withLogging),
	)
	mux.HandleFunc(
		"POST /users/{address}/postbox",
		chain(s.handlePostbox, withRecover, withReqID, withLogging),
	)
	mux.HandleFunc(
		"POST /users/{address}/poke",
		chain(s.handlePoke, withRecover, withReqID, withLogging),
	)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTO,
		ReadTimeout:       readTO,
		WriteTimeout:      writeTO,
		IdleTimeout:       idleTO,
	}

	go func() {
		slog.Info("Postbox server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Postbox server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}

