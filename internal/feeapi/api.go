// Package feeapi serves the ledger node over HTTP: chain and schedule views,
// the queue of due randomness requests, instruction submission and, when
// enabled, the Prometheus metrics.
package feeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/holiman/uint256"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"github.com/tos-network/feecycle/attestation"
	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/core"
	"github.com/tos-network/feecycle/core/types"
	"github.com/tos-network/feecycle/log"
	"github.com/tos-network/feecycle/metrics"
	"github.com/tos-network/feecycle/schedule"
	"github.com/tos-network/feecycle/token"
)

// Routes served by the API.
const (
	PathChain    = "/v1/chain"
	PathAccounts = "/v1/accounts"
	PathSchedule = "/v1/schedule"
	PathMint     = "/v1/mint"
	PathPending  = "/v1/requests"
	PathRequest  = "/v1/requests/:address"
	PathToken    = "/v1/tokens/:address"
	PathBalance  = "/v1/balances/:address"
	PathNonce    = "/v1/nonces/:address"
	PathSubmit   = "/v1/instructions"
)

var callMeter = metrics.NewRegisteredCounterVec("feeapi/calls", "API calls by route and status.", "route", "status")

// Backend is the ledger node as served by the API.
type Backend interface {
	ChainID() uint64
	Slot() uint64
	Accounts() *core.GenesisAccounts
	Schedule() (*schedule.Record, error)
	PendingRequests() []*attestation.Request
	Request(addr common.Address) (*attestation.Request, error)
	Mint() (*token.Mint, error)
	TokenAccount(addr common.Address) (*token.Account, error)
	Balance(addr common.Address) *uint256.Int
	Nonce(addr common.Address) uint64
	Apply(si *types.SignedInstruction) error
}

type api struct {
	b       Backend
	maxBody int64
}

// NewHandler returns the HTTP handler serving b.
func NewHandler(b Backend, cfg Config) http.Handler {
	a := &api{b: b, maxBody: cfg.MaxBodySize}
	if a.maxBody <= 0 {
		a.maxBody = Defaults.MaxBodySize
	}
	router := httprouter.New()
	router.GET(PathChain, a.chain)
	router.GET(PathAccounts, a.accounts)
	router.GET(PathSchedule, a.schedule)
	router.GET(PathMint, a.mint)
	router.GET(PathPending, a.pending)
	router.GET(PathRequest, a.request)
	router.GET(PathToken, a.tokenAccount)
	router.GET(PathBalance, a.balance)
	router.GET(PathNonce, a.nonce)
	router.POST(PathSubmit, a.submit)
	if cfg.Metrics.Enabled && cfg.Metrics.Path != "" {
		router.Handler(http.MethodGet, cfg.Metrics.Path, metrics.Handler())
	}

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CorsAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(router)
}

func writeJSON(w http.ResponseWriter, route string, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug("Failed to write API response", "route", route, "err", err)
	}
	callMeter.WithLabelValues(route, fmt.Sprint(status)).Inc()
}

func writeError(w http.ResponseWriter, route string, status int, err error) {
	writeJSON(w, route, status, &ErrorView{Error: err.Error()})
}

// statusOf maps a read error onto an HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, schedule.ErrNotInitialized),
		errors.Is(err, attestation.ErrRequestNotFound),
		errors.Is(err, token.ErrMintNotFound),
		errors.Is(err, token.ErrAccountNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func addressParam(ps httprouter.Params) (common.Address, error) {
	return common.ParseAddress(ps.ByName("address"))
}

func (a *api) chain(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, PathChain, http.StatusOK, &ChainInfo{ChainID: a.b.ChainID(), Slot: a.b.Slot()})
}

func (a *api) accounts(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, PathAccounts, http.StatusOK, a.b.Accounts())
}

func (a *api) schedule(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	rec, err := a.b.Schedule()
	if err != nil {
		writeError(w, PathSchedule, statusOf(err), err)
		return
	}
	writeJSON(w, PathSchedule, http.StatusOK, rec)
}

func (a *api) mint(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	m, err := a.b.Mint()
	if err != nil {
		writeError(w, PathMint, statusOf(err), err)
		return
	}
	writeJSON(w, PathMint, http.StatusOK, NewMintView(m))
}

func (a *api) pending(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	reqs := a.b.PendingRequests()
	if reqs == nil {
		reqs = []*attestation.Request{}
	}
	writeJSON(w, PathPending, http.StatusOK, reqs)
}

func (a *api) request(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	addr, err := addressParam(ps)
	if err != nil {
		writeError(w, PathRequest, http.StatusBadRequest, err)
		return
	}
	req, err := a.b.Request(addr)
	if err != nil {
		writeError(w, PathRequest, statusOf(err), err)
		return
	}
	writeJSON(w, PathRequest, http.StatusOK, req)
}

func (a *api) tokenAccount(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	addr, err := addressParam(ps)
	if err != nil {
		writeError(w, PathToken, http.StatusBadRequest, err)
		return
	}
	acc, err := a.b.TokenAccount(addr)
	if err != nil {
		writeError(w, PathToken, statusOf(err), err)
		return
	}
	writeJSON(w, PathToken, http.StatusOK, NewAccountView(acc))
}

func (a *api) balance(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	addr, err := addressParam(ps)
	if err != nil {
		writeError(w, PathBalance, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, PathBalance, http.StatusOK, &BalanceView{Address: addr, Balance: decimal(a.b.Balance(addr))})
}

func (a *api) nonce(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	addr, err := addressParam(ps)
	if err != nil {
		writeError(w, PathNonce, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, PathNonce, http.StatusOK, &NonceView{Address: addr, Nonce: a.b.Nonce(addr)})
}

func (a *api) submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var si types.SignedInstruction
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, a.maxBody)).Decode(&si); err != nil {
		writeError(w, PathSubmit, http.StatusBadRequest, fmt.Errorf("invalid instruction: %v", err))
		return
	}
	if err := a.b.Apply(&si); err != nil {
		writeError(w, PathSubmit, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, PathSubmit, http.StatusOK, struct{}{})
}

// Server runs the API on a TCP listener.
type Server struct {
	srv      *http.Server
	listener net.Listener
}

// NewServer creates an API server for b.
func NewServer(b Backend, cfg Config) *Server {
	return &Server{srv: &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port)),
		Handler:      NewHandler(b, cfg),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}}
}

// Start begins serving in the background.
func (s *Server) Start() error {
	l, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	s.listener = l
	go func() {
		if err := s.srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("API server failed", "err", err)
		}
	}()
	log.Info("API server started", "endpoint", "http://"+l.Addr().String())
	return nil
}

// Addr returns the listening address once started.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
