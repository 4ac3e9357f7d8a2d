package rpc

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lockdropd/native/lockdrop"
	"lockdropd/observability"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
)

// Server exposes the lockdrop ledger over JSON-RPC. Mutating methods require
// the bearer token from LOCKDROP_RPC_TOKEN when one is configured.
type Server struct {
	processor *lockdrop.Processor
	log       *slog.Logger
	authToken string
	now       func() uint64
}

// NewServer wires a server over the transaction processor.
func NewServer(processor *lockdrop.Processor, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		processor: processor,
		log:       log,
		authToken: strings.TrimSpace(os.Getenv("LOCKDROP_RPC_TOKEN")),
		now:       func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// Router assembles the HTTP surface: the JSON-RPC endpoint plus health and
// metrics probes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/", s.handle)
	return r
}

// Start serves the router on addr and blocks.
func (s *Server) Start(addr string) error {
	s.log.Info("starting JSON-RPC server", "addr", addr)
	return http.ListenAndServe(addr, s.Router())
}

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      interface{}       `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: &RPCError{Code: code, Message: message}}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

type rpcHandler struct {
	fn       func(*RPCRequest) (interface{}, *RPCError)
	mutating bool
}

func (s *Server) handlers() map[string]rpcHandler {
	return map[string]rpcHandler{
		"lockdrop_deposit":      {fn: s.handleDeposit, mutating: true},
		"lockdrop_withdraw":     {fn: s.handleWithdraw, mutating: true},
		"lockdrop_invest":       {fn: s.handleInvest, mutating: true},
		"lockdrop_delegate":     {fn: s.handleDelegate, mutating: true},
		"lockdrop_enableClaims": {fn: s.handleEnableClaims, mutating: true},
		"lockdrop_claimRewards": {fn: s.handleClaimRewards, mutating: true},
		"lockdrop_updateConfig": {fn: s.handleUpdateConfig, mutating: true},
		"lockdrop_getConfig":    {fn: s.handleGetConfig},
		"lockdrop_getState":     {fn: s.handleGetState},
		"lockdrop_getUserInfo":  {fn: s.handleGetUserInfo},
		"lockdrop_getLockup":    {fn: s.handleGetLockup},
	}
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	w.Header().Set("Content-Type", "application/json")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "failed to read request body")
		return
	}
	var req RPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload")
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version")
		return
	}

	method := strings.TrimSpace(req.Method)
	handler, ok := s.handlers()[method]
	if !ok {
		observability.Metrics().Observe(method, http.StatusNotFound, time.Since(started))
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, "method not found")
		return
	}
	if handler.mutating {
		if rpcErr := s.requireAuth(r); rpcErr != nil {
			observability.Metrics().Observe(method, http.StatusUnauthorized, time.Since(started))
			writeError(w, http.StatusUnauthorized, req.ID, rpcErr.Code, rpcErr.Message)
			return
		}
	}

	result, rpcErr := handler.fn(&req)
	if rpcErr != nil {
		status := http.StatusBadRequest
		if rpcErr.Code == codeServerError {
			status = http.StatusInternalServerError
		}
		observability.Metrics().Observe(method, status, time.Since(started))
		s.log.Warn("rpc request failed", "method", method, "error", rpcErr.Message)
		writeError(w, status, req.ID, rpcErr.Code, rpcErr.Message)
		return
	}
	observability.Metrics().Observe(method, http.StatusOK, time.Since(started))
	writeResult(w, req.ID, result)
}

func (s *Server) requireAuth(r *http.Request) *RPCError {
	if s.authToken == "" {
		return nil
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return &RPCError{Code: codeUnauthorized, Message: "missing bearer token"}
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
		return &RPCError{Code: codeUnauthorized, Message: "invalid bearer token"}
	}
	return nil
}
