// Package rpc exposes the engine over HTTP JSON plus a websocket feed: read
// endpoints for ledger state, compile/submit endpoints for the transaction
// pipeline, and a background poller producing the ledger summary stream.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nexus-ledger/nexusd/internal/core/compliance"
	"github.com/nexus-ledger/nexusd/internal/core/ledger"
	"github.com/nexus-ledger/nexusd/internal/core/submit"
)

// Server wires the store, pipeline, compliance workflow, poller and ws hub
// behind one HTTP listener.
type Server struct {
	addr     string
	store    *ledger.Store
	pipeline *submit.Pipeline
	hub      *Hub
	poller   *Poller

	// the workflow is single-actor; the handler path serializes it
	wfMu     sync.Mutex
	workflow *compliance.Workflow
}

// NewServer assembles the rpc surface
func NewServer(addr string, store *ledger.Store, pipeline *submit.Pipeline, workflow *compliance.Workflow, poller *Poller, hub *Hub) *Server {
	return &Server{
		addr:     addr,
		store:    store,
		pipeline: pipeline,
		workflow: workflow,
		poller:   poller,
		hub:      hub,
	}
}

// Routes builds the route table
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/ledger", s.handleLedger)
	mux.HandleFunc("GET /v1/ledger/{index}", s.handleLedgerAt)
	mux.HandleFunc("GET /v1/assets", s.handleAssets)
	mux.HandleFunc("GET /v1/assets/{id}/holders", s.handleHolders)
	mux.HandleFunc("GET /v1/pools", s.handlePools)
	mux.HandleFunc("GET /v1/book", s.handleBook)
	mux.HandleFunc("GET /v1/audit", s.handleAudit)
	mux.HandleFunc("GET /v1/audit/{hash}", s.handleVerify)
	mux.HandleFunc("POST /v1/compile", s.handleCompile)
	mux.HandleFunc("POST /v1/submit", s.handleSubmit)
	mux.HandleFunc("POST /v1/compliance/select", s.handleComplianceSelect)
	mux.HandleFunc("POST /v1/compliance/confirm", s.handleComplianceConfirm)
	mux.HandleFunc("POST /v1/compliance/cancel", s.handleComplianceCancel)
	mux.Handle("GET /ws", s.hub)

	return withCORS(mux)
}

// Run serves until ctx is cancelled, then drains the listener, hub and
// poller together.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.addr,
		Handler: s.Routes(),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return s.hub.Run(ctx) })
	g.Go(func() error { return s.poller.Run(ctx) })
	g.Go(func() error {
		log.Printf("rpc listening on %s", s.addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Addr formats a host:port listen address
func Addr(ip string, port int) string {
	return net.JoinHostPort(ip, fmt.Sprintf("%d", port))
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.poller.Latest())
}

func (s *Server) handleLedgerAt(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.ParseUint(r.PathValue("index"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid ledger index")
		return
	}
	summary, ok := s.poller.Summary(index)
	if !ok {
		writeError(w, http.StatusNotFound, "ledger not in cache")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Assets())
}

func (s *Server) handleHolders(w http.ResponseWriter, r *http.Request) {
	holders, err := s.store.Holders(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, holders)
}

func (s *Server) handlePools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Pools())
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ledger.DemoBook())
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.AuditLog())
}

// verifyResponse distinguishes the three verification outcomes
type verifyResponse struct {
	Found bool               `json:"found"`
	State string             `json:"state"` // validated | failed | not_found
	Entry *ledger.AuditEntry `json:"entry,omitempty"`
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	entry, status := s.pipeline.Verify(r.PathValue("hash"))
	switch status {
	case submit.VerifyNotFound:
		writeJSON(w, http.StatusNotFound, verifyResponse{Found: false, State: "not_found"})
	case submit.VerifyFailed:
		writeJSON(w, http.StatusOK, verifyResponse{Found: true, State: "failed", Entry: &entry})
	default:
		writeJSON(w, http.StatusOK, verifyResponse{Found: true, State: "validated", Entry: &entry})
	}
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	var req CompileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	templates, err := compileTemplates(req)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": templates})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req CompileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	templates, err := compileTemplates(req)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	receipts := make([]submit.Receipt, 0, len(templates))
	for _, tpl := range templates {
		receipt, err := s.pipeline.Submit(r.Context(), tpl)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		receipts = append(receipts, receipt)
	}
	writeJSON(w, http.StatusOK, map[string]any{"receipts": receipts})
}

type complianceSelectRequest struct {
	AssetID string `json:"assetId"`
	Holder  string `json:"holder"`
	Action  string `json:"action"`
}

func (s *Server) handleComplianceSelect(w http.ResponseWriter, r *http.Request) {
	var req complianceSelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	s.wfMu.Lock()
	defer s.wfMu.Unlock()
	if err := s.workflow.Select(req.AssetID, req.Holder, compliance.Action(req.Action)); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	assetID, holder, action := s.workflow.Selection()
	writeJSON(w, http.StatusOK, map[string]string{
		"state":   s.workflow.State().String(),
		"assetId": assetID,
		"holder":  holder,
		"action":  string(action),
	})
}

func (s *Server) handleComplianceConfirm(w http.ResponseWriter, r *http.Request) {
	s.wfMu.Lock()
	defer s.wfMu.Unlock()

	receipt, err := s.workflow.Confirm(r.Context())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.workflow.Reset()
	writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) handleComplianceCancel(w http.ResponseWriter, r *http.Request) {
	s.wfMu.Lock()
	defer s.wfMu.Unlock()

	if err := s.workflow.Cancel(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	state := s.workflow.State().String()
	s.workflow.Reset()
	writeJSON(w, http.StatusOK, map[string]string{"state": state})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
