// Package v1 wires the HTTP surface of the ledger service. Handlers
// stay thin, delegating all business rules to the service layer.
package v1

import (
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tinoosan/bankcore/internal/service/ledger"
)

// Server wires handlers and middleware using Chi. When a snapshot store
// is configured it backs the snapshot endpoints; otherwise the two CSV
// file paths do.
type Server struct {
	svc              Ledger
	snap             ledger.SnapshotStore
	accountsFile     string
	transactionsFile string
	log              *slog.Logger
	rt               *chi.Mux
}

// New constructs the HTTP server with routes and middleware. snap may
// be nil, in which case snapshots go to the CSV files.
func New(svc Ledger, snap ledger.SnapshotStore, accountsFile, transactionsFile string, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)

	s := &Server{
		svc:              svc,
		snap:             snap,
		accountsFile:     accountsFile,
		transactionsFile: transactionsFile,
		log:              logger,
		rt:               r,
	}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP API endpoints and attaches any
// per-route middleware.
func (s *Server) routes() {
	// Accounts (v1)
	s.rt.With(s.validatePostAccount()).Post("/v1/accounts", s.postAccount)
	s.rt.Get("/v1/accounts", s.listAccounts)
	s.rt.Get("/v1/accounts/{number}", s.getAccount)
	s.rt.Get("/v1/accounts/{number}/history", s.getAccountHistory)
	s.rt.Post("/v1/accounts/{number}/deposit", s.postDeposit)
	s.rt.Post("/v1/accounts/{number}/withdraw", s.postWithdraw)
	// Pending queue (v1)
	s.rt.With(s.validatePostPending()).Post("/v1/pending", s.postPending)
	s.rt.Get("/v1/pending", s.getPendingSize)
	s.rt.Post("/v1/pending/process", s.processPending)
	// Interest and reporting (v1)
	s.rt.Post("/v1/interest", s.postInterest)
	s.rt.Get("/v1/stats", s.getStats)
	// Snapshots (v1)
	s.rt.Post("/v1/snapshot/save", s.saveSnapshot)
	s.rt.Post("/v1/snapshot/load", s.loadSnapshot)
	// Health and metrics (unversioned)
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Method(http.MethodGet, "/metrics", metricsHandler())
}
