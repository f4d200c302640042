// Package server exposes the node over HTTP: ledger, sync, messaging,
// pairing and the realtime upgrade.
package server

import (
	"context"
	"net/http"
	"time"

	"gnsnode/config"
	"gnsnode/internal/gossip"
	"gnsnode/internal/identity"
	"gnsnode/internal/message"
	"gnsnode/internal/pairing"
	"gnsnode/internal/realtime"
	"gnsnode/pkg/logger"

	"github.com/go-chi/chi/v5"
)

type Deps struct {
	Identity identity.Usecase
	Messages message.Usecase
	Pairing  pairing.Usecase
	Sync     gossip.Usecase
	Hub      *realtime.Hub
	// Ready reports whether the datastore is reachable. Nil means always ready.
	Ready func(ctx context.Context) error
}

type Server struct {
	deps   Deps
	config config.Config
	logger logger.Logger
	router chi.Router
	now    func() time.Time
}

func New(deps Deps, cfg config.Config, logger logger.Logger) *Server {
	s := &Server{
		deps:   deps,
		config: cfg,
		logger: logger.With("component", "http"),
		now:    time.Now,
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// HTTPServer returns a configured *http.Server for the node.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              ":" + s.config.Server.Port,
		Handler:           s.router,
		ReadTimeout:       s.config.Server.ReadTimeout,
		ReadHeaderTimeout: s.config.Server.ReadTimeout,
		WriteTimeout:      s.config.Server.WriteTimeout,
	}
}
