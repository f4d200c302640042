package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(s.recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Get("/ws", s.handleWS)

	r.Group(func(r chi.Router) {
		r.Use(s.limitBody)

		r.Route("/records", func(r chi.Router) {
			r.Get("/{pk}", s.handleGetRecord)
			r.Put("/{pk}", s.handlePublishRecord)
		})

		r.Route("/aliases", func(r chi.Router) {
			r.Get("/", s.handleCheckHandle)
			r.Get("/{handle}", s.handleGetAlias)
			r.Put("/{handle}", s.handleClaimAlias)
			r.Post("/{handle}/reserve", s.handleReserveHandle)
		})

		r.Route("/epochs", func(r chi.Router) {
			r.Get("/{pk}", s.handleListEpochs)
			r.Get("/{pk}/{index}", s.handleGetEpoch)
			r.Put("/{pk}/{index}", s.handlePublishEpoch)
		})

		r.Route("/sync", func(r chi.Router) {
			r.Get("/status", s.handleSyncStatus)
			r.Post("/push", s.handleSyncPush)
			r.Get("/{type}", s.handleSyncPull)
		})

		r.Route("/messages", func(r chi.Router) {
			r.With(s.signatureAuth).Post("/", s.handleSendMessage)
			r.Group(func(r chi.Router) {
				r.Use(s.anyAuth)
				r.Get("/", s.handlePullMessages)
				r.Post("/ack", s.handleAckMessages)
				r.Get("/{id}", s.handleGetMessage)
			})
		})

		r.Route("/auth/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Get("/{id}", s.handleSessionStatus)
			r.Post("/{id}/approve", s.handleApproveSession)
			r.With(s.signatureAuth).Delete("/{id}", s.handleRevokeSession)
		})
	})
	return r
}
