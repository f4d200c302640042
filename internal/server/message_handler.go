package server

import (
	"net/http"

	"gnsnode/internal/message"
	"gnsnode/pkg/envelope"
	"gnsnode/pkg/errors"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	c, _ := callerFrom(r.Context())
	var env envelope.Envelope
	if err := decodeJSON(r, &env); err != nil {
		writeError(w, errors.ErrMalformedEnvelope)
		return
	}
	res, err := s.deps.Messages.Send(r.Context(), c.PK, &env)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handlePullMessages(w http.ResponseWriter, r *http.Request) {
	c, _ := callerFrom(r.Context())
	q := r.URL.Query()
	since, err := parseSince(q.Get("since"))
	if err != nil {
		writeError(w, err)
		return
	}
	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.deps.Messages.Pull(r.Context(), c.PK, message.PullQuery{Since: since, Limit: limit})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAckMessages(w http.ResponseWriter, r *http.Request) {
	c, _ := callerFrom(r.Context())
	var cmd message.AckCommand
	if err := decodeJSON(r, &cmd); err != nil {
		writeError(w, err)
		return
	}
	n, err := s.deps.Messages.Ack(r.Context(), c.PK, cmd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": n})
}

func (s *Server) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	c, _ := callerFrom(r.Context())
	env, err := s.deps.Messages.Get(r.Context(), c.PK, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}
