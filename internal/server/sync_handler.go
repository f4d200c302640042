package server

import (
	"net/http"

	"gnsnode/internal/gossip"
	"gnsnode/internal/identity"
	"gnsnode/pkg/errors"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleSyncPull(w http.ResponseWriter, r *http.Request) {
	entity := identity.EntityType(chi.URLParam(r, "type"))
	if !entity.Valid() {
		writeError(w, errors.InvalidArgDetails("unknown sync type", map[string]any{
			"type":    string(entity),
			"allowed": []identity.EntityType{identity.EntityRecords, identity.EntityAliases, identity.EntityEpochs},
		}))
		return
	}
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
	res, err := s.deps.Sync.Pull(r.Context(), entity, since, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSyncPush(w http.ResponseWriter, r *http.Request) {
	var cmd gossip.PushCommand
	if err := decodeJSON(r, &cmd); err != nil {
		writeError(w, err)
		return
	}
	res, err := s.deps.Sync.Push(r.Context(), cmd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.Sync.Status(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
