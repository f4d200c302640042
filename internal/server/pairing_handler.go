package server

import (
	"net/http"

	"gnsnode/internal/pairing"

	"github.com/go-chi/chi/v5"
)

type approveSessionRequest struct {
	PublicKey string `json:"public_key"`
	Signature string `json:"signature"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	dto, err := s.deps.Pairing.CreateSession(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

// handleSessionStatus is polled by the companion. The token appears in the
// first response after approval only.
func (s *Server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	dto, err := s.deps.Pairing.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, dto)
}

func (s *Server) handleApproveSession(w http.ResponseWriter, r *http.Request) {
	var req approveSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	dto, err := s.deps.Pairing.Approve(r.Context(), pairing.ApproveCommand{
		SessionID: chi.URLParam(r, "id"),
		PublicKey: req.PublicKey,
		Signature: req.Signature,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (s *Server) handleRevokeSession(w http.ResponseWriter, r *http.Request) {
	c, _ := callerFrom(r.Context())
	if err := s.deps.Pairing.Revoke(r.Context(), chi.URLParam(r, "id"), c.PK); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
