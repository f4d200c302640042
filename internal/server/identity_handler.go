package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"gnsnode/internal/identity"
	models "gnsnode/internal/identity/model"
	"gnsnode/pkg/errors"

	"github.com/go-chi/chi/v5"
)

type publishRecordRequest struct {
	RecordJSON json.RawMessage `json:"record_json"`
	Signature  string          `json:"signature"`
}

type claimAliasRequest struct {
	Identity  string          `json:"identity"`
	Proof     json.RawMessage `json:"proof"`
	Signature string          `json:"signature"`
}

type reserveHandleRequest struct {
	Identity  string `json:"identity"`
	Signature string `json:"signature"`
}

type publishEpochRequest struct {
	Epoch     models.EpochHeader `json:"epoch"`
	Signature string             `json:"signature"`
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	dto, err := s.deps.Identity.GetRecord(r.Context(), chi.URLParam(r, "pk"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (s *Server) handlePublishRecord(w http.ResponseWriter, r *http.Request) {
	var req publishRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	dto, err := s.deps.Identity.PublishRecord(r.Context(), identity.PublishRecordCommand{
		PublicKey:  chi.URLParam(r, "pk"),
		RecordJSON: req.RecordJSON,
		Signature:  req.Signature,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (s *Server) handleCheckHandle(w http.ResponseWriter, r *http.Request) {
	handle := r.URL.Query().Get("check")
	if handle == "" {
		writeError(w, errors.InvalidArg("check query parameter is required"))
		return
	}
	dto, err := s.deps.Identity.CheckHandle(r.Context(), handle)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (s *Server) handleGetAlias(w http.ResponseWriter, r *http.Request) {
	dto, err := s.deps.Identity.GetAlias(r.Context(), chi.URLParam(r, "handle"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (s *Server) handleClaimAlias(w http.ResponseWriter, r *http.Request) {
	var req claimAliasRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	dto, err := s.deps.Identity.ClaimAlias(r.Context(), identity.ClaimAliasCommand{
		Handle:    chi.URLParam(r, "handle"),
		Identity:  req.Identity,
		Proof:     req.Proof,
		Signature: req.Signature,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

func (s *Server) handleReserveHandle(w http.ResponseWriter, r *http.Request) {
	var req reserveHandleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	dto, err := s.deps.Identity.ReserveHandle(r.Context(), identity.ReserveHandleCommand{
		Handle:    chi.URLParam(r, "handle"),
		Identity:  req.Identity,
		Signature: req.Signature,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

func (s *Server) handleListEpochs(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Identity.ListEpochs(r.Context(), chi.URLParam(r, "pk"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"epochs": list, "count": len(list)})
}

func (s *Server) handleGetEpoch(w http.ResponseWriter, r *http.Request) {
	index, err := epochIndex(r)
	if err != nil {
		writeError(w, err)
		return
	}
	dto, err := s.deps.Identity.GetEpoch(r.Context(), chi.URLParam(r, "pk"), index)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (s *Server) handlePublishEpoch(w http.ResponseWriter, r *http.Request) {
	index, err := epochIndex(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req publishEpochRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	dto, err := s.deps.Identity.PublishEpoch(r.Context(), identity.PublishEpochCommand{
		PublicKey: chi.URLParam(r, "pk"),
		Index:     index,
		Header:    req.Epoch,
		Signature: req.Signature,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

func epochIndex(r *http.Request) (int, error) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		return 0, errors.InvalidArg("epoch index must be a non-negative integer")
	}
	return index, nil
}
