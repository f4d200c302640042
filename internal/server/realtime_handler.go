package server

import (
	"net/http"
	"strings"

	"gnsnode/internal/realtime"
	"gnsnode/pkg/errors"
	"gnsnode/pkg/utils"
)

// handleWS authenticates the connecting device before the upgrade. A session
// token marks a companion and forces the browser role. Otherwise the query
// must carry a signature over "timestamp:pk".
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pk := strings.ToLower(q.Get("pk"))
	role := realtime.ParseRole(q.Get("device"))

	if token := q.Get("session"); token != "" {
		owner, err := s.deps.Pairing.Authenticate(r.Context(), token)
		if err != nil {
			writeError(w, err)
			return
		}
		if pk != "" && pk != owner {
			writeError(w, errors.Forbidden("session token belongs to another identity"))
			return
		}
		pk = owner
		role = realtime.RoleBrowser
	} else {
		err := utils.ValidateChallenge(pk, q.Get("timestamp"), q.Get("signature"), s.now(), s.config.Auth.MaxClockSkew)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	s.deps.Hub.ServeWS(w, r, pk, role)
}
