package server

import (
	"context"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"gnsnode/pkg/errors"
	"gnsnode/pkg/utils"

	"github.com/go-chi/chi/v5/middleware"
)

const (
	headerPublicKey = "X-GNS-PublicKey"
	headerTimestamp = "X-GNS-Timestamp"
	headerSignature = "X-GNS-Signature"
)

type contextKey int

const callerContextKey contextKey = 1

// caller is the identity a request acts for.
type caller struct {
	PK        string
	Companion bool
}

func withCaller(ctx context.Context, c caller) context.Context {
	return context.WithValue(ctx, callerContextKey, c)
}

func callerFrom(ctx context.Context) (caller, bool) {
	c, ok := ctx.Value(callerContextKey).(caller)
	return c, ok
}

// accessLog logs method, path, status, duration and request id for every request.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error("panic in handler", "panic", rec, "path", r.URL.Path, "stack", string(debug.Stack()))
				writeError(w, errors.Internal("internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) limitBody(next http.Handler) http.Handler {
	limit := s.config.Server.MaxBodyBytes
	if limit <= 0 {
		limit = 1 << 20
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}
		next.ServeHTTP(w, r)
	})
}

// signatureAuth requires a key-holding client: a signature over
// "timestamp:publicKey" inside the allowed clock skew.
func (s *Server) signatureAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pk, err := s.verifySignatureHeaders(r)
		if err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), caller{PK: pk})))
	})
}

// anyAuth accepts signature headers or a companion bearer token.
func (s *Server) anyAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := bearerToken(r); ok {
			pk, err := s.deps.Pairing.Authenticate(r.Context(), token)
			if err != nil {
				writeError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), caller{PK: pk, Companion: true})))
			return
		}
		s.signatureAuth(next).ServeHTTP(w, r)
	})
}

func (s *Server) verifySignatureHeaders(r *http.Request) (string, error) {
	pk := strings.ToLower(r.Header.Get(headerPublicKey))
	err := utils.ValidateChallenge(pk, r.Header.Get(headerTimestamp), r.Header.Get(headerSignature),
		s.now(), s.config.Auth.MaxClockSkew)
	if err != nil {
		return "", err
	}
	return pk, nil
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
