package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"gnsnode/config"
	gossipRepo "gnsnode/internal/gossip/repository"
	gossipUsecase "gnsnode/internal/gossip/usecase"
	"gnsnode/internal/identity"
	models "gnsnode/internal/identity/model"
	identityRepo "gnsnode/internal/identity/repository"
	identityUsecase "gnsnode/internal/identity/usecase"
	messageRepo "gnsnode/internal/message/repository"
	messageUsecase "gnsnode/internal/message/usecase"
	"gnsnode/internal/pairing"
	pairingRepo "gnsnode/internal/pairing/repository"
	pairingUsecase "gnsnode/internal/pairing/usecase"
	"gnsnode/internal/realtime"
	"gnsnode/pkg/envelope"
	"gnsnode/pkg/logger"
	"gnsnode/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type testNode struct {
	server  *Server
	handler http.Handler
	hub     *realtime.Hub
	pairing *pairingUsecase.PairingUsecase
}

func newTestNode(t *testing.T) *testNode {
	t.Helper()
	cfg := *config.Default()
	log := logger.Nop()

	idRepo := identityRepo.NewMemoryRepository()
	ids := identityUsecase.NewIdentityUsecase(idRepo, log, cfg)
	hub := realtime.NewHub(cfg.Realtime, log)
	t.Cleanup(hub.CloseAll)
	msgs := messageUsecase.NewMessageUsecase(messageRepo.NewMemoryRepository(), hub, log, cfg)
	pair := pairingUsecase.NewPairingUsecase(pairingRepo.NewMemoryRepository(), log, cfg)
	syncer := gossipUsecase.NewSyncUsecase(gossipRepo.NewMemoryRepository(), idRepo, ids, nil, nil, log, cfg)

	s := New(Deps{
		Identity: ids,
		Messages: msgs,
		Pairing:  pair,
		Sync:     syncer,
		Hub:      hub,
	}, cfg, log)
	return &testNode{server: s, handler: s.Handler(), hub: hub, pairing: pair}
}

func (n *testNode) do(t *testing.T, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.([]byte); ok {
			buf.Write(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	n.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type apiError struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newIdentity(t *testing.T) *envelope.IdentityKeyPair {
	t.Helper()
	id, err := envelope.GenerateIdentity()
	require.NoError(t, err)
	return id
}

func signedHeaders(id *envelope.IdentityKeyPair, at time.Time) http.Header {
	ts := at.UnixMilli()
	h := http.Header{}
	h.Set(headerPublicKey, id.PublicHex)
	h.Set(headerTimestamp, strconv.FormatInt(ts, 10))
	h.Set(headerSignature, utils.SignChallenge(id.PrivateKey, id.PublicHex, ts))
	return h
}

func bearer(token string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	return h
}

func recordRequest(t *testing.T, id *envelope.IdentityKeyPair, updated time.Time) publishRecordRequest {
	t.Helper()
	raw, err := json.Marshal(models.RecordBody{
		PkRoot:          id.PublicHex,
		Version:         1,
		TrustScore:      40,
		BreadcrumbCount: 150,
		CreatedAt:       updated.Add(-time.Hour),
		UpdatedAt:       updated,
	})
	require.NoError(t, err)
	msg, err := identity.RecordSigningBytes(raw)
	require.NoError(t, err)
	return publishRecordRequest{RecordJSON: raw, Signature: envelope.SignDetached(id.PrivateKey, msg)}
}

func (n *testNode) publishRecord(t *testing.T, id *envelope.IdentityKeyPair) {
	t.Helper()
	rec := n.do(t, http.MethodPut, "/records/"+id.PublicHex, recordRequest(t, id, time.Now().UTC()), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func claimRequest(t *testing.T, id *envelope.IdentityKeyPair, handle string, breadcrumbs int, trust float64) claimAliasRequest {
	t.Helper()
	proof, err := json.Marshal(map[string]any{"breadcrumb_count": breadcrumbs, "trust_score": trust})
	require.NoError(t, err)
	msg, err := identity.AliasSigningBytes(handle, id.PublicHex, proof)
	require.NoError(t, err)
	return claimAliasRequest{Identity: id.PublicHex, Proof: proof, Signature: envelope.SignDetached(id.PrivateKey, msg)}
}

func epochRequest(t *testing.T, id *envelope.IdentityKeyPair, index int, merkle string, prev *string) publishEpochRequest {
	t.Helper()
	h := models.EpochHeader{
		EpochIndex:    index,
		MerkleRoot:    merkle,
		BlockCount:    12,
		PrevEpochHash: prev,
	}
	msg, err := identity.EpochSigningBytes(h)
	require.NoError(t, err)
	return publishEpochRequest{Epoch: h, Signature: envelope.SignDetached(id.PrivateKey, msg)}
}

func signedEnvelope(t *testing.T, from *envelope.IdentityKeyPair, to ...string) *envelope.Envelope {
	t.Helper()
	enc, err := envelope.GenerateEncryptionKey()
	require.NoError(t, err)
	sealed, err := envelope.EncryptFor([]byte("hello"), enc.PublicKey)
	require.NoError(t, err)
	e := &envelope.Envelope{
		ID:            uuid.NewString(),
		FromPublicKey: from.PublicHex,
		ToPublicKeys:  to,
		PayloadType:   "gns/text.plain",
		Timestamp:     time.Now().UnixMilli(),
	}
	e.SetPayload(sealed)
	require.NoError(t, envelope.SignInPlace(e, from.PrivateKey))
	return e
}

func (n *testNode) pairCompanion(t *testing.T, id *envelope.IdentityKeyPair) string {
	t.Helper()
	_, token := n.pair(t, id)
	return token
}

// pair runs the full pairing flow for id and returns the session id and bearer token.
func (n *testNode) pair(t *testing.T, id *envelope.IdentityKeyPair) (string, string) {
	t.Helper()
	rec := n.do(t, http.MethodPost, "/auth/sessions", nil, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	session := decode[pairing.SessionDTO](t, rec)

	msg, err := pairing.ApprovalSigningBytes(session.SessionID, session.Challenge, id.PublicHex)
	require.NoError(t, err)
	rec = n.do(t, http.MethodPost, "/auth/sessions/"+session.SessionID+"/approve", approveSessionRequest{
		PublicKey: id.PublicHex,
		Signature: envelope.SignDetached(id.PrivateKey, msg),
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = n.do(t, http.MethodGet, "/auth/sessions/"+session.SessionID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[pairing.SessionStatusDTO](t, rec)
	require.NotEmpty(t, status.Token)
	return session.SessionID, status.Token
}

type fakeTransport struct {
	mu     sync.Mutex
	frames []realtime.Frame
}

func (f *fakeTransport) Write(p []byte) error {
	var fr realtime.Frame
	if err := json.Unmarshal(p, &fr); err != nil {
		return err
	}
	f.mu.Lock()
	f.frames = append(f.frames, fr)
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) Close() error { return nil }

func (f *fakeTransport) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.frames))
	for _, fr := range f.frames {
		out = append(out, fr.Type)
	}
	return out
}
