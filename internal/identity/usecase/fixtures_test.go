package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"gnsnode/config"
	"gnsnode/internal/identity"
	models "gnsnode/internal/identity/model"
	"gnsnode/internal/identity/repository"
	"gnsnode/pkg/envelope"
	"gnsnode/pkg/logger"

	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestUsecase(t *testing.T) (*IdentityUsecase, *repository.MemoryRepository) {
	t.Helper()
	repo := repository.NewMemoryRepository()
	uc := NewIdentityUsecase(repo, logger.Nop(), *config.Default())
	uc.now = func() time.Time { return baseTime }
	return uc, repo
}

func newIdentity(t *testing.T) *envelope.IdentityKeyPair {
	t.Helper()
	id, err := envelope.GenerateIdentity()
	require.NoError(t, err)
	return id
}

func signedRecord(t *testing.T, id *envelope.IdentityKeyPair, updated time.Time, version int) identity.PublishRecordCommand {
	t.Helper()
	body := models.RecordBody{
		PkRoot:          id.PublicHex,
		Version:         version,
		TrustScore:      42.5,
		BreadcrumbCount: 180,
		Endpoints: []models.Endpoint{
			{Type: "relay", Protocol: "wss", Address: "relay.example.org", Priority: 1, IsActive: true},
		},
		CreatedAt: baseTime.Add(-24 * time.Hour),
		UpdatedAt: updated,
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	msg, err := identity.RecordSigningBytes(raw)
	require.NoError(t, err)
	return identity.PublishRecordCommand{
		PublicKey:  id.PublicHex,
		RecordJSON: raw,
		Signature:  envelope.SignDetached(id.PrivateKey, msg),
	}
}

func publishRecord(t *testing.T, uc *IdentityUsecase, id *envelope.IdentityKeyPair) {
	t.Helper()
	_, err := uc.PublishRecord(context.Background(), signedRecord(t, id, baseTime, 1))
	require.NoError(t, err)
}

func signedClaim(t *testing.T, id *envelope.IdentityKeyPair, handle string, breadcrumbs int, trust float64) identity.ClaimAliasCommand {
	t.Helper()
	proof, err := json.Marshal(map[string]any{"breadcrumb_count": breadcrumbs, "trust_score": trust})
	require.NoError(t, err)
	msg, err := identity.AliasSigningBytes(handle, id.PublicHex, proof)
	require.NoError(t, err)
	return identity.ClaimAliasCommand{
		Handle:    handle,
		Identity:  id.PublicHex,
		Proof:     proof,
		Signature: envelope.SignDetached(id.PrivateKey, msg),
	}
}

func signedReservation(t *testing.T, id *envelope.IdentityKeyPair, handle string) identity.ReserveHandleCommand {
	t.Helper()
	msg, err := identity.ReservationSigningBytes(handle, id.PublicHex)
	require.NoError(t, err)
	return identity.ReserveHandleCommand{
		Handle:    handle,
		Identity:  id.PublicHex,
		Signature: envelope.SignDetached(id.PrivateKey, msg),
	}
}

func signedEpoch(t *testing.T, id *envelope.IdentityKeyPair, index int, merkle string, prev *string) identity.PublishEpochCommand {
	t.Helper()
	h := models.EpochHeader{
		EpochIndex:    index,
		StartTime:     baseTime.Add(time.Duration(index) * time.Hour).Format(time.RFC3339),
		EndTime:       baseTime.Add(time.Duration(index+1) * time.Hour).Format(time.RFC3339),
		MerkleRoot:    merkle,
		BlockCount:    10,
		PrevEpochHash: prev,
	}
	msg, err := identity.EpochSigningBytes(h)
	require.NoError(t, err)
	return identity.PublishEpochCommand{
		PublicKey: id.PublicHex,
		Index:     index,
		Header:    h,
		Signature: envelope.SignDetached(id.PrivateKey, msg),
	}
}

func strPtr(s string) *string { return &s }

// syncTasks runs queued work inline and records names.
type syncTasks struct {
	mu    sync.Mutex
	names []string
	errs  []error
}

func (s *syncTasks) Enqueue(name string, fn func(ctx context.Context) error) bool {
	err := fn(context.Background())
	s.mu.Lock()
	s.names = append(s.names, name)
	s.errs = append(s.errs, err)
	s.mu.Unlock()
	return true
}

type fakeGranter struct {
	err   error
	calls []string
}

func (f *fakeGranter) WelcomeGrant(_ context.Context, handle, pk string) error {
	f.calls = append(f.calls, handle+":"+pk)
	return f.err
}

type recordingReplicator struct {
	mu    sync.Mutex
	items map[identity.EntityType]int
}

func (r *recordingReplicator) Replicate(entity identity.EntityType, _ any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.items == nil {
		r.items = map[identity.EntityType]int{}
	}
	r.items[entity]++
}
