package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gnsnode/config"
	"gnsnode/internal/pairing"
	"gnsnode/internal/pairing/mocks"
	"gnsnode/internal/pairing/repository"
	"gnsnode/pkg/envelope"
	appErrors "gnsnode/pkg/errors"
	"gnsnode/pkg/logger"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type clock struct{ t time.Time }

func (c *clock) now() time.Time         { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestUsecase(t *testing.T) (*PairingUsecase, *clock) {
	t.Helper()
	c := &clock{t: baseTime}
	uc := NewPairingUsecase(repository.NewMemoryRepository(), logger.Nop(), *config.Default())
	uc.now = c.now
	return uc, c
}

func approval(t *testing.T, id *envelope.IdentityKeyPair, s *pairing.SessionDTO) pairing.ApproveCommand {
	t.Helper()
	msg, err := pairing.ApprovalSigningBytes(s.SessionID, s.Challenge, id.PublicHex)
	require.NoError(t, err)
	return pairing.ApproveCommand{
		SessionID: s.SessionID,
		PublicKey: id.PublicHex,
		Signature: envelope.SignDetached(id.PrivateKey, msg),
	}
}

func TestPairingUsecase_Flow(t *testing.T) {
	ctx := context.Background()
	id, err := envelope.GenerateIdentity()
	require.NoError(t, err)

	t.Run("happy path", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		s, err := uc.CreateSession(ctx)
		require.NoError(t, err)
		assert.Len(t, s.Challenge, 64)
		assert.Equal(t, baseTime.Add(5*time.Minute), s.ExpiresAt)

		st, err := uc.Status(ctx, s.SessionID)
		require.NoError(t, err)
		assert.Equal(t, "pending", st.Status)
		assert.Empty(t, st.Token)

		approved, err := uc.Approve(ctx, approval(t, id, s))
		require.NoError(t, err)
		assert.Equal(t, "approved", approved.Status)
		assert.Empty(t, approved.Token)

		first, err := uc.Status(ctx, s.SessionID)
		require.NoError(t, err)
		assert.Equal(t, "approved", first.Status)
		assert.Equal(t, id.PublicHex, first.PublicKey)
		require.NotEmpty(t, first.Token)

		second, err := uc.Status(ctx, s.SessionID)
		require.NoError(t, err)
		assert.Equal(t, "approved", second.Status)
		assert.Empty(t, second.Token)

		pk, err := uc.Authenticate(ctx, first.Token)
		require.NoError(t, err)
		assert.Equal(t, id.PublicHex, pk)
	})

	t.Run("sad path: challenge expired", func(t *testing.T) {
		uc, c := newTestUsecase(t)
		s, err := uc.CreateSession(ctx)
		require.NoError(t, err)
		c.advance(5 * time.Minute)

		st, err := uc.Status(ctx, s.SessionID)
		require.NoError(t, err)
		assert.Equal(t, "expired", st.Status)

		_, err = uc.Approve(ctx, approval(t, id, s))
		assert.ErrorIs(t, err, appErrors.ErrSessionExpired)
	})

	t.Run("sad path: approved twice", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		s, err := uc.CreateSession(ctx)
		require.NoError(t, err)
		_, err = uc.Approve(ctx, approval(t, id, s))
		require.NoError(t, err)

		_, err = uc.Approve(ctx, approval(t, id, s))
		assert.ErrorIs(t, err, appErrors.ErrSessionAlreadyClaimed)
	})

	t.Run("sad path: signature over another challenge", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		s, err := uc.CreateSession(ctx)
		require.NoError(t, err)
		forged := *s
		forged.Challenge = "00"
		cmd := approval(t, id, &forged)

		_, err = uc.Approve(ctx, cmd)
		assert.ErrorIs(t, err, appErrors.ErrInvalidSignature)
	})

	t.Run("sad path: unknown session", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		_, err := uc.Status(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, appErrors.ErrSessionNotFound)
		_, err = uc.Status(ctx, "5f0c6f1e-8a4f-4b8e-9d7a-2f1f1b2c3d4e")
		assert.ErrorIs(t, err, appErrors.ErrSessionNotFound)
	})
}

func TestPairingUsecase_ConcurrentApprove(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestUsecase(t)
	s, err := uc.CreateSession(ctx)
	require.NoError(t, err)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		id, err := envelope.GenerateIdentity()
		require.NoError(t, err)
		cmd := approval(t, id, s)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := uc.Approve(ctx, cmd); err == nil {
				wins.Add(1)
			} else {
				assert.ErrorIs(t, err, appErrors.ErrSessionAlreadyClaimed)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestPairingUsecase_Authenticate(t *testing.T) {
	ctx := context.Background()
	owner, err := envelope.GenerateIdentity()
	require.NoError(t, err)
	other, err := envelope.GenerateIdentity()
	require.NoError(t, err)

	paired := func(t *testing.T) (*PairingUsecase, *clock, string, string) {
		uc, c := newTestUsecase(t)
		s, err := uc.CreateSession(ctx)
		require.NoError(t, err)
		_, err = uc.Approve(ctx, approval(t, owner, s))
		require.NoError(t, err)
		st, err := uc.Status(ctx, s.SessionID)
		require.NoError(t, err)
		return uc, c, s.SessionID, st.Token
	}

	t.Run("sad path: missing and unknown token", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		_, err := uc.Authenticate(ctx, "")
		assert.ErrorIs(t, err, appErrors.ErrMissingCredentials)
		_, err = uc.Authenticate(ctx, "bogus")
		assert.ErrorIs(t, err, appErrors.ErrInvalidToken)
	})

	t.Run("sad path: token lapses", func(t *testing.T) {
		uc, c, _, token := paired(t)
		c.advance(24 * time.Hour)
		_, err := uc.Authenticate(ctx, token)
		assert.ErrorIs(t, err, appErrors.ErrTokenExpired)
	})

	t.Run("sad path: revoked by owner", func(t *testing.T) {
		uc, _, sid, token := paired(t)

		err := uc.Revoke(ctx, sid, other.PublicHex)
		assert.Equal(t, appErrors.CodePermissionDenied, appErrors.CodeOf(err))
		_, err = uc.Authenticate(ctx, token)
		require.NoError(t, err)

		require.NoError(t, uc.Revoke(ctx, sid, owner.PublicHex))
		_, err = uc.Authenticate(ctx, token)
		assert.ErrorIs(t, err, appErrors.ErrInvalidToken)

		st, err := uc.Status(ctx, sid)
		require.NoError(t, err)
		assert.Equal(t, "revoked", st.Status)
	})

	t.Run("happy path: sweep drops lapsed sessions", func(t *testing.T) {
		uc, c, sid, _ := paired(t)
		_, err := uc.CreateSession(ctx)
		require.NoError(t, err)

		c.advance(time.Hour)
		n, err := uc.SweepExpired(ctx, c.now())
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		c.advance(24 * time.Hour)
		n, err = uc.SweepExpired(ctx, c.now())
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		_, err = uc.Status(ctx, sid)
		assert.ErrorIs(t, err, appErrors.ErrSessionNotFound)
	})
}

func TestPairingUsecase_StorageFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockRepository(ctrl)
	uc := NewPairingUsecase(mockRepo, logger.Nop(), *config.Default())

	mockRepo.EXPECT().
		CreateSession(gomock.Any(), gomock.Any()).
		Return(errors.New("connection refused"))

	_, err := uc.CreateSession(context.Background())
	assert.Equal(t, appErrors.CodeInternal, appErrors.CodeOf(err))
}
