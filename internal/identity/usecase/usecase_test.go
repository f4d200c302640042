package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gnsnode/config"
	"gnsnode/internal/identity"
	"gnsnode/internal/identity/mocks"
	appErrors "gnsnode/pkg/errors"
	"gnsnode/pkg/logger"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityUsecase_PublishRecord(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path - create then update", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		rep := &recordingReplicator{}
		uc.SetReplicator(rep)
		id := newIdentity(t)

		dto, err := uc.PublishRecord(ctx, signedRecord(t, id, baseTime, 1))
		require.NoError(t, err)
		assert.Equal(t, id.PublicHex, dto.PkRoot)
		assert.Equal(t, 180, dto.BreadcrumbCount)

		dto, err = uc.PublishRecord(ctx, signedRecord(t, id, baseTime.Add(time.Minute), 2))
		require.NoError(t, err)
		assert.Equal(t, 2, dto.Version)
		assert.Equal(t, 2, rep.items[identity.EntityRecords])
	})

	t.Run("sad path - stale updated_at leaves stored record unchanged", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		id := newIdentity(t)
		_, err := uc.PublishRecord(ctx, signedRecord(t, id, baseTime, 3))
		require.NoError(t, err)

		for _, ts := range []time.Time{baseTime, baseTime.Add(-time.Second)} {
			_, err = uc.PublishRecord(ctx, signedRecord(t, id, ts, 9))
			assert.ErrorIs(t, err, appErrors.ErrStaleRecord)
			assert.Equal(t, appErrors.CodeConflict, appErrors.CodeOf(err))
		}

		got, err := uc.GetRecord(ctx, id.PublicHex)
		require.NoError(t, err)
		assert.Equal(t, 3, got.Version)
	})

	t.Run("sad path - signature by another key", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		id, other := newIdentity(t), newIdentity(t)
		cmd := signedRecord(t, id, baseTime, 1)
		cmd.Signature = signedRecord(t, other, baseTime, 1).Signature

		_, err := uc.PublishRecord(ctx, cmd)
		assert.ErrorIs(t, err, appErrors.ErrInvalidSignature)
	})

	t.Run("sad path - body pk_root differs from path key", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		id, other := newIdentity(t), newIdentity(t)
		cmd := signedRecord(t, id, baseTime, 1)
		cmd.PublicKey = other.PublicHex

		_, err := uc.PublishRecord(ctx, cmd)
		assert.ErrorIs(t, err, appErrors.ErrRecordMismatch)
	})

	t.Run("sad path - record not found", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		_, err := uc.GetRecord(ctx, newIdentity(t).PublicHex)
		assert.ErrorIs(t, err, appErrors.ErrRecordNotFound)
	})
}

func TestIdentityUsecase_PublishRecord_StorageFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockRepository(ctrl)
	uc := NewIdentityUsecase(mockRepo, logger.Nop(), *config.Default())
	id := newIdentity(t)

	mockRepo.EXPECT().
		GetRecord(gomock.Any(), id.PublicHex).
		Return(nil, errors.New("connection reset"))

	_, err := uc.PublishRecord(context.Background(), signedRecord(t, id, baseTime, 1))
	assert.Equal(t, appErrors.CodeInternal, appErrors.CodeOf(err))
}

func TestIdentityUsecase_ClaimAlias(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path - claim then conflicting claim", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		a, b := newIdentity(t), newIdentity(t)
		publishRecord(t, uc, a)
		publishRecord(t, uc, b)

		dto, err := uc.ClaimAlias(ctx, signedClaim(t, a, "alice", 150, 40))
		require.NoError(t, err)
		assert.Equal(t, "alice", dto.Handle)
		assert.Equal(t, a.PublicHex, dto.Identity)

		_, err = uc.ClaimAlias(ctx, signedClaim(t, b, "alice", 150, 40))
		assert.ErrorIs(t, err, appErrors.ErrHandleTaken)

		got, err := uc.GetAlias(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, a.PublicHex, got.Identity)
	})

	t.Run("sad path - insufficient breadcrumbs names the deficit", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		a := newIdentity(t)
		publishRecord(t, uc, a)

		_, err := uc.ClaimAlias(ctx, signedClaim(t, a, "alice", 99, 40))
		require.Error(t, err)
		var appErr *appErrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, appErrors.CodePermissionDenied, appErr.Code)
		assert.Equal(t, "breadcrumb_count", appErr.Details["field"])
		assert.Equal(t, 100, appErr.Details["required"])
		assert.Equal(t, 99, appErr.Details["current"])
	})

	t.Run("sad path - insufficient trust score", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		a := newIdentity(t)
		publishRecord(t, uc, a)

		_, err := uc.ClaimAlias(ctx, signedClaim(t, a, "alice", 500, 19.9))
		var appErr *appErrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "trust_score", appErr.Details["field"])
	})

	t.Run("sad path - no published record", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		_, err := uc.ClaimAlias(ctx, signedClaim(t, newIdentity(t), "alice", 150, 40))
		assert.ErrorIs(t, err, appErrors.ErrIdentityNotFound)
		assert.Equal(t, appErrors.CodeNotFound, appErrors.CodeOf(err))
	})

	t.Run("sad path - tampered proof", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		a := newIdentity(t)
		publishRecord(t, uc, a)
		cmd := signedClaim(t, a, "alice", 150, 40)
		cmd.Proof = []byte(`{"breadcrumb_count":1500,"trust_score":40}`)

		_, err := uc.ClaimAlias(ctx, cmd)
		assert.ErrorIs(t, err, appErrors.ErrInvalidSignature)
	})

	t.Run("sad path - invalid handle", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		for _, h := range []string{"ab", "this_handle_is_way_too_long", "bad-dash", ""} {
			_, err := uc.ClaimAlias(ctx, signedClaim(t, newIdentity(t), h, 150, 40))
			assert.ErrorIs(t, err, appErrors.ErrInvalidHandle, h)
		}
	})

	t.Run("happy path - welcome grant failure never fails the claim", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		tasks := &syncTasks{}
		granter := &fakeGranter{err: errors.New("settlement down")}
		uc.WithWelcomeGrant(tasks, granter)
		a := newIdentity(t)
		publishRecord(t, uc, a)

		_, err := uc.ClaimAlias(ctx, signedClaim(t, a, "alice", 150, 40))
		require.NoError(t, err)
		assert.Equal(t, []string{"welcome_grant"}, tasks.names)
		assert.Equal(t, []string{"alice:" + a.PublicHex}, granter.calls)
	})
}

func TestIdentityUsecase_ClaimAlias_Concurrent(t *testing.T) {
	uc, _ := newTestUsecase(t)
	ctx := context.Background()

	ids := make([]*identityFixture, 8)
	for i := range ids {
		id := newIdentity(t)
		publishRecord(t, uc, id)
		ids[i] = &identityFixture{cmd: signedClaim(t, id, "alice", 150, 40)}
	}

	var wg sync.WaitGroup
	for _, f := range ids {
		wg.Add(1)
		go func(f *identityFixture) {
			defer wg.Done()
			_, f.err = uc.ClaimAlias(ctx, f.cmd)
		}(f)
	}
	wg.Wait()

	wins := 0
	for _, f := range ids {
		if f.err == nil {
			wins++
			continue
		}
		assert.Equal(t, appErrors.CodeConflict, appErrors.CodeOf(f.err))
	}
	assert.Equal(t, 1, wins)
}

type identityFixture struct {
	cmd identity.ClaimAliasCommand
	err error
}

func TestIdentityUsecase_Reservations(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path - reserver converts hold into alias", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		a := newIdentity(t)
		publishRecord(t, uc, a)

		res, err := uc.ReserveHandle(ctx, signedReservation(t, a, "alice"))
		require.NoError(t, err)
		assert.Equal(t, baseTime.Add(30*24*time.Hour), res.ExpiresAt)

		avail, err := uc.CheckHandle(ctx, "@Alice")
		require.NoError(t, err)
		assert.False(t, avail.Available)
		assert.True(t, avail.Reserved)
		assert.Equal(t, a.PublicHex, avail.ReservedBy)

		_, err = uc.ClaimAlias(ctx, signedClaim(t, a, "alice", 150, 40))
		require.NoError(t, err)

		avail, err = uc.CheckHandle(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, avail.Claimed)
		assert.False(t, avail.Reserved)
	})

	t.Run("sad path - reserved by another identity", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		a, b := newIdentity(t), newIdentity(t)
		publishRecord(t, uc, b)
		_, err := uc.ReserveHandle(ctx, signedReservation(t, a, "alice"))
		require.NoError(t, err)

		_, err = uc.ReserveHandle(ctx, signedReservation(t, b, "alice"))
		assert.ErrorIs(t, err, appErrors.ErrHandleReserved)

		_, err = uc.ClaimAlias(ctx, signedClaim(t, b, "alice", 150, 40))
		assert.ErrorIs(t, err, appErrors.ErrHandleReserved)
	})

	t.Run("happy path - lapsed hold no longer blocks", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		a, b := newIdentity(t), newIdentity(t)
		publishRecord(t, uc, b)
		_, err := uc.ReserveHandle(ctx, signedReservation(t, a, "alice"))
		require.NoError(t, err)

		uc.now = func() time.Time { return baseTime.Add(31 * 24 * time.Hour) }
		avail, err := uc.CheckHandle(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, avail.Available)

		_, err = uc.ClaimAlias(ctx, signedClaim(t, b, "alice", 150, 40))
		require.NoError(t, err)
	})

	t.Run("sad path - unsigned reservation", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		cmd := signedReservation(t, newIdentity(t), "alice")
		cmd.Handle = "alicia"
		_, err := uc.ReserveHandle(ctx, cmd)
		assert.ErrorIs(t, err, appErrors.ErrInvalidSignature)
	})

	t.Run("sad path - handle already claimed", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		a, b := newIdentity(t), newIdentity(t)
		publishRecord(t, uc, a)
		_, err := uc.ClaimAlias(ctx, signedClaim(t, a, "alice", 150, 40))
		require.NoError(t, err)

		_, err = uc.ReserveHandle(ctx, signedReservation(t, b, "alice"))
		assert.ErrorIs(t, err, appErrors.ErrHandleTaken)
	})

	t.Run("sweep removes lapsed holds", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		_, err := uc.ReserveHandle(ctx, signedReservation(t, newIdentity(t), "alice"))
		require.NoError(t, err)

		n, err := uc.SweepExpired(ctx, baseTime.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		n, err = uc.SweepExpired(ctx, baseTime.Add(31*24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestIdentityUsecase_PublishEpoch(t *testing.T) {
	ctx := context.Background()

	t.Run("sad path - wrong prev hash is rejected and epoch 1 stays absent", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		a := newIdentity(t)
		publishRecord(t, uc, a)

		e0, err := uc.PublishEpoch(ctx, signedEpoch(t, a, 0, "m0", nil))
		require.NoError(t, err)
		assert.Len(t, e0.Epoch.EpochHash, 64)

		_, err = uc.PublishEpoch(ctx, signedEpoch(t, a, 1, "m1", strPtr("wrong")))
		assert.ErrorIs(t, err, appErrors.ErrBrokenChain)
		assert.Equal(t, 400, appErrors.HTTPStatus(err))

		_, err = uc.GetEpoch(ctx, a.PublicHex, 1)
		assert.ErrorIs(t, err, appErrors.ErrEpochNotFound)
	})

	t.Run("happy path - chain of five links", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		a := newIdentity(t)
		publishRecord(t, uc, a)

		var prev *string
		for i := 0; i < 5; i++ {
			dto, err := uc.PublishEpoch(ctx, signedEpoch(t, a, i, "m", prev))
			require.NoError(t, err)
			h := dto.Epoch.EpochHash
			prev = &h
		}

		list, err := uc.ListEpochs(ctx, a.PublicHex)
		require.NoError(t, err)
		require.Len(t, list, 5)
		for i, e := range list {
			assert.Equal(t, i, e.Epoch.EpochIndex)
			if i == 0 {
				assert.Nil(t, e.Epoch.PrevEpochHash)
				continue
			}
			require.NotNil(t, e.Epoch.PrevEpochHash)
			assert.Equal(t, list[i-1].Epoch.EpochHash, *e.Epoch.PrevEpochHash)
		}
	})

	t.Run("sad path - republishing an index conflicts and storage is unchanged", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		a := newIdentity(t)
		publishRecord(t, uc, a)
		first, err := uc.PublishEpoch(ctx, signedEpoch(t, a, 0, "m0", nil))
		require.NoError(t, err)

		_, err = uc.PublishEpoch(ctx, signedEpoch(t, a, 0, "different", nil))
		assert.ErrorIs(t, err, appErrors.ErrEpochExists)

		got, err := uc.GetEpoch(ctx, a.PublicHex, 0)
		require.NoError(t, err)
		assert.Equal(t, first.Epoch, got.Epoch)
	})

	t.Run("sad path - gap in indices", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		a := newIdentity(t)
		publishRecord(t, uc, a)
		_, err := uc.PublishEpoch(ctx, signedEpoch(t, a, 2, "m2", strPtr("x")))
		assert.ErrorIs(t, err, appErrors.ErrMissingPredecessor)
	})

	t.Run("sad path - client epoch_hash disagrees", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		a := newIdentity(t)
		publishRecord(t, uc, a)
		cmd := signedEpoch(t, a, 0, "m0", nil)
		cmd.Header.EpochHash = "00"
		_, err := uc.PublishEpoch(ctx, cmd)
		assert.ErrorIs(t, err, appErrors.ErrEpochHashMismatch)
	})

	t.Run("sad path - index mismatch and bad signature", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		a := newIdentity(t)
		publishRecord(t, uc, a)

		cmd := signedEpoch(t, a, 0, "m0", nil)
		cmd.Index = 1
		_, err := uc.PublishEpoch(ctx, cmd)
		assert.Equal(t, appErrors.CodeInvalidArgument, appErrors.CodeOf(err))

		cmd = signedEpoch(t, a, 0, "m0", nil)
		cmd.Header.BlockCount++
		_, err = uc.PublishEpoch(ctx, cmd)
		assert.ErrorIs(t, err, appErrors.ErrInvalidSignature)
	})

	t.Run("sad path - no published record", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		_, err := uc.PublishEpoch(ctx, signedEpoch(t, newIdentity(t), 0, "m0", nil))
		assert.ErrorIs(t, err, appErrors.ErrIdentityNotFound)
	})

	t.Run("concurrent publish of the same next index", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		a := newIdentity(t)
		publishRecord(t, uc, a)

		cmds := []identity.PublishEpochCommand{
			signedEpoch(t, a, 0, "left", nil),
			signedEpoch(t, a, 0, "right", nil),
		}
		errs := make([]error, len(cmds))
		var wg sync.WaitGroup
		for i := range cmds {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = uc.PublishEpoch(ctx, cmds[i])
			}(i)
		}
		wg.Wait()

		failed := 0
		for _, err := range errs {
			if err != nil {
				failed++
				assert.ErrorIs(t, err, appErrors.ErrEpochExists)
			}
		}
		assert.Equal(t, 1, failed)
	})
}
