package usecase

import (
	"context"
	"testing"
	"time"

	"gnsnode/internal/identity"
	appErrors "gnsnode/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// origin builds items on one node; target applies them as a peer would.
func TestIdentityUsecase_ApplyReplicatedItems(t *testing.T) {
	ctx := context.Background()
	origin, _ := newTestUsecase(t)
	target, _ := newTestUsecase(t)
	a := newIdentity(t)

	rec, err := origin.PublishRecord(ctx, signedRecord(t, a, baseTime, 1))
	require.NoError(t, err)
	alias, err := origin.ClaimAlias(ctx, signedClaim(t, a, "alice", 150, 40))
	require.NoError(t, err)
	e0, err := origin.PublishEpoch(ctx, signedEpoch(t, a, 0, "m0", nil))
	require.NoError(t, err)
	e1, err := origin.PublishEpoch(ctx, signedEpoch(t, a, 1, "m1", &e0.Epoch.EpochHash))
	require.NoError(t, err)

	t.Run("first pass applies everything", func(t *testing.T) {
		out, err := target.ApplyRecord(ctx, *rec)
		require.NoError(t, err)
		assert.Equal(t, identity.Applied, out)

		out, err = target.ApplyAlias(ctx, *alias)
		require.NoError(t, err)
		assert.Equal(t, identity.Applied, out)

		for _, e := range []*identity.EpochDTO{e0, e1} {
			out, err = target.ApplyEpoch(ctx, *e)
			require.NoError(t, err)
			assert.Equal(t, identity.Applied, out)
		}
	})

	t.Run("replay skips everything", func(t *testing.T) {
		out, err := target.ApplyRecord(ctx, *rec)
		require.NoError(t, err)
		assert.Equal(t, identity.Skipped, out)

		out, err = target.ApplyAlias(ctx, *alias)
		require.NoError(t, err)
		assert.Equal(t, identity.Skipped, out)

		out, err = target.ApplyEpoch(ctx, *e1)
		require.NoError(t, err)
		assert.Equal(t, identity.Skipped, out)
	})

	t.Run("stored state matches origin", func(t *testing.T) {
		want, err := origin.ListEpochs(ctx, a.PublicHex)
		require.NoError(t, err)
		got, err := target.ListEpochs(ctx, a.PublicHex)
		require.NoError(t, err)
		require.Len(t, got, len(want))
		for i := range want {
			assert.Equal(t, want[i].Epoch, got[i].Epoch)
			assert.Equal(t, want[i].Signature, got[i].Signature)
		}

		gotAlias, err := target.GetAlias(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, a.PublicHex, gotAlias.Identity)
	})
}

func TestIdentityUsecase_ApplyRejections(t *testing.T) {
	ctx := context.Background()
	origin, _ := newTestUsecase(t)
	a := newIdentity(t)

	_, err := origin.PublishRecord(ctx, signedRecord(t, a, baseTime, 1))
	require.NoError(t, err)
	e0, err := origin.PublishEpoch(ctx, signedEpoch(t, a, 0, "m0", nil))
	require.NoError(t, err)
	e1, err := origin.PublishEpoch(ctx, signedEpoch(t, a, 1, "m1", &e0.Epoch.EpochHash))
	require.NoError(t, err)

	t.Run("epoch without predecessor fails", func(t *testing.T) {
		target, _ := newTestUsecase(t)
		_, err := target.ApplyEpoch(ctx, *e1)
		assert.ErrorIs(t, err, appErrors.ErrMissingPredecessor)
	})

	t.Run("stale record is skipped", func(t *testing.T) {
		target, _ := newTestUsecase(t)
		newer := signedRecord(t, a, baseTime.Add(time.Hour), 2)
		_, err := target.PublishRecord(ctx, newer)
		require.NoError(t, err)

		old := signedRecord(t, a, baseTime, 1)
		out, err := target.ApplyRecord(ctx, identity.RecordDTO{PkRoot: a.PublicHex, RecordJSON: old.RecordJSON, Signature: old.Signature})
		require.NoError(t, err)
		assert.Equal(t, identity.Skipped, out)

		got, err := target.GetRecord(ctx, a.PublicHex)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Version)
	})

	t.Run("forged alias fails", func(t *testing.T) {
		target, _ := newTestUsecase(t)
		item := identity.AliasDTO{
			Handle:    "alice",
			Identity:  a.PublicHex,
			Proof:     []byte(`{"breadcrumb_count":150,"trust_score":40}`),
			Signature: "00",
		}
		_, err := target.ApplyAlias(ctx, item)
		assert.ErrorIs(t, err, appErrors.ErrInvalidSignature)
	})
}
