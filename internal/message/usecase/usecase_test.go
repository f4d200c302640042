package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gnsnode/config"
	"gnsnode/internal/message"
	"gnsnode/internal/message/mocks"
	models "gnsnode/internal/message/model"
	"gnsnode/internal/message/repository"
	"gnsnode/pkg/envelope"
	appErrors "gnsnode/pkg/errors"
	"gnsnode/pkg/logger"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeNotifier struct {
	mu     sync.Mutex
	online map[string]bool
	pushed []string
}

func (f *fakeNotifier) PushEnvelope(recipients []string, env *envelope.Envelope) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, pk := range recipients {
		if f.online[pk] {
			f.pushed = append(f.pushed, pk)
			n++
		}
	}
	return n
}

func newTestUsecase(t *testing.T, notifier message.Notifier) *MessageUsecase {
	t.Helper()
	uc := NewMessageUsecase(repository.NewMemoryRepository(), notifier, logger.Nop(), *config.Default())
	uc.now = func() time.Time { return now }
	return uc
}

func keys(t *testing.T) *envelope.IdentityKeyPair {
	t.Helper()
	id, err := envelope.GenerateIdentity()
	require.NoError(t, err)
	return id
}

func signedEnvelope(t *testing.T, from *envelope.IdentityKeyPair, to ...string) *envelope.Envelope {
	t.Helper()
	enc, err := envelope.GenerateEncryptionKey()
	require.NoError(t, err)
	sealed, err := envelope.EncryptFor([]byte("hi"), enc.PublicKey)
	require.NoError(t, err)
	e := &envelope.Envelope{
		ID:            uuid.NewString(),
		FromPublicKey: from.PublicHex,
		ToPublicKeys:  to,
		PayloadType:   "gns/text.plain",
		Timestamp:     now.UnixMilli(),
	}
	e.SetPayload(sealed)
	require.NoError(t, envelope.SignInPlace(e, from.PrivateKey))
	return e
}

func TestMessageUsecase_Send(t *testing.T) {
	ctx := context.Background()
	a, b, c := keys(t), keys(t), keys(t)

	t.Run("happy path - stored, pushed to online recipients only", func(t *testing.T) {
		n := &fakeNotifier{online: map[string]bool{b.PublicHex: true}}
		uc := newTestUsecase(t, n)
		env := signedEnvelope(t, a, b.PublicHex, c.PublicHex)

		res, err := uc.Send(ctx, a.PublicHex, env)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Recipients)
		assert.Equal(t, 1, res.Pushed)

		for _, pk := range []string{b.PublicHex, c.PublicHex} {
			out, err := uc.Pull(ctx, pk, message.PullQuery{})
			require.NoError(t, err)
			require.Len(t, out.Envelopes, 1)
			assert.Equal(t, env.ID, out.Envelopes[0].ID)
			assert.NoError(t, envelope.Check(out.Envelopes[0]))
		}
	})

	t.Run("sad path - duplicate id", func(t *testing.T) {
		uc := newTestUsecase(t, nil)
		env := signedEnvelope(t, a, b.PublicHex)
		_, err := uc.Send(ctx, a.PublicHex, env)
		require.NoError(t, err)
		_, err = uc.Send(ctx, a.PublicHex, env)
		assert.ErrorIs(t, err, appErrors.ErrEnvelopeExists)
	})

	t.Run("sad path - sender is not the authenticated key", func(t *testing.T) {
		uc := newTestUsecase(t, nil)
		_, err := uc.Send(ctx, b.PublicHex, signedEnvelope(t, a, b.PublicHex))
		assert.ErrorIs(t, err, appErrors.ErrSenderMismatch)
	})

	t.Run("sad path - tampered envelope", func(t *testing.T) {
		uc := newTestUsecase(t, nil)
		env := signedEnvelope(t, a, b.PublicHex)
		env.PayloadType = "gns/other"
		_, err := uc.Send(ctx, a.PublicHex, env)
		assert.ErrorIs(t, err, appErrors.ErrInvalidSignature)
	})

	t.Run("sad path - non uuid id", func(t *testing.T) {
		uc := newTestUsecase(t, nil)
		env := signedEnvelope(t, a, b.PublicHex)
		env.ID = "not-a-uuid"
		require.NoError(t, envelope.SignInPlace(env, a.PrivateKey))
		_, err := uc.Send(ctx, a.PublicHex, env)
		assert.Equal(t, appErrors.CodeMalformedEnvelope, appErrors.CodeOf(err))
	})

	t.Run("sad path - already expired", func(t *testing.T) {
		uc := newTestUsecase(t, nil)
		env := signedEnvelope(t, a, b.PublicHex)
		past := now.Add(-time.Minute).UnixMilli()
		env.ExpiresAt = &past
		require.NoError(t, envelope.SignInPlace(env, a.PrivateKey))
		_, err := uc.Send(ctx, a.PublicHex, env)
		assert.ErrorIs(t, err, appErrors.ErrEnvelopeExpired)
	})

	t.Run("sad path - too many recipients", func(t *testing.T) {
		uc := newTestUsecase(t, nil)
		to := make([]string, 0, message.MaxRecipients+1)
		for i := 0; i <= message.MaxRecipients; i++ {
			to = append(to, keys(t).PublicHex)
		}
		_, err := uc.Send(ctx, a.PublicHex, signedEnvelope(t, a, to...))
		assert.ErrorIs(t, err, appErrors.ErrTooManyRecipients)
	})
}

func TestMessageUsecase_PullAck(t *testing.T) {
	ctx := context.Background()
	a, b := keys(t), keys(t)
	uc := newTestUsecase(t, nil)

	ids := make([]string, 3)
	for i := range ids {
		uc.now = func() time.Time { return now.Add(time.Duration(i) * time.Second) }
		env := signedEnvelope(t, a, b.PublicHex)
		_, err := uc.Send(ctx, a.PublicHex, env)
		require.NoError(t, err)
		ids[i] = env.ID
	}
	uc.now = func() time.Time { return now.Add(time.Minute) }

	page, err := uc.Pull(ctx, b.PublicHex, message.PullQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Envelopes, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, ids[0], page.Envelopes[0].ID)

	rest, err := uc.Pull(ctx, b.PublicHex, message.PullQuery{Since: page.NextSince})
	require.NoError(t, err)
	require.Len(t, rest.Envelopes, 1)
	assert.Equal(t, ids[2], rest.Envelopes[0].ID)
	assert.False(t, rest.HasMore)

	n, err := uc.Ack(ctx, b.PublicHex, message.AckCommand{IDs: []string{ids[0], ids[1], uuid.NewString(), "junk"}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = uc.Ack(ctx, b.PublicHex, message.AckCommand{IDs: []string{ids[0]}, Status: models.StatusDelivered})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = uc.Ack(ctx, b.PublicHex, message.AckCommand{IDs: []string{ids[0]}, Status: models.StatusRead})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	left, err := uc.Pull(ctx, b.PublicHex, message.PullQuery{})
	require.NoError(t, err)
	require.Len(t, left.Envelopes, 1)
	assert.Equal(t, ids[2], left.Envelopes[0].ID)

	_, err = uc.Ack(ctx, b.PublicHex, message.AckCommand{IDs: ids, Status: "burned"})
	assert.Equal(t, appErrors.CodeInvalidArgument, appErrors.CodeOf(err))
}

func TestMessageUsecase_GetAndExpiry(t *testing.T) {
	ctx := context.Background()
	a, b, stranger := keys(t), keys(t), keys(t)
	uc := newTestUsecase(t, nil)

	env := signedEnvelope(t, a, b.PublicHex)
	exp := now.Add(time.Hour).UnixMilli()
	env.ExpiresAt = &exp
	require.NoError(t, envelope.SignInPlace(env, a.PrivateKey))
	_, err := uc.Send(ctx, a.PublicHex, env)
	require.NoError(t, err)

	for _, pk := range []string{a.PublicHex, b.PublicHex} {
		got, err := uc.Get(ctx, pk, env.ID)
		require.NoError(t, err)
		assert.Equal(t, env.Signature, got.Signature)
	}

	_, err = uc.Get(ctx, stranger.PublicHex, env.ID)
	assert.ErrorIs(t, err, appErrors.ErrEnvelopeNotFound)

	uc.now = func() time.Time { return now.Add(2 * time.Hour) }
	out, err := uc.Pull(ctx, b.PublicHex, message.PullQuery{})
	require.NoError(t, err)
	assert.Empty(t, out.Envelopes)

	n, err := uc.SweepExpired(ctx, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMessageUsecase_StorageFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockRepository(ctrl)
	uc := NewMessageUsecase(mockRepo, nil, logger.Nop(), *config.Default())
	a, b := keys(t), keys(t)

	mockRepo.EXPECT().
		CreateEnvelope(gomock.Any(), gomock.Any(), gomock.Len(1)).
		Return(errors.New("connection refused"))

	_, err := uc.Send(context.Background(), a.PublicHex, signedEnvelope(t, a, b.PublicHex))
	assert.Equal(t, appErrors.CodeInternal, appErrors.CodeOf(err))
}
