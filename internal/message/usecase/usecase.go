package usecase

import (
	"context"
	"encoding/json"
	"time"

	"gnsnode/config"
	"gnsnode/internal/message"
	models "gnsnode/internal/message/model"
	"gnsnode/internal/message/repository"
	"gnsnode/pkg/envelope"
	"gnsnode/pkg/errors"
	"gnsnode/pkg/logger"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
)

type MessageUsecase struct {
	repo     message.Repository
	notifier message.Notifier
	logger   logger.Logger
	config   config.Config
	now      func() time.Time
}

func NewMessageUsecase(repo message.Repository, notifier message.Notifier, logger logger.Logger, config config.Config) *MessageUsecase {
	return &MessageUsecase{
		repo:     repo,
		notifier: notifier,
		logger:   logger.With("component", "message"),
		config:   config,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (uc *MessageUsecase) Send(ctx context.Context, sender string, env *envelope.Envelope) (*message.SendResultDTO, error) {
	if env == nil {
		return nil, errors.ErrMalformedEnvelope
	}
	id, err := uuid.Parse(env.ID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeMalformedEnvelope, "envelope id must be a UUID", err)
	}
	recipients := env.Recipients()
	if len(recipients) > message.MaxRecipients {
		return nil, errors.InvalidArgDetails("too many recipients", map[string]any{
			"max": message.MaxRecipients, "current": len(recipients),
		})
	}
	if err := envelope.Check(env); err != nil {
		return nil, err
	}
	if env.FromPublicKey != sender {
		return nil, errors.ErrSenderMismatch
	}

	now := uc.now()
	var expiresAt *time.Time
	if env.ExpiresAt != nil {
		exp := time.UnixMilli(*env.ExpiresAt).UTC()
		if !exp.After(now) {
			return nil, errors.ErrEnvelopeExpired
		}
		expiresAt = &exp
	}

	body, err := json.Marshal(env)
	if err != nil {
		return nil, errors.Wrap(errors.CodeMalformedEnvelope, "envelope could not be encoded", err)
	}
	stored := &models.StoredEnvelope{
		ID:            id,
		FromPublicKey: env.FromPublicKey,
		ThreadID:      env.ThreadID,
		PayloadType:   env.PayloadType,
		Body:          string(body),
		Timestamp:     env.Timestamp,
		ReceivedAt:    now,
		ExpiresAt:     expiresAt,
	}
	deliveries := make([]models.Delivery, 0, len(recipients))
	for _, pk := range recipients {
		deliveries = append(deliveries, models.Delivery{
			EnvelopeID:  id,
			RecipientPK: pk,
			Status:      models.StatusPending,
			ReceivedAt:  now,
			ExpiresAt:   expiresAt,
		})
	}

	if err := uc.repo.CreateEnvelope(ctx, stored, deliveries); err != nil {
		if pkgerrors.Is(err, repository.ErrDuplicate) {
			return nil, errors.ErrEnvelopeExists
		}
		uc.logger.Error("database error storing envelope", "id", env.ID, "err", err)
		return nil, errors.ErrStorageFailed(err)
	}

	pushed := 0
	if uc.notifier != nil {
		pushed = uc.notifier.PushEnvelope(recipients, env)
	}
	uc.logger.Debug("envelope stored", "id", env.ID, "from", env.FromPublicKey, "recipients", len(recipients), "pushed", pushed)

	return &message.SendResultDTO{
		ID:         env.ID,
		Recipients: len(recipients),
		Pushed:     pushed,
		ReceivedAt: now,
	}, nil
}

func (uc *MessageUsecase) Pull(ctx context.Context, pk string, q message.PullQuery) (*message.PullResultDTO, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = message.DefaultPullSize
	}
	if limit > message.MaxPullSize {
		limit = message.MaxPullSize
	}

	// one extra row tells us whether another page exists
	rows, err := uc.repo.ListPending(ctx, pk, q.Since, uc.now(), limit+1)
	if err != nil {
		uc.logger.Error("database error listing inbox", "pk", pk, "err", err)
		return nil, errors.ErrStorageFailed(err)
	}
	out := &message.PullResultDTO{Envelopes: make([]*envelope.Envelope, 0, len(rows)), NextSince: q.Since}
	if len(rows) > limit {
		rows = rows[:limit]
		out.HasMore = true
	}
	for i := range rows {
		env, err := decodeStored(&rows[i])
		if err != nil {
			uc.logger.Error("stored envelope is unreadable", "id", rows[i].ID, "err", err)
			continue
		}
		out.Envelopes = append(out.Envelopes, env)
		out.NextSince = rows[i].ReceivedAt
	}
	return out, nil
}

func (uc *MessageUsecase) Ack(ctx context.Context, pk string, cmd message.AckCommand) (int, error) {
	status := cmd.Status
	if status == "" {
		status = models.StatusDelivered
	}
	if status != models.StatusDelivered && status != models.StatusRead {
		return 0, errors.InvalidArg("status must be delivered or read")
	}
	if len(cmd.IDs) > message.MaxPullSize {
		return 0, errors.InvalidArg("too many ids in one ack")
	}
	ids := make([]uuid.UUID, 0, len(cmd.IDs))
	for _, s := range cmd.IDs {
		id, err := uuid.Parse(s)
		if err != nil {
			continue // cannot match any delivery
		}
		ids = append(ids, id)
	}
	n, err := uc.repo.MarkDeliveries(ctx, pk, ids, status, uc.now())
	if err != nil {
		uc.logger.Error("database error acking envelopes", "pk", pk, "err", err)
		return 0, errors.ErrStorageFailed(err)
	}
	return n, nil
}

func (uc *MessageUsecase) Get(ctx context.Context, pk, id string) (*envelope.Envelope, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.ErrEnvelopeNotFound
	}
	stored, err := uc.repo.GetEnvelope(ctx, uid)
	if err != nil {
		if pkgerrors.Is(err, repository.ErrNotFound) {
			return nil, errors.ErrEnvelopeNotFound
		}
		uc.logger.Error("database error loading envelope", "id", id, "err", err)
		return nil, errors.ErrStorageFailed(err)
	}
	if stored.ExpiresAt != nil && !stored.ExpiresAt.After(uc.now()) {
		return nil, errors.ErrEnvelopeNotFound
	}
	env, err := decodeStored(stored)
	if err != nil {
		uc.logger.Error("stored envelope is unreadable", "id", id, "err", err)
		return nil, errors.Internal("stored envelope is unreadable")
	}
	if !isParticipant(env, pk) {
		// same answer as a missing id so ids cannot be probed
		return nil, errors.ErrEnvelopeNotFound
	}
	return env, nil
}

func (uc *MessageUsecase) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	n, err := uc.repo.DeleteExpired(ctx, now)
	if err != nil {
		uc.logger.Error("database error sweeping envelopes", "err", err)
		return 0, errors.ErrStorageFailed(err)
	}
	return n, nil
}

func decodeStored(s *models.StoredEnvelope) (*envelope.Envelope, error) {
	env := new(envelope.Envelope)
	if err := json.Unmarshal([]byte(s.Body), env); err != nil {
		return nil, err
	}
	return env, nil
}

func isParticipant(env *envelope.Envelope, pk string) bool {
	if env.FromPublicKey == pk {
		return true
	}
	for _, r := range env.Recipients() {
		if r == pk {
			return true
		}
	}
	return false
}
