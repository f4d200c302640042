package repository

import (
	"context"
	"database/sql"
	"time"

	models "gnsnode/internal/message/model"
	"gnsnode/pkg/logger"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

type MessageRepository struct {
	db     *bun.DB
	logger *logger.Logger
}

var (
	ErrNotFound  = errors.New("message: not found")
	ErrDuplicate = errors.New("message: duplicate id")
)

func NewMessageRepository(db *bun.DB, logger logger.Logger) *MessageRepository {
	return &MessageRepository{db: db, logger: &logger}
}

func (r *MessageRepository) CreateEnvelope(ctx context.Context, env *models.StoredEnvelope, deliveries []models.Delivery) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(env).Returning("*").Exec(ctx)
		if err != nil {
			var pgErr pgdriver.Error
			if errors.As(err, &pgErr) && pgErr.Field('C') == "23505" {
				return ErrDuplicate
			}
			return errors.Wrap(err, "messageRepo.CreateEnvelope.InsertEnvelope: ")
		}
		if len(deliveries) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&deliveries).Exec(ctx); err != nil {
			return errors.Wrap(err, "messageRepo.CreateEnvelope.InsertDeliveries: ")
		}
		return nil
	})
}

func (r *MessageRepository) GetEnvelope(ctx context.Context, id uuid.UUID) (*models.StoredEnvelope, error) {
	env := new(models.StoredEnvelope)
	err := r.db.NewSelect().Model(env).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "messageRepo.GetEnvelope.Scan: ")
	}
	return env, nil
}

func (r *MessageRepository) ListPending(ctx context.Context, pk string, since, now time.Time, limit int) ([]models.StoredEnvelope, error) {
	var envs []models.StoredEnvelope
	err := r.db.NewSelect().
		Model(&envs).
		Join("JOIN envelope_deliveries AS dl ON dl.envelope_id = env.id").
		Where("dl.recipient_pk = ?", pk).
		Where("dl.status = ?", models.StatusPending).
		Where("dl.received_at > ?", since).
		Where("(dl.expires_at IS NULL OR dl.expires_at > ?)", now).
		OrderExpr("dl.received_at ASC, env.id ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "messageRepo.ListPending.Scan: ")
	}
	return envs, nil
}

func (r *MessageRepository) MarkDeliveries(ctx context.Context, pk string, ids []uuid.UUID, status string, at time.Time) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q := r.db.NewUpdate().
		Model((*models.Delivery)(nil)).
		Set("status = ?", status).
		Where("recipient_pk = ?", pk).
		Where("envelope_id IN (?)", bun.In(ids))

	switch status {
	case models.StatusDelivered:
		q = q.Set("delivered_at = ?", at).Where("status = ?", models.StatusPending)
	case models.StatusRead:
		q = q.Set("read_at = ?", at).
			Set("delivered_at = COALESCE(delivered_at, ?)", at).
			Where("status <> ?", models.StatusRead)
	default:
		return 0, errors.Errorf("messageRepo.MarkDeliveries: unknown status %q", status)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "messageRepo.MarkDeliveries.Update: ")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r *MessageRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	var n int64
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*models.Delivery)(nil)).
			Where("expires_at <= ?", now).
			Exec(ctx)
		if err != nil {
			return errors.Wrap(err, "messageRepo.DeleteExpired.Deliveries: ")
		}
		res, err := tx.NewDelete().
			Model((*models.StoredEnvelope)(nil)).
			Where("expires_at <= ?", now).
			Exec(ctx)
		if err != nil {
			return errors.Wrap(err, "messageRepo.DeleteExpired.Envelopes: ")
		}
		n, _ = res.RowsAffected()
		return nil
	})
	return int(n), err
}
