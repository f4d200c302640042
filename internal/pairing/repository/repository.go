package repository

import (
	"context"
	"database/sql"
	"time"

	models "gnsnode/internal/pairing/model"
	"gnsnode/pkg/logger"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type PairingRepository struct {
	db     *bun.DB
	logger *logger.Logger
}

var (
	ErrNotFound = errors.New("pairing: not found")
	ErrConflict = errors.New("pairing: session is not pending")
)

func NewPairingRepository(db *bun.DB, logger logger.Logger) *PairingRepository {
	return &PairingRepository{db: db, logger: &logger}
}

func (r *PairingRepository) CreateSession(ctx context.Context, s *models.Session) error {
	if _, err := r.db.NewInsert().Model(s).Returning("*").Exec(ctx); err != nil {
		return errors.Wrap(err, "pairingRepo.CreateSession.Insert: ")
	}
	return nil
}

func (r *PairingRepository) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	s := new(models.Session)
	if err := r.db.NewSelect().Model(s).Where("id = ?", id).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "pairingRepo.GetSession.Scan: ")
	}
	return s, nil
}

func (r *PairingRepository) GetSessionByTokenHash(ctx context.Context, hash []byte) (*models.Session, error) {
	s := new(models.Session)
	if err := r.db.NewSelect().Model(s).Where("token_hash = ?", hash).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "pairingRepo.GetSessionByTokenHash.Scan: ")
	}
	return s, nil
}

func (r *PairingRepository) ApproveSession(ctx context.Context, s *models.Session, now time.Time) error {
	res, err := r.db.NewUpdate().
		Model(s).
		Column("status", "pk_root", "token_hash", "pending_token", "approved_at", "session_expires_at").
		Where("id = ?", s.ID).
		Where("status = ?", models.StatusPending).
		Where("challenge_expires_at > ?", now).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "pairingRepo.ApproveSession.Update: ")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	return nil
}

func (r *PairingRepository) TakePendingToken(ctx context.Context, id uuid.UUID) (string, error) {
	var token string
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		s := new(models.Session)
		err := tx.NewSelect().
			Model(s).
			Where("id = ?", id).
			Where("pending_token IS NOT NULL").
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return errors.Wrap(err, "pairingRepo.TakePendingToken.Select: ")
		}
		_, err = tx.NewUpdate().
			Model((*models.Session)(nil)).
			Set("pending_token = NULL").
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return errors.Wrap(err, "pairingRepo.TakePendingToken.Clear: ")
		}
		token = *s.PendingToken
		return nil
	})
	return token, err
}

func (r *PairingRepository) RevokeSession(ctx context.Context, id uuid.UUID, pk string, at time.Time) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*models.Session)(nil)).
		Set("status = ?", models.StatusRevoked).
		Set("revoked_at = ?", at).
		Set("pending_token = NULL").
		Where("id = ?", id).
		Where("pk_root = ?", pk).
		Where("status <> ?", models.StatusRevoked).
		Exec(ctx)
	if err != nil {
		return false, errors.Wrap(err, "pairingRepo.RevokeSession.Update: ")
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *PairingRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.NewDelete().
		Model((*models.Session)(nil)).
		WhereGroup(" AND ", func(q *bun.DeleteQuery) *bun.DeleteQuery {
			return q.
				WhereOr("status = ? AND challenge_expires_at <= ?", models.StatusPending, now).
				WhereOr("session_expires_at <= ?", now).
				WhereOr("status = ?", models.StatusRevoked)
		}).
		Exec(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "pairingRepo.DeleteExpired.Delete: ")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
