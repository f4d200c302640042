package repository

import (
	"context"
	"database/sql"
	"time"

	models "gnsnode/internal/identity/model"
	"gnsnode/pkg/logger"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

type IdentityRepository struct {
	db     *bun.DB
	logger *logger.Logger
}

var (
	ErrNotFound  = errors.New("identity: not found")
	ErrDuplicate = errors.New("identity: duplicate key")
)

func NewIdentityRepository(db *bun.DB, logger logger.Logger) *IdentityRepository {
	return &IdentityRepository{
		db:     db,
		logger: &logger,
	}
}

// isUniqueViolation reports a Postgres 23505 from pgdriver.
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	return false
}

func notFoundOr(err error, where string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return errors.Wrap(err, where)
}

func (r *IdentityRepository) GetRecord(ctx context.Context, pk string) (*models.Record, error) {
	rec := new(models.Record)
	err := r.db.NewSelect().Model(rec).Where("pk_root = ?", pk).Scan(ctx)
	if err != nil {
		return nil, notFoundOr(err, "identityRepo.GetRecord.Scan: ")
	}
	return rec, nil
}

func (r *IdentityRepository) UpsertRecordIfNewer(ctx context.Context, rec *models.Record) (bool, error) {
	res, err := r.db.NewInsert().
		Model(rec).
		On("CONFLICT (pk_root) DO UPDATE").
		Set("version = EXCLUDED.version").
		Set("handle = EXCLUDED.handle").
		Set("encryption_key = EXCLUDED.encryption_key").
		Set("endpoints = EXCLUDED.endpoints").
		Set("epoch_roots = EXCLUDED.epoch_roots").
		Set("trust_score = EXCLUDED.trust_score").
		Set("breadcrumb_count = EXCLUDED.breadcrumb_count").
		Set("record_json = EXCLUDED.record_json").
		Set("signature = EXCLUDED.signature").
		Set("created_at = EXCLUDED.created_at").
		Set("updated_at = EXCLUDED.updated_at").
		Set("synced_at = EXCLUDED.synced_at").
		// last writer wins: the stored row only loses to a strictly newer one
		Where("ir.updated_at < EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return false, errors.Wrap(err, "identityRepo.UpsertRecordIfNewer.Exec: ")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "identityRepo.UpsertRecordIfNewer.RowsAffected: ")
	}
	return n > 0, nil
}

func (r *IdentityRepository) ListRecordsSince(ctx context.Context, since time.Time, limit int) ([]models.Record, error) {
	var records []models.Record
	err := r.db.NewSelect().
		Model(&records).
		Where("synced_at > ?", since).
		OrderExpr("synced_at ASC, pk_root ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "identityRepo.ListRecordsSince.Scan: ")
	}
	return records, nil
}

func (r *IdentityRepository) GetAlias(ctx context.Context, handle string) (*models.Alias, error) {
	alias := new(models.Alias)
	err := r.db.NewSelect().Model(alias).Where("handle = ?", handle).Scan(ctx)
	if err != nil {
		return nil, notFoundOr(err, "identityRepo.GetAlias.Scan: ")
	}
	return alias, nil
}

func (r *IdentityRepository) CreateAlias(ctx context.Context, alias *models.Alias) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// the primary key on handle is what serializes concurrent claims
		_, err := tx.NewInsert().Model(alias).Returning("*").Exec(ctx)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return errors.Wrap(err, "identityRepo.CreateAlias.Insert: ")
		}

		_, err = tx.NewDelete().
			Model((*models.Reservation)(nil)).
			Where("handle = ?", alias.Handle).
			Exec(ctx)
		if err != nil {
			return errors.Wrap(err, "identityRepo.CreateAlias.DeleteReservation: ")
		}
		return nil
	})
}

func (r *IdentityRepository) ListAliasesSince(ctx context.Context, since time.Time, limit int) ([]models.Alias, error) {
	var aliases []models.Alias
	err := r.db.NewSelect().
		Model(&aliases).
		Where("synced_at > ?", since).
		OrderExpr("synced_at ASC, handle ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "identityRepo.ListAliasesSince.Scan: ")
	}
	return aliases, nil
}

func (r *IdentityRepository) GetReservation(ctx context.Context, handle string) (*models.Reservation, error) {
	res := new(models.Reservation)
	err := r.db.NewSelect().Model(res).Where("handle = ?", handle).Scan(ctx)
	if err != nil {
		return nil, notFoundOr(err, "identityRepo.GetReservation.Scan: ")
	}
	return res, nil
}

func (r *IdentityRepository) CreateReservation(ctx context.Context, res *models.Reservation, now time.Time) error {
	result, err := r.db.NewInsert().
		Model(res).
		On("CONFLICT (handle) DO UPDATE").
		Set("pk_root = EXCLUDED.pk_root").
		Set("reserved_at = EXCLUDED.reserved_at").
		Set("expires_at = EXCLUDED.expires_at").
		// only a lapsed hold may be taken over
		Where("hr.expires_at <= ?", now).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "identityRepo.CreateReservation.Exec: ")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "identityRepo.CreateReservation.RowsAffected: ")
	}
	if n == 0 {
		return ErrDuplicate
	}
	return nil
}

func (r *IdentityRepository) DeleteExpiredReservations(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.NewDelete().
		Model((*models.Reservation)(nil)).
		Where("expires_at <= ?", now).
		Exec(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "identityRepo.DeleteExpiredReservations.Exec: ")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r *IdentityRepository) GetEpoch(ctx context.Context, pk string, index int) (*models.Epoch, error) {
	epoch := new(models.Epoch)
	err := r.db.NewSelect().
		Model(epoch).
		Where("pk_root = ? AND epoch_index = ?", pk, index).
		Scan(ctx)
	if err != nil {
		return nil, notFoundOr(err, "identityRepo.GetEpoch.Scan: ")
	}
	return epoch, nil
}

func (r *IdentityRepository) ListEpochs(ctx context.Context, pk string) ([]models.Epoch, error) {
	var epochs []models.Epoch
	err := r.db.NewSelect().
		Model(&epochs).
		Where("pk_root = ?", pk).
		Order("epoch_index ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "identityRepo.ListEpochs.Scan: ")
	}
	return epochs, nil
}

func (r *IdentityRepository) CreateEpoch(ctx context.Context, epoch *models.Epoch) error {
	_, err := r.db.NewInsert().Model(epoch).Returning("*").Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return errors.Wrap(err, "identityRepo.CreateEpoch.Insert: ")
	}
	return nil
}

func (r *IdentityRepository) ListEpochsSince(ctx context.Context, since time.Time, limit int) ([]models.Epoch, error) {
	var epochs []models.Epoch
	err := r.db.NewSelect().
		Model(&epochs).
		Where("synced_at > ?", since).
		OrderExpr("synced_at ASC, pk_root ASC, epoch_index ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "identityRepo.ListEpochsSince.Scan: ")
	}
	return epochs, nil
}
