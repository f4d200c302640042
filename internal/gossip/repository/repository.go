package repository

import (
	"context"
	"database/sql"
	"time"

	models "gnsnode/internal/gossip/model"
	"gnsnode/internal/identity"
	"gnsnode/pkg/logger"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type SyncRepository struct {
	db     *bun.DB
	logger *logger.Logger
}

var ErrNotFound = errors.New("gossip: peer not found")

func NewSyncRepository(db *bun.DB, logger logger.Logger) *SyncRepository {
	return &SyncRepository{db: db, logger: &logger}
}

func (r *SyncRepository) ListPeers(ctx context.Context) ([]models.PeerState, error) {
	var peers []models.PeerState
	err := r.db.NewSelect().Model(&peers).OrderExpr("error_count ASC, peer ASC").Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "syncRepo.ListPeers.Scan: ")
	}
	return peers, nil
}

func (r *SyncRepository) GetPeer(ctx context.Context, peer string) (*models.PeerState, error) {
	p := new(models.PeerState)
	if err := r.db.NewSelect().Model(p).Where("peer = ?", peer).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "syncRepo.GetPeer.Scan: ")
	}
	return p, nil
}

func (r *SyncRepository) RecordSuccess(ctx context.Context, peer string, at time.Time) error {
	p := &models.PeerState{Peer: peer, LastAttemptAt: &at, LastSuccessAt: &at}
	_, err := r.db.NewInsert().
		Model(p).
		On("CONFLICT (peer) DO UPDATE").
		Set("error_count = 0").
		Set("last_error = NULL").
		Set("last_attempt_at = EXCLUDED.last_attempt_at").
		Set("last_success_at = EXCLUDED.last_success_at").
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "syncRepo.RecordSuccess.Upsert: ")
	}
	return nil
}

func (r *SyncRepository) RecordFailure(ctx context.Context, peer string, at time.Time, reason string) error {
	p := &models.PeerState{Peer: peer, ErrorCount: 1, LastError: reason, LastAttemptAt: &at}
	_, err := r.db.NewInsert().
		Model(p).
		On("CONFLICT (peer) DO UPDATE").
		Set("error_count = sp.error_count + 1").
		Set("last_error = EXCLUDED.last_error").
		Set("last_attempt_at = EXCLUDED.last_attempt_at").
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "syncRepo.RecordFailure.Upsert: ")
	}
	return nil
}

func (r *SyncRepository) GetCursor(ctx context.Context, peer string, entity identity.EntityType) (time.Time, error) {
	c := new(models.Cursor)
	err := r.db.NewSelect().
		Model(c).
		Where("peer = ?", peer).
		Where("entity_type = ?", string(entity)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, errors.Wrap(err, "syncRepo.GetCursor.Scan: ")
	}
	return c.Since, nil
}

func (r *SyncRepository) SaveCursor(ctx context.Context, peer string, entity identity.EntityType, since time.Time) error {
	c := &models.Cursor{Peer: peer, EntityType: string(entity), Since: since, UpdatedAt: time.Now().UTC()}
	_, err := r.db.NewInsert().
		Model(c).
		On("CONFLICT (peer, entity_type) DO UPDATE").
		Set("since = EXCLUDED.since").
		Set("updated_at = EXCLUDED.updated_at").
		Where("sc.since < EXCLUDED.since").
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "syncRepo.SaveCursor.Upsert: ")
	}
	return nil
}
