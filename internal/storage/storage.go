// Package storage opens the Postgres connection and creates the schema.
package storage

import (
	"context"
	"database/sql"
	"time"

	"gnsnode/config"
	gossipModels "gnsnode/internal/gossip/model"
	identityModels "gnsnode/internal/identity/model"
	messageModels "gnsnode/internal/message/model"
	pairingModels "gnsnode/internal/pairing/model"
	"gnsnode/pkg/logger"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

var tables = []any{
	(*identityModels.Record)(nil),
	(*identityModels.Alias)(nil),
	(*identityModels.Reservation)(nil),
	(*identityModels.Epoch)(nil),
	(*messageModels.StoredEnvelope)(nil),
	(*messageModels.Delivery)(nil),
	(*pairingModels.Session)(nil),
	(*gossipModels.PeerState)(nil),
	(*gossipModels.Cursor)(nil),
}

type index struct {
	model   any
	name    string
	columns []string
}

var indexes = []index{
	{(*identityModels.Record)(nil), "identity_records_synced_at_idx", []string{"synced_at"}},
	{(*identityModels.Alias)(nil), "aliases_synced_at_idx", []string{"synced_at"}},
	{(*identityModels.Alias)(nil), "aliases_pk_root_idx", []string{"pk_root"}},
	{(*identityModels.Reservation)(nil), "handle_reservations_expires_at_idx", []string{"expires_at"}},
	{(*identityModels.Epoch)(nil), "epochs_synced_at_idx", []string{"synced_at"}},
	{(*messageModels.StoredEnvelope)(nil), "envelopes_expires_at_idx", []string{"expires_at"}},
	{(*messageModels.Delivery)(nil), "envelope_deliveries_inbox_idx", []string{"recipient_pk", "status", "received_at"}},
	{(*messageModels.Delivery)(nil), "envelope_deliveries_expires_at_idx", []string{"expires_at"}},
	{(*pairingModels.Session)(nil), "pairing_sessions_challenge_expires_at_idx", []string{"challenge_expires_at"}},
}

// Open connects to Postgres and checks the connection.
func Open(ctx context.Context, cfg config.BunConfig) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
	db := bun.NewDB(sqldb, pgdialect.New())

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "storage.Open.Ping: ")
	}
	return db, nil
}

// Migrate creates every table and index that does not exist yet.
func Migrate(ctx context.Context, db *bun.DB, logger logger.Logger) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, m := range tables {
			if _, err := tx.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
				return errors.Wrapf(err, "storage.Migrate.CreateTable %T: ", m)
			}
		}
		for _, ix := range indexes {
			_, err := tx.NewCreateIndex().
				Model(ix.model).
				Index(ix.name).
				Column(ix.columns...).
				IfNotExists().
				Exec(ctx)
			if err != nil {
				return errors.Wrapf(err, "storage.Migrate.CreateIndex %s: ", ix.name)
			}
		}
		logger.Info("schema migrated", "tables", len(tables), "indexes", len(indexes))
		return nil
	})
}
