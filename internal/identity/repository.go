package identity

import (
	"context"
	"time"

	models "gnsnode/internal/identity/model"
)

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks gnsnode/internal/identity Repository

type Repository interface {
	GetRecord(ctx context.Context, pk string) (*models.Record, error)
	// Stores rec unless a row with an equal or newer updated_at exists.
	// applied is false when the stored row won.
	UpsertRecordIfNewer(ctx context.Context, rec *models.Record) (applied bool, err error)
	ListRecordsSince(ctx context.Context, since time.Time, limit int) ([]models.Record, error)

	GetAlias(ctx context.Context, handle string) (*models.Alias, error)
	// Inserts the alias and drops any reservation on the same handle in one
	// transaction. ErrDuplicate when the handle is already bound.
	CreateAlias(ctx context.Context, alias *models.Alias) error
	ListAliasesSince(ctx context.Context, since time.Time, limit int) ([]models.Alias, error)

	GetReservation(ctx context.Context, handle string) (*models.Reservation, error)
	// Inserts res, replacing a lapsed reservation. ErrDuplicate when a live one exists.
	CreateReservation(ctx context.Context, res *models.Reservation, now time.Time) error
	DeleteExpiredReservations(ctx context.Context, now time.Time) (int, error)

	GetEpoch(ctx context.Context, pk string, index int) (*models.Epoch, error)
	ListEpochs(ctx context.Context, pk string) ([]models.Epoch, error)
	// ErrDuplicate when (pk_root, epoch_index) exists.
	CreateEpoch(ctx context.Context, epoch *models.Epoch) error
	ListEpochsSince(ctx context.Context, since time.Time, limit int) ([]models.Epoch, error)
}
