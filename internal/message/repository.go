package message

import (
	"context"
	"time"

	models "gnsnode/internal/message/model"

	"github.com/google/uuid"
)

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks gnsnode/internal/message Repository

type Repository interface {
	// Stores the envelope with one pending delivery per recipient, atomically.
	// ErrDuplicate when the id exists.
	CreateEnvelope(ctx context.Context, env *models.StoredEnvelope, deliveries []models.Delivery) error
	GetEnvelope(ctx context.Context, id uuid.UUID) (*models.StoredEnvelope, error)
	// Pending, unexpired envelopes for pk received after since, oldest first.
	ListPending(ctx context.Context, pk string, since, now time.Time, limit int) ([]models.StoredEnvelope, error)
	// Moves pk's deliveries forward to status; rows already at or past it are untouched.
	MarkDeliveries(ctx context.Context, pk string, ids []uuid.UUID, status string, at time.Time) (int, error)
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
