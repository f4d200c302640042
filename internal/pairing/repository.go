package pairing

import (
	"context"
	"time"

	models "gnsnode/internal/pairing/model"

	"github.com/google/uuid"
)

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks gnsnode/internal/pairing Repository

type Repository interface {
	CreateSession(ctx context.Context, s *models.Session) error
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	GetSessionByTokenHash(ctx context.Context, hash []byte) (*models.Session, error)
	// Moves a pending, unexpired session to approved. ErrConflict when the
	// session is no longer pending.
	ApproveSession(ctx context.Context, s *models.Session, now time.Time) error
	// Returns and clears the plaintext token. ErrNotFound once it was taken.
	TakePendingToken(ctx context.Context, id uuid.UUID) (string, error)
	RevokeSession(ctx context.Context, id uuid.UUID, pk string, at time.Time) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
