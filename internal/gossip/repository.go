package gossip

import (
	"context"
	"time"

	models "gnsnode/internal/gossip/model"
	"gnsnode/internal/identity"
)

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks gnsnode/internal/gossip Repository

type Repository interface {
	ListPeers(ctx context.Context) ([]models.PeerState, error)
	GetPeer(ctx context.Context, peer string) (*models.PeerState, error)
	RecordSuccess(ctx context.Context, peer string, at time.Time) error
	RecordFailure(ctx context.Context, peer string, at time.Time, reason string) error

	// Zero time when the peer was never pulled for this entity type.
	GetCursor(ctx context.Context, peer string, entity identity.EntityType) (time.Time, error)
	// Never moves a cursor backwards.
	SaveCursor(ctx context.Context, peer string, entity identity.EntityType, since time.Time) error
}
