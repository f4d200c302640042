package gossip

import (
	"context"
	"time"

	"gnsnode/internal/identity"
	identityModels "gnsnode/internal/identity/model"
)

type Usecase interface {
	// Node-local entities of one type updated after since
	Pull(ctx context.Context, entity identity.EntityType, since time.Time, limit int) (*PullResultDTO, error)
	// Apply a peer's batch item by item
	Push(ctx context.Context, cmd PushCommand) (*PushResultDTO, error)
	Status(ctx context.Context) (*StatusDTO, error)

	// One anti-entropy round over every configured peer
	SyncRound(ctx context.Context) error
}

// Source is the read side of the identity ledger.
type Source interface {
	ListRecordsSince(ctx context.Context, since time.Time, limit int) ([]identityModels.Record, error)
	ListAliasesSince(ctx context.Context, since time.Time, limit int) ([]identityModels.Alias, error)
	ListEpochsSince(ctx context.Context, since time.Time, limit int) ([]identityModels.Epoch, error)
}

// Applier verifies and stores replicated items.
type Applier interface {
	ApplyRecord(ctx context.Context, item identity.RecordDTO) (identity.ApplyOutcome, error)
	ApplyAlias(ctx context.Context, item identity.AliasDTO) (identity.ApplyOutcome, error)
	ApplyEpoch(ctx context.Context, item identity.EpochDTO) (identity.ApplyOutcome, error)
}

// PeerClient talks to another node's /sync surface.
type PeerClient interface {
	Pull(ctx context.Context, peer string, entity identity.EntityType, since time.Time, limit int) (*PullResultDTO, error)
	Push(ctx context.Context, peer string, cmd PushCommand) (*PushResultDTO, error)
}
