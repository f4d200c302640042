package identity

import (
	"context"
	"time"
)

type Usecase interface {
	// Verify and store a signed identity record (last writer wins by updated_at)
	PublishRecord(ctx context.Context, cmd PublishRecordCommand) (*RecordDTO, error)
	GetRecord(ctx context.Context, pk string) (*RecordDTO, error)

	// Bind a handle after the movement gate is met
	ClaimAlias(ctx context.Context, cmd ClaimAliasCommand) (*AliasDTO, error)
	GetAlias(ctx context.Context, handle string) (*AliasDTO, error)
	CheckHandle(ctx context.Context, handle string) (*HandleAvailabilityDTO, error)
	ReserveHandle(ctx context.Context, cmd ReserveHandleCommand) (*ReservationDTO, error)

	// Append the next link of an identity's epoch chain
	PublishEpoch(ctx context.Context, cmd PublishEpochCommand) (*EpochDTO, error)
	GetEpoch(ctx context.Context, pk string, index int) (*EpochDTO, error)
	ListEpochs(ctx context.Context, pk string) ([]*EpochDTO, error)

	SweepExpired(ctx context.Context, now time.Time) (int, error)

	// Replication entry points used by gossip. They verify like local writes
	// but report an already-present item as Skipped instead of an error.
	ApplyRecord(ctx context.Context, item RecordDTO) (ApplyOutcome, error)
	ApplyAlias(ctx context.Context, item AliasDTO) (ApplyOutcome, error)
	ApplyEpoch(ctx context.Context, item EpochDTO) (ApplyOutcome, error)
}

// Replicator is told about every locally accepted write so it can be pushed to peers.
type Replicator interface {
	Replicate(entity EntityType, item any)
}

// TaskQueue runs side effects off the request path.
type TaskQueue interface {
	Enqueue(name string, fn func(ctx context.Context) error) bool
}

// Granter is the settlement collaborator credited on a successful claim.
type Granter interface {
	WelcomeGrant(ctx context.Context, handle, pk string) error
}
