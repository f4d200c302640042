package message

import (
	"context"
	"time"

	"gnsnode/pkg/envelope"
)

type Usecase interface {
	// Verify, store and push an envelope sent by the authenticated key
	Send(ctx context.Context, sender string, env *envelope.Envelope) (*SendResultDTO, error)
	// Inbox pull for pk
	Pull(ctx context.Context, pk string, q PullQuery) (*PullResultDTO, error)
	Ack(ctx context.Context, pk string, cmd AckCommand) (int, error)
	// Envelope by id, visible to its sender and recipients only
	Get(ctx context.Context, pk, id string) (*envelope.Envelope, error)
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

// Notifier pushes a stored envelope to live connections. Misses are silent.
type Notifier interface {
	PushEnvelope(recipients []string, env *envelope.Envelope) int
}
