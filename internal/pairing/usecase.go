package pairing

import (
	"context"
	"time"
)

type Usecase interface {
	// Companion side: open a session and poll it
	CreateSession(ctx context.Context) (*SessionDTO, error)
	Status(ctx context.Context, id string) (*SessionStatusDTO, error)

	// Capable side: sign the challenge to hand the companion a token
	Approve(ctx context.Context, cmd ApproveCommand) (*SessionStatusDTO, error)
	Revoke(ctx context.Context, id, pk string) error

	// Resolve a bearer token to the identity it acts for
	Authenticate(ctx context.Context, token string) (string, error)
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}
