package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// StoredEnvelope is an accepted envelope. Body is the signed wire JSON and is
// returned as-is; the other columns exist for lookup and expiry.
type StoredEnvelope struct {
	bun.BaseModel `bun:"table:envelopes,alias:env"`

	ID            uuid.UUID `bun:",pk,type:uuid"`
	FromPublicKey string    `bun:",notnull"`
	ThreadID      *string   `bun:",nullzero"`
	PayloadType   string    `bun:",notnull"`
	Body          string    `bun:"type:text,notnull"`
	Timestamp     int64     `bun:",notnull"`

	ReceivedAt time.Time  `bun:",nullzero,notnull,default:current_timestamp"`
	ExpiresAt  *time.Time `bun:",nullzero"` // swept once passed
}

const (
	StatusPending   = "pending"
	StatusDelivered = "delivered"
	StatusRead      = "read"
)

// Delivery is one recipient's inbox entry for an envelope.
type Delivery struct {
	bun.BaseModel `bun:"table:envelope_deliveries,alias:dl"`

	EnvelopeID  uuid.UUID `bun:",pk,type:uuid"`
	RecipientPK string    `bun:",pk"`
	Status      string    `bun:",notnull,default:'pending'"`

	ReceivedAt  time.Time  `bun:",nullzero,notnull,default:current_timestamp"`
	ExpiresAt   *time.Time `bun:",nullzero"`
	DeliveredAt *time.Time `bun:",nullzero"`
	ReadAt      *time.Time `bun:",nullzero"`
}
