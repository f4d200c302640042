package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Alias binds a handle to an identity. Rows are never updated or reassigned.
type Alias struct {
	bun.BaseModel `bun:"table:aliases,alias:al"`

	Handle          string  `bun:",pk"`
	PkRoot          string  `bun:",notnull"`
	BreadcrumbCount int     `bun:",notnull"`
	TrustScore      float64 `bun:",notnull"`
	ProofJSON       string  `bun:"type:text,notnull"`
	Signature       string  `bun:",notnull"`

	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
	SyncedAt  time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

// Proof is the movement evidence submitted with a claim. Clients may send
// more fields; only these two gate the claim.
type Proof struct {
	BreadcrumbCount int     `json:"breadcrumb_count"`
	TrustScore      float64 `json:"trust_score"`
}

// Reservation is a soft hold on a handle that lapses at ExpiresAt.
type Reservation struct {
	bun.BaseModel `bun:"table:handle_reservations,alias:hr"`

	Handle     string    `bun:",pk"`
	PkRoot     string    `bun:",notnull"`
	ReservedAt time.Time `bun:",notnull"`
	ExpiresAt  time.Time `bun:",notnull"`
}

func (r *Reservation) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
