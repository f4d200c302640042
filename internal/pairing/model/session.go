package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusExpired  = "expired"
	StatusRevoked  = "revoked"
)

// Session pairs a companion device with a key-holding identity. The bearer
// token is stored hashed; PendingToken holds the plaintext only until the
// companion's first poll after approval.
type Session struct {
	bun.BaseModel `bun:"table:pairing_sessions,alias:ps"`

	ID        uuid.UUID `bun:",pk,type:uuid"`
	Challenge string    `bun:",notnull"`
	Status    string    `bun:",notnull,default:'pending'"`
	PkRoot    *string   `bun:",nullzero"`

	TokenHash    []byte  `bun:",nullzero,unique"`
	PendingToken *string `bun:",nullzero"`

	ChallengeExpiresAt time.Time  `bun:",notnull"`
	SessionExpiresAt   *time.Time `bun:",nullzero"`
	CreatedAt          time.Time  `bun:",nullzero,notnull,default:current_timestamp"`
	ApprovedAt         *time.Time `bun:",nullzero"`
	RevokedAt          *time.Time `bun:",nullzero"`
}

// EffectiveStatus folds wall-clock expiry into the stored status.
func (s *Session) EffectiveStatus(now time.Time) string {
	switch s.Status {
	case StatusPending:
		if !now.Before(s.ChallengeExpiresAt) {
			return StatusExpired
		}
	case StatusApproved:
		if s.SessionExpiresAt != nil && !now.Before(*s.SessionExpiresAt) {
			return StatusExpired
		}
	}
	return s.Status
}
