package model

import (
	"time"

	"github.com/uptrace/bun"
)

// PeerState tracks the health of one configured peer.
type PeerState struct {
	bun.BaseModel `bun:"table:sync_peers,alias:sp"`

	Peer          string     `bun:",pk"`
	ErrorCount    int        `bun:",notnull,default:0"`
	LastError     string     `bun:",nullzero"`
	LastAttemptAt *time.Time `bun:",nullzero"`
	LastSuccessAt *time.Time `bun:",nullzero"`
}

// Healthy reports whether the peer is below the error threshold.
func (p *PeerState) Healthy(unhealthyAfter int) bool {
	return unhealthyAfter <= 0 || p.ErrorCount < unhealthyAfter
}

// Cursor is the newest peer-side synced_at already applied for one entity type.
type Cursor struct {
	bun.BaseModel `bun:"table:sync_cursors,alias:sc"`

	Peer       string    `bun:",pk"`
	EntityType string    `bun:",pk"`
	Since      time.Time `bun:",notnull"`
	UpdatedAt  time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}
