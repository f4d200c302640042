package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Epoch is one link in an identity's checkpoint chain, keyed by (pk_root, epoch_index).
type Epoch struct {
	bun.BaseModel `bun:"table:epochs,alias:ep"`

	PkRoot        string  `bun:",pk"`
	EpochIndex    int     `bun:",pk"`
	StartTime     string  `bun:",nullzero"`
	EndTime       string  `bun:",nullzero"`
	MerkleRoot    string  `bun:",notnull"`
	BlockCount    int     `bun:",notnull"`
	PrevEpochHash *string `bun:",nullzero"`
	Signature     string  `bun:",notnull"`
	EpochHash     string  `bun:",notnull"`

	PublishedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
	SyncedAt    time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

// EpochHeader is the signed part of an epoch. EpochHash is optional on input;
// when present it must equal the hash the node computes.
type EpochHeader struct {
	EpochIndex    int     `json:"epoch_index"`
	StartTime     string  `json:"start_time,omitempty"`
	EndTime       string  `json:"end_time,omitempty"`
	MerkleRoot    string  `json:"merkle_root"`
	BlockCount    int     `json:"block_count"`
	PrevEpochHash *string `json:"prev_epoch_hash"`
	EpochHash     string  `json:"epoch_hash,omitempty"`
}

// Header rebuilds the header this row was published with.
func (e *Epoch) Header() EpochHeader {
	return EpochHeader{
		EpochIndex:    e.EpochIndex,
		StartTime:     e.StartTime,
		EndTime:       e.EndTime,
		MerkleRoot:    e.MerkleRoot,
		BlockCount:    e.BlockCount,
		PrevEpochHash: e.PrevEpochHash,
		EpochHash:     e.EpochHash,
	}
}
