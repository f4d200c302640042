package models

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// Record is the stored identity manifest. RecordJSON keeps the exact body
// the owner signed so peers can re-verify it.
type Record struct {
	bun.BaseModel `bun:"table:identity_records,alias:ir"`

	PkRoot          string     `bun:",pk"`
	Version         int        `bun:",notnull"`
	Handle          *string    `bun:",nullzero"`
	EncryptionKey   *string    `bun:",nullzero"`
	Endpoints       []Endpoint `bun:"type:jsonb"`
	EpochRoots      []string   `bun:"type:jsonb"`
	TrustScore      float64    `bun:",notnull"`
	BreadcrumbCount int        `bun:",notnull"`

	RecordJSON string `bun:"type:text,notnull"`
	Signature  string `bun:",notnull"`

	CreatedAt time.Time `bun:",notnull"`
	UpdatedAt time.Time `bun:",notnull"`

	// SyncedAt is node-local: when this node last stored the row. It is the
	// gossip cursor and is never part of the signed body.
	SyncedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

type Endpoint struct {
	Type     string `json:"type"`
	Protocol string `json:"protocol"`
	Address  string `json:"address"`
	Port     *int   `json:"port,omitempty"`
	Priority int    `json:"priority"`
	IsActive bool   `json:"is_active"`
}

// RecordBody is the signed record document as published by its owner.
type RecordBody struct {
	PkRoot          string            `json:"pk_root"`
	Version         int               `json:"version"`
	Handle          *string           `json:"handle,omitempty"`
	EncryptionKey   *string           `json:"encryption_key,omitempty"`
	Modules         []json.RawMessage `json:"modules,omitempty"`
	Endpoints       []Endpoint        `json:"endpoints,omitempty"`
	EpochRoots      []string          `json:"epoch_roots,omitempty"`
	TrustScore      float64           `json:"trust_score"`
	BreadcrumbCount int               `json:"breadcrumb_count"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}
