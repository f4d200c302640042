package identity

import (
	"encoding/json"
	"time"

	models "gnsnode/internal/identity/model"
)

type EntityType string

const (
	EntityRecords EntityType = "records"
	EntityAliases EntityType = "aliases"
	EntityEpochs  EntityType = "epochs"
)

func (t EntityType) Valid() bool {
	switch t {
	case EntityRecords, EntityAliases, EntityEpochs:
		return true
	}
	return false
}

type ApplyOutcome int

const (
	Applied ApplyOutcome = iota
	Skipped
)

// Input commands
type PublishRecordCommand struct {
	PublicKey  string
	RecordJSON json.RawMessage
	Signature  string
}

type ClaimAliasCommand struct {
	Handle    string
	Identity  string
	Proof     json.RawMessage
	Signature string
}

type ReserveHandleCommand struct {
	Handle    string
	Identity  string
	Signature string // over {"action":"reserve","handle","identity"}
}

type PublishEpochCommand struct {
	PublicKey string
	Index     int
	Header    models.EpochHeader
	Signature string
}

// Output DTOs. They double as gossip items, so each carries what a peer
// needs to re-verify it.
type RecordDTO struct {
	PkRoot          string          `json:"pk_root"`
	RecordJSON      json.RawMessage `json:"record_json"`
	Signature       string          `json:"signature"`
	Version         int             `json:"version,omitempty"`
	Handle          *string         `json:"handle,omitempty"`
	TrustScore      float64         `json:"trust_score,omitempty"`
	BreadcrumbCount int             `json:"breadcrumb_count,omitempty"`
	UpdatedAt       time.Time       `json:"updated_at,omitzero"`
	SyncedAt        time.Time       `json:"synced_at,omitzero"`
}

type AliasDTO struct {
	Handle    string          `json:"handle"`
	Identity  string          `json:"identity"`
	Proof     json.RawMessage `json:"proof"`
	Signature string          `json:"signature"`
	CreatedAt time.Time       `json:"created_at,omitzero"`
	SyncedAt  time.Time       `json:"synced_at,omitzero"`
}

type ReservationDTO struct {
	Handle     string    `json:"handle"`
	Identity   string    `json:"identity"`
	ReservedAt time.Time `json:"reserved_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type HandleAvailabilityDTO struct {
	Handle     string     `json:"handle"`
	Available  bool       `json:"available"`
	Claimed    bool       `json:"claimed"`
	Reserved   bool       `json:"reserved"`
	ReservedBy string     `json:"reserved_by,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitzero"`
}

type EpochDTO struct {
	PkRoot    string             `json:"pk_root"`
	Epoch     models.EpochHeader `json:"epoch"`
	Signature string             `json:"signature"`
	SyncedAt  time.Time          `json:"synced_at,omitzero"`
}

func NewRecordDTO(r *models.Record) *RecordDTO {
	return &RecordDTO{
		PkRoot:          r.PkRoot,
		RecordJSON:      json.RawMessage(r.RecordJSON),
		Signature:       r.Signature,
		Version:         r.Version,
		Handle:          r.Handle,
		TrustScore:      r.TrustScore,
		BreadcrumbCount: r.BreadcrumbCount,
		UpdatedAt:       r.UpdatedAt,
		SyncedAt:        r.SyncedAt,
	}
}

func NewAliasDTO(a *models.Alias) *AliasDTO {
	return &AliasDTO{
		Handle:    a.Handle,
		Identity:  a.PkRoot,
		Proof:     json.RawMessage(a.ProofJSON),
		Signature: a.Signature,
		CreatedAt: a.CreatedAt,
		SyncedAt:  a.SyncedAt,
	}
}

func NewEpochDTO(e *models.Epoch) *EpochDTO {
	return &EpochDTO{
		PkRoot:    e.PkRoot,
		Epoch:     e.Header(),
		Signature: e.Signature,
		SyncedAt:  e.SyncedAt,
	}
}
