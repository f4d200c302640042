package gossip

import (
	"encoding/json"
	"time"

	"gnsnode/internal/identity"
)

const (
	DefaultPullSize = 100
	MaxItemErrors   = 20
)

type PushCommand struct {
	Type   identity.EntityType `json:"type"`
	Items  []json.RawMessage   `json:"items"`
	NodeID string              `json:"node_id"`
}

type PushResultDTO struct {
	Processed int      `json:"processed"`
	Skipped   int      `json:"skipped"`
	Failed    int      `json:"failed"`
	Total     int      `json:"total"`
	Errors    []string `json:"errors,omitempty"`
}

type PullResultDTO struct {
	Type      identity.EntityType `json:"type"`
	Items     []json.RawMessage   `json:"items"`
	Count     int                 `json:"count"`
	NextSince time.Time           `json:"next_since"`
	HasMore   bool                `json:"has_more"`
}

type PeerStatusDTO struct {
	Peer          string                             `json:"peer"`
	Healthy       bool                               `json:"healthy"`
	ErrorCount    int                                `json:"error_count"`
	LastError     string                             `json:"last_error,omitempty"`
	LastAttemptAt *time.Time                         `json:"last_attempt_at,omitempty"`
	LastSuccessAt *time.Time                         `json:"last_success_at,omitempty"`
	Cursors       map[identity.EntityType]time.Time `json:"cursors"`
}

type StatusDTO struct {
	NodeID       string          `json:"node_id"`
	PullInterval string          `json:"pull_interval"`
	Peers        []PeerStatusDTO `json:"peers"`
}
