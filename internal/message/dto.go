package message

import (
	"time"

	"gnsnode/pkg/envelope"
)

const (
	MaxRecipients   = 100
	DefaultPullSize = 100
	MaxPullSize     = 500
)

type PullQuery struct {
	Since time.Time
	Limit int
}

type AckCommand struct {
	IDs    []string `json:"ids"`
	Status string   `json:"status"` // delivered | read
}

type SendResultDTO struct {
	ID         string    `json:"id"`
	Recipients int       `json:"recipients"`
	Pushed     int       `json:"pushed"`
	ReceivedAt time.Time `json:"received_at"`
}

type PullResultDTO struct {
	Envelopes []*envelope.Envelope `json:"envelopes"`
	NextSince time.Time            `json:"next_since"`
	HasMore   bool                 `json:"has_more"`
}
