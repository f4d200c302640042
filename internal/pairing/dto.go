package pairing

import "time"

type ApproveCommand struct {
	SessionID string
	PublicKey string
	Signature string // over {"action":"approve","challenge","public_key","session_id"}
}

type SessionDTO struct {
	SessionID string    `json:"session_id"`
	Challenge string    `json:"challenge"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SessionStatusDTO struct {
	SessionID string     `json:"session_id"`
	Status    string     `json:"status"`
	PublicKey string     `json:"public_key,omitempty"`
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
