package realtime

import (
	"encoding/json"

	"gnsnode/pkg/envelope"
)

const (
	FrameConnected     = "connected"
	FrameMessage       = "message"
	FrameTyping        = "typing"
	FramePresence      = "presence"
	FrameSyncToMobile  = "sync_to_mobile"
	FrameSyncToBrowser = "sync_to_browser"
	FrameRequestSync   = "request_sync"
	FrameSyncRequested = "sync_requested"
	FrameSyncPending   = "sync_pending"
	FramePing          = "ping"
	FramePong          = "pong"
	FrameError         = "error"
)

const (
	ReasonMobileOffline = "mobile_offline"

	PresenceOnline  = "online"
	PresenceOffline = "offline"
)

// Frame is the JSON object exchanged over a realtime connection. Routing
// fields (From, ConnID) are always set by the node, never trusted from clients.
type Frame struct {
	Type string `json:"type"`

	From         string   `json:"from,omitempty"`
	To           []string `json:"to,omitempty"`
	ConnID       string   `json:"connId,omitempty"`
	TargetConnID string   `json:"targetConnId,omitempty"`
	Role         Role     `json:"role,omitempty"`

	MessageID string `json:"messageId,omitempty"`
	ThreadID  string `json:"threadId,omitempty"`
	Status    string `json:"status,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Count     int    `json:"count,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`

	Envelope *envelope.Envelope `json:"envelope,omitempty"`
	// Plaintext relayed by sync_to_browser. It only ever transits the node.
	Data json.RawMessage `json:"data,omitempty"`
}

func (f *Frame) encode() ([]byte, error) {
	return json.Marshal(f)
}

func errorFrame(reason string) *Frame {
	return &Frame{Type: FrameError, Reason: reason}
}
