package realtime

import (
	"encoding/json"
	"time"
)

const maxTargets = 100

// Dispatch handles one frame received from c.
func (h *Hub) Dispatch(c *Conn, raw []byte) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		c.sendFrame(errorFrame("frame is not valid JSON"))
		return
	}
	f.From = c.PK
	f.ConnID = c.ID

	switch f.Type {
	case FramePing:
		c.sendFrame(&Frame{Type: FramePong, Timestamp: time.Now().UnixMilli()})
	case FramePong:
		c.awaitingPong.Store(false)
	case FrameTyping, FramePresence:
		h.relayToContacts(c, &f)
	case FrameSyncToMobile, FrameRequestSync:
		h.relayToCapable(c, &f)
	case FrameSyncToBrowser:
		h.relayToCompanions(c, &f)
	case FrameMessage:
		c.sendFrame(errorFrame("envelopes are sent with POST /messages"))
	default:
		c.sendFrame(errorFrame("unknown frame type"))
	}
}

// relayToContacts forwards typing and presence to the addressed identities.
func (h *Hub) relayToContacts(c *Conn, f *Frame) {
	if len(f.To) == 0 || len(f.To) > maxTargets {
		c.sendFrame(errorFrame("to must name 1-100 public keys"))
		return
	}
	to := f.To
	f.To = nil
	f.Envelope, f.Data = nil, nil
	h.addContacts(c.PK, to)
	h.Notify(to, f)
}

// relayToCapable asks the key-holding devices of the same identity to decrypt
// and forward. Nothing is queued when none is connected.
func (h *Hub) relayToCapable(c *Conn, f *Frame) {
	if c.Role.Capable() {
		c.sendFrame(errorFrame("only companion devices request sync"))
		return
	}
	if f.Type == FrameSyncToMobile && f.MessageID == "" {
		c.sendFrame(errorFrame("messageId is required"))
		return
	}
	f.To, f.Envelope, f.Data = nil, nil, nil

	b, err := f.encode()
	if err != nil {
		c.logger.Error("failed to encode frame", "type", f.Type, "err", err)
		return
	}
	sent := 0
	for _, other := range h.connections(c.PK) {
		if other != c && other.Role.Capable() && other.Send(b) {
			sent++
		}
	}

	reply := &Frame{MessageID: f.MessageID, ThreadID: f.ThreadID}
	if sent == 0 {
		reply.Type = FrameSyncPending
		reply.Reason = ReasonMobileOffline
	} else {
		reply.Type = FrameSyncRequested
		reply.Count = sent
	}
	c.sendFrame(reply)
}

// relayToCompanions forwards plaintext from a capable device to one or all
// companion connections of the same identity.
func (h *Hub) relayToCompanions(c *Conn, f *Frame) {
	if !c.Role.Capable() {
		c.sendFrame(errorFrame("only key-holding devices push sync_to_browser"))
		return
	}
	target := f.TargetConnID
	f.To, f.Envelope = nil, nil

	b, err := f.encode()
	if err != nil {
		c.logger.Error("failed to encode frame", "type", f.Type, "err", err)
		return
	}
	sent := 0
	for _, other := range h.connections(c.PK) {
		if other.Role.Capable() || (target != "" && other.ID != target) {
			continue
		}
		if other.Send(b) {
			sent++
		}
	}
	if sent == 0 {
		c.logger.Debug("sync_to_browser had no companion to reach", "target", target)
	}
}
