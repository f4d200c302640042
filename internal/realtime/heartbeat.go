package realtime

import (
	"context"
	"time"
)

// RunHeartbeat pings every connection each interval. A connection that has
// not answered the previous ping is closed.
func (h *Hub) RunHeartbeat(ctx context.Context) {
	interval := h.config.HeartbeatInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Beat()
		}
	}
}

// Beat runs one heartbeat pass and returns the number of connections closed.
func (h *Hub) Beat() int {
	ping, _ := (&Frame{Type: FramePing}).encode()
	closed := 0
	for _, c := range h.all() {
		if c.awaitingPong.Load() {
			c.logger.Info("missed pong, closing connection")
			c.Close()
			closed++
			continue
		}
		c.awaitingPong.Store(true)
		c.Send(ping)
	}
	return closed
}
