package realtime

import (
	"sync"
	"sync/atomic"

	"gnsnode/pkg/logger"
)

type Role string

const (
	RoleMobile  Role = "mobile"
	RoleBrowser Role = "browser"
	RoleUnknown Role = "unknown"
)

func ParseRole(s string) Role {
	switch Role(s) {
	case RoleMobile, RoleBrowser:
		return Role(s)
	}
	return RoleUnknown
}

// Capable connections hold the identity's private key. Browser companions
// authenticate with a session token and cannot decrypt envelopes.
func (r Role) Capable() bool { return r != RoleBrowser }

// Transport writes whole text frames to one client.
type Transport interface {
	Write(p []byte) error
	Close() error
}

type Conn struct {
	ID   string
	PK   string
	Role Role

	transport Transport
	hub       *Hub
	logger    logger.Logger
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	awaitingPong atomic.Bool
}

// Send queues a frame without blocking. A full buffer drops the frame.
func (c *Conn) Send(b []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- b:
		return true
	default:
		c.logger.Warn("send buffer full, frame dropped")
		return false
	}
}

func (c *Conn) sendFrame(f *Frame) bool {
	b, err := f.encode()
	if err != nil {
		c.logger.Error("failed to encode frame", "type", f.Type, "err", err)
		return false
	}
	return c.Send(b)
}

// Close detaches the connection from the hub and closes its transport.
// Safe to call more than once.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.transport.Close()
		c.hub.unregister(c)
	})
}

// Done is closed once the connection has been closed.
func (c *Conn) Done() <-chan struct{} { return c.done }

func (c *Conn) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case b := <-c.send:
			if err := c.transport.Write(b); err != nil {
				c.logger.Debug("write failed, closing connection", "err", err)
				c.Close()
				return
			}
		}
	}
}
