package realtime

import (
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gobwas/ws"
)

const (
	writeTimeout = 10 * time.Second
	maxFrameSize = 1 << 20
)

// wsTransport serializes every outbound frame, including control replies.
type wsTransport struct {
	mu   sync.Mutex
	conn net.Conn
}

func (t *wsTransport) Write(p []byte) error {
	return t.writeFrame(ws.NewTextFrame(p))
}

func (t *wsTransport) writeFrame(f ws.Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_ = t.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return ws.WriteFrame(t.conn, f)
}

func (t *wsTransport) Close() error {
	return t.conn.Close()
}

// ServeWS upgrades an already authenticated request and runs the read loop
// until the client goes away or the heartbeat closes the connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, pk string, role Role) {
	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "pk", pk, "err", err)
		return
	}
	// the server's ReadTimeout deadline survives the hijack
	_ = conn.SetReadDeadline(time.Time{})
	t := &wsTransport{conn: conn}
	c := h.Register(pk, role, t)
	defer c.Close()

	for {
		hdr, err := ws.ReadHeader(conn)
		if err != nil {
			return
		}
		if hdr.Length > maxFrameSize {
			c.logger.Warn("frame too large, closing connection", "size", hdr.Length)
			_ = t.writeFrame(ws.NewCloseFrame(ws.NewCloseFrameBody(ws.StatusMessageTooBig, "")))
			return
		}
		payload := make([]byte, hdr.Length)
		if _, err := io.ReadFull(conn, payload); err != nil {
			return
		}
		if hdr.Masked {
			ws.Cipher(payload, hdr.Mask, 0)
		}

		switch hdr.OpCode {
		case ws.OpClose:
			_ = t.writeFrame(ws.NewCloseFrame(nil))
			return
		case ws.OpPing:
			_ = t.writeFrame(ws.NewPongFrame(payload))
		case ws.OpText:
			if !hdr.Fin {
				c.sendFrame(errorFrame("fragmented frames are not supported"))
				continue
			}
			h.Dispatch(c, payload)
		}
	}
}
