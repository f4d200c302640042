// Package realtime keeps the live connection registry and routes frames
// between the devices of an identity and its correspondents.
package realtime

import (
	"hash/fnv"

	"gnsnode/config"
	"gnsnode/pkg/envelope"
	"gnsnode/pkg/logger"

	"github.com/google/uuid"
	"github.com/sasha-s/go-deadlock"
)

const shardCount = 32

type entry struct {
	conns []*Conn
	// keys this identity addressed with typing or presence frames
	contacts map[string]struct{}
}

type shard struct {
	mu   deadlock.RWMutex
	keys map[string]*entry
}

// Hub is the registry of live connections, keyed by identity public key.
// Keys are spread over shards so unrelated identities never contend.
type Hub struct {
	shards     [shardCount]shard
	sendBuffer int
	config     config.Realtime
	logger     logger.Logger
}

func NewHub(cfg config.Realtime, logger logger.Logger) *Hub {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 64
	}
	h := &Hub{sendBuffer: cfg.SendBuffer, config: cfg, logger: logger.With("component", "realtime")}
	for i := range h.shards {
		h.shards[i].keys = make(map[string]*entry)
	}
	return h
}

func (h *Hub) shard(pk string) *shard {
	f := fnv.New32a()
	_, _ = f.Write([]byte(pk))
	return &h.shards[f.Sum32()%shardCount]
}

// Register adds a live connection and starts its writer.
func (h *Hub) Register(pk string, role Role, t Transport) *Conn {
	c := &Conn{
		ID:        uuid.NewString(),
		PK:        pk,
		Role:      role,
		transport: t,
		hub:       h,
		send:      make(chan []byte, h.sendBuffer),
		done:      make(chan struct{}),
	}
	c.logger = h.logger.With("conn_id", c.ID, "pk", pk, "role", role)

	s := h.shard(pk)
	s.mu.Lock()
	e, ok := s.keys[pk]
	if !ok {
		e = &entry{contacts: make(map[string]struct{})}
		s.keys[pk] = e
	}
	e.conns = append(e.conns, c)
	n := len(e.conns)
	s.mu.Unlock()

	go c.writeLoop()
	c.sendFrame(&Frame{Type: FrameConnected, ConnID: c.ID, Role: role})
	c.logger.Info("connection opened", "connections", n)
	return c
}

func (h *Hub) unregister(c *Conn) {
	s := h.shard(c.PK)
	s.mu.Lock()
	e, ok := s.keys[c.PK]
	if !ok {
		s.mu.Unlock()
		return
	}
	for i, other := range e.conns {
		if other == c {
			e.conns = append(e.conns[:i], e.conns[i+1:]...)
			break
		}
	}
	var contacts []string
	last := len(e.conns) == 0
	if last {
		delete(s.keys, c.PK)
		for pk := range e.contacts {
			contacts = append(contacts, pk)
		}
	}
	s.mu.Unlock()

	c.logger.Info("connection closed", "last", last)
	if last && len(contacts) > 0 {
		h.Notify(contacts, &Frame{Type: FramePresence, From: c.PK, Status: PresenceOffline})
	}
}

// addContacts remembers who pk addressed so they learn when it goes offline.
func (h *Hub) addContacts(pk string, to []string) {
	s := h.shard(pk)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.keys[pk]
	if !ok {
		return
	}
	for _, other := range to {
		if other != pk {
			e.contacts[other] = struct{}{}
		}
	}
}

// connections returns a snapshot of pk's live connections.
func (h *Hub) connections(pk string) []*Conn {
	s := h.shard(pk)
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.keys[pk]
	if !ok {
		return nil
	}
	out := make([]*Conn, len(e.conns))
	copy(out, e.conns)
	return out
}

func (h *Hub) all() []*Conn {
	var out []*Conn
	for i := range h.shards {
		s := &h.shards[i]
		s.mu.RLock()
		for _, e := range s.keys {
			out = append(out, e.conns...)
		}
		s.mu.RUnlock()
	}
	return out
}

func (h *Hub) Online(pk string) bool {
	return len(h.connections(pk)) > 0
}

// Count returns the number of live connections for pk.
func (h *Hub) Count(pk string) int {
	return len(h.connections(pk))
}

// Notify fans f out to every live connection of each key. Offline keys are
// skipped silently. It returns how many keys had at least one connection.
func (h *Hub) Notify(pks []string, f *Frame) int {
	return h.fanout(pks, f, func(*Conn) bool { return true })
}

// PushEnvelope delivers a stored envelope to the capable connections of each
// recipient. Companions are skipped since they cannot decrypt.
func (h *Hub) PushEnvelope(recipients []string, env *envelope.Envelope) int {
	return h.fanout(recipients, &Frame{Type: FrameMessage, MessageID: env.ID, Envelope: env},
		func(c *Conn) bool { return c.Role.Capable() })
}

func (h *Hub) fanout(pks []string, f *Frame, match func(*Conn) bool) int {
	b, err := f.encode()
	if err != nil {
		h.logger.Error("failed to encode frame", "type", f.Type, "err", err)
		return 0
	}
	reached := 0
	for _, pk := range pks {
		hit := false
		for _, c := range h.connections(pk) {
			if match(c) && c.Send(b) {
				hit = true
			}
		}
		if hit {
			reached++
		}
	}
	return reached
}

// CloseAll drops every connection, used on shutdown.
func (h *Hub) CloseAll() {
	for _, c := range h.all() {
		c.Close()
	}
}
