package repository

import (
	"context"
	"sort"
	"time"

	models "gnsnode/internal/gossip/model"
	"gnsnode/internal/identity"

	"github.com/sasha-s/go-deadlock"
)

type cursorKey struct {
	peer   string
	entity identity.EntityType
}

type MemoryRepository struct {
	mu      deadlock.RWMutex
	peers   map[string]models.PeerState
	cursors map[cursorKey]time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		peers:   make(map[string]models.PeerState),
		cursors: make(map[cursorKey]time.Time),
	}
}

func (m *MemoryRepository) ListPeers(_ context.Context) ([]models.PeerState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.PeerState, 0, len(m.peers))
	for _, p := range m.peers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ErrorCount != out[j].ErrorCount {
			return out[i].ErrorCount < out[j].ErrorCount
		}
		return out[i].Peer < out[j].Peer
	})
	return out, nil
}

func (m *MemoryRepository) GetPeer(_ context.Context, peer string) (*models.PeerState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.peers[peer]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *MemoryRepository) RecordSuccess(_ context.Context, peer string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.peers[peer]
	p.Peer = peer
	p.ErrorCount = 0
	p.LastError = ""
	p.LastAttemptAt = &at
	p.LastSuccessAt = &at
	m.peers[peer] = p
	return nil
}

func (m *MemoryRepository) RecordFailure(_ context.Context, peer string, at time.Time, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.peers[peer]
	p.Peer = peer
	p.ErrorCount++
	p.LastError = reason
	p.LastAttemptAt = &at
	m.peers[peer] = p
	return nil
}

func (m *MemoryRepository) GetCursor(_ context.Context, peer string, entity identity.EntityType) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cursors[cursorKey{peer, entity}], nil
}

func (m *MemoryRepository) SaveCursor(_ context.Context, peer string, entity identity.EntityType, since time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := cursorKey{peer, entity}
	if since.After(m.cursors[k]) {
		m.cursors[k] = since
	}
	return nil
}
