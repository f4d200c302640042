package repository

import (
	"bytes"
	"context"
	"time"

	models "gnsnode/internal/pairing/model"

	"github.com/google/uuid"
	"github.com/sasha-s/go-deadlock"
)

type MemoryRepository struct {
	mu       deadlock.RWMutex
	sessions map[uuid.UUID]models.Session
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[uuid.UUID]models.Session)}
}

func (m *MemoryRepository) CreateSession(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.Status == "" {
		s.Status = models.StatusPending
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	m.sessions[s.ID] = *s
	return nil
}

func (m *MemoryRepository) GetSession(_ context.Context, id uuid.UUID) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryRepository) GetSessionByTokenHash(_ context.Context, hash []byte) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		if len(s.TokenHash) > 0 && bytes.Equal(s.TokenHash, hash) {
			return &s, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) ApproveSession(_ context.Context, s *models.Session, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.sessions[s.ID]
	if !ok || cur.Status != models.StatusPending || !now.Before(cur.ChallengeExpiresAt) {
		return ErrConflict
	}
	cur.Status = s.Status
	cur.PkRoot = s.PkRoot
	cur.TokenHash = s.TokenHash
	cur.PendingToken = s.PendingToken
	cur.ApprovedAt = s.ApprovedAt
	cur.SessionExpiresAt = s.SessionExpiresAt
	m.sessions[s.ID] = cur
	return nil
}

func (m *MemoryRepository) TakePendingToken(_ context.Context, id uuid.UUID) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.PendingToken == nil {
		return "", ErrNotFound
	}
	token := *s.PendingToken
	s.PendingToken = nil
	m.sessions[id] = s
	return token, nil
}

func (m *MemoryRepository) RevokeSession(_ context.Context, id uuid.UUID, pk string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.PkRoot == nil || *s.PkRoot != pk || s.Status == models.StatusRevoked {
		return false, nil
	}
	s.Status = models.StatusRevoked
	s.RevokedAt = &at
	s.PendingToken = nil
	m.sessions[id] = s
	return true, nil
}

func (m *MemoryRepository) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		pendingLapsed := s.Status == models.StatusPending && !now.Before(s.ChallengeExpiresAt)
		sessionLapsed := s.SessionExpiresAt != nil && !now.Before(*s.SessionExpiresAt)
		if pendingLapsed || sessionLapsed || s.Status == models.StatusRevoked {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}
