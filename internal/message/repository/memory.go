package repository

import (
	"context"
	"sort"
	"time"

	models "gnsnode/internal/message/model"

	"github.com/google/uuid"
	"github.com/sasha-s/go-deadlock"
)

type deliveryKey struct {
	id uuid.UUID
	pk string
}

type MemoryRepository struct {
	mu         deadlock.RWMutex
	envelopes  map[uuid.UUID]models.StoredEnvelope
	deliveries map[deliveryKey]models.Delivery
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		envelopes:  make(map[uuid.UUID]models.StoredEnvelope),
		deliveries: make(map[deliveryKey]models.Delivery),
	}
}

func (m *MemoryRepository) CreateEnvelope(_ context.Context, env *models.StoredEnvelope, deliveries []models.Delivery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.envelopes[env.ID]; ok {
		return ErrDuplicate
	}
	m.envelopes[env.ID] = *env
	for _, d := range deliveries {
		if d.Status == "" {
			d.Status = models.StatusPending
		}
		m.deliveries[deliveryKey{d.EnvelopeID, d.RecipientPK}] = d
	}
	return nil
}

func (m *MemoryRepository) GetEnvelope(_ context.Context, id uuid.UUID) (*models.StoredEnvelope, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	env, ok := m.envelopes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &env, nil
}

func (m *MemoryRepository) ListPending(_ context.Context, pk string, since, now time.Time, limit int) ([]models.StoredEnvelope, error) {
	m.mu.RLock()
	type row struct {
		env models.StoredEnvelope
		at  time.Time
	}
	rows := make([]row, 0)
	for k, d := range m.deliveries {
		if k.pk != pk || d.Status != models.StatusPending || !d.ReceivedAt.After(since) {
			continue
		}
		if d.ExpiresAt != nil && !d.ExpiresAt.After(now) {
			continue
		}
		rows = append(rows, row{env: m.envelopes[k.id], at: d.ReceivedAt})
	}
	m.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].at.Equal(rows[j].at) {
			return rows[i].at.Before(rows[j].at)
		}
		return rows[i].env.ID.String() < rows[j].env.ID.String()
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]models.StoredEnvelope, len(rows))
	for i, r := range rows {
		out[i] = r.env
	}
	return out, nil
}

func (m *MemoryRepository) MarkDeliveries(_ context.Context, pk string, ids []uuid.UUID, status string, at time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, id := range ids {
		k := deliveryKey{id, pk}
		d, ok := m.deliveries[k]
		if !ok {
			continue
		}
		switch {
		case status == models.StatusDelivered && d.Status == models.StatusPending:
			d.Status = status
			d.DeliveredAt = &at
		case status == models.StatusRead && d.Status != models.StatusRead:
			d.Status = status
			d.ReadAt = &at
			if d.DeliveredAt == nil {
				d.DeliveredAt = &at
			}
		default:
			continue
		}
		m.deliveries[k] = d
		n++
	}
	return n, nil
}

func (m *MemoryRepository) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, env := range m.envelopes {
		if env.ExpiresAt == nil || env.ExpiresAt.After(now) {
			continue
		}
		delete(m.envelopes, id)
		n++
		for k := range m.deliveries {
			if k.id == id {
				delete(m.deliveries, k)
			}
		}
	}
	return n, nil
}
