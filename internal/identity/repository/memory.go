package repository

import (
	"context"
	"sort"
	"time"

	models "gnsnode/internal/identity/model"

	"github.com/sasha-s/go-deadlock"
)

type epochKey struct {
	pk    string
	index int
}

// MemoryRepository keeps the ledger in process. It enforces the same
// uniqueness rules as the Postgres schema and returns copies, never
// pointers into its maps.
type MemoryRepository struct {
	mu           deadlock.RWMutex
	records      map[string]models.Record
	aliases      map[string]models.Alias
	reservations map[string]models.Reservation
	epochs       map[epochKey]models.Epoch
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records:      make(map[string]models.Record),
		aliases:      make(map[string]models.Alias),
		reservations: make(map[string]models.Reservation),
		epochs:       make(map[epochKey]models.Epoch),
	}
}

func (m *MemoryRepository) GetRecord(_ context.Context, pk string) (*models.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[pk]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (m *MemoryRepository) UpsertRecordIfNewer(_ context.Context, rec *models.Record) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.records[rec.PkRoot]; ok && !cur.UpdatedAt.Before(rec.UpdatedAt) {
		return false, nil
	}
	m.records[rec.PkRoot] = *rec
	return true, nil
}

func (m *MemoryRepository) ListRecordsSince(_ context.Context, since time.Time, limit int) ([]models.Record, error) {
	m.mu.RLock()
	out := make([]models.Record, 0)
	for _, r := range m.records {
		if r.SyncedAt.After(since) {
			out = append(out, r)
		}
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SyncedAt.Equal(out[j].SyncedAt) {
			return out[i].SyncedAt.Before(out[j].SyncedAt)
		}
		return out[i].PkRoot < out[j].PkRoot
	})
	return truncate(out, limit), nil
}

func (m *MemoryRepository) GetAlias(_ context.Context, handle string) (*models.Alias, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.aliases[handle]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *MemoryRepository) CreateAlias(_ context.Context, alias *models.Alias) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.aliases[alias.Handle]; ok {
		return ErrDuplicate
	}
	if alias.CreatedAt.IsZero() {
		alias.CreatedAt = time.Now().UTC()
	}
	m.aliases[alias.Handle] = *alias
	delete(m.reservations, alias.Handle)
	return nil
}

func (m *MemoryRepository) ListAliasesSince(_ context.Context, since time.Time, limit int) ([]models.Alias, error) {
	m.mu.RLock()
	out := make([]models.Alias, 0)
	for _, a := range m.aliases {
		if a.SyncedAt.After(since) {
			out = append(out, a)
		}
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SyncedAt.Equal(out[j].SyncedAt) {
			return out[i].SyncedAt.Before(out[j].SyncedAt)
		}
		return out[i].Handle < out[j].Handle
	})
	return truncate(out, limit), nil
}

func (m *MemoryRepository) GetReservation(_ context.Context, handle string) (*models.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reservations[handle]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *MemoryRepository) CreateReservation(_ context.Context, res *models.Reservation, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.reservations[res.Handle]; ok && !cur.Expired(now) {
		return ErrDuplicate
	}
	m.reservations[res.Handle] = *res
	return nil
}

func (m *MemoryRepository) DeleteExpiredReservations(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for h, r := range m.reservations {
		if r.Expired(now) {
			delete(m.reservations, h)
			n++
		}
	}
	return n, nil
}

func (m *MemoryRepository) GetEpoch(_ context.Context, pk string, index int) (*models.Epoch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.epochs[epochKey{pk, index}]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (m *MemoryRepository) ListEpochs(_ context.Context, pk string) ([]models.Epoch, error) {
	m.mu.RLock()
	out := make([]models.Epoch, 0)
	for k, e := range m.epochs {
		if k.pk == pk {
			out = append(out, e)
		}
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].EpochIndex < out[j].EpochIndex })
	return out, nil
}

func (m *MemoryRepository) CreateEpoch(_ context.Context, epoch *models.Epoch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := epochKey{epoch.PkRoot, epoch.EpochIndex}
	if _, ok := m.epochs[k]; ok {
		return ErrDuplicate
	}
	m.epochs[k] = *epoch
	return nil
}

func (m *MemoryRepository) ListEpochsSince(_ context.Context, since time.Time, limit int) ([]models.Epoch, error) {
	m.mu.RLock()
	out := make([]models.Epoch, 0)
	for _, e := range m.epochs {
		if e.SyncedAt.After(since) {
			out = append(out, e)
		}
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.SyncedAt.Equal(b.SyncedAt) {
			return a.SyncedAt.Before(b.SyncedAt)
		}
		if a.PkRoot != b.PkRoot {
			return a.PkRoot < b.PkRoot
		}
		return a.EpochIndex < b.EpochIndex
	})
	return truncate(out, limit), nil
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
