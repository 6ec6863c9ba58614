package lifecycle

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/oybek/wellness/entity"
)

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]entity.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]entity.Session)}
}

func clone(s entity.Session) entity.Session {
	s.Tags = append([]string{}, s.Tags...)
	return s
}

func (m *MemoryStore) Create(_ context.Context, s entity.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[s.ID]; ok {
		return fmt.Errorf("duplicate session id %q", s.ID)
	}
	m.sessions[s.ID] = clone(s)
	return nil
}

func (m *MemoryStore) Find(_ context.Context, f Filter, order Sort) ([]entity.Session, error) {
	m.mu.RLock()
	out := make([]entity.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		if f.Matches(s) {
			out = append(out, clone(s))
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := sortKey(out[i], order.Field), sortKey(out[j], order.Field)
		if a.Equal(b) {
			return out[i].ID < out[j].ID
		}
		if order.Desc {
			return a.After(b)
		}
		return a.Before(b)
	})
	return out, nil
}

func sortKey(s entity.Session, field SortField) time.Time {
	if field == SortByUpdatedAt {
		return s.UpdatedAt
	}
	return s.CreatedAt
}

// lookupLocked returns the first session matching f, going straight to the
// map entry when f names an id.
func (m *MemoryStore) lookupLocked(f Filter) (entity.Session, bool) {
	if f.ID != "" {
		s, ok := m.sessions[f.ID]
		return s, ok && f.Matches(s)
	}
	for _, s := range m.sessions {
		if f.Matches(s) {
			return s, true
		}
	}
	return entity.Session{}, false
}

func (m *MemoryStore) FindOne(_ context.Context, f Filter) (entity.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.lookupLocked(f)
	if !ok {
		return entity.Session{}, ErrNoDocument
	}
	return clone(s), nil
}

func (m *MemoryStore) UpdateOne(_ context.Context, f Filter, p Patch) (entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.lookupLocked(f)
	if !ok {
		return entity.Session{}, ErrNoDocument
	}
	s = p.Apply(s)
	m.sessions[s.ID] = s
	return clone(s), nil
}

func (m *MemoryStore) DeleteOne(_ context.Context, f Filter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.lookupLocked(f)
	if !ok {
		return ErrNoDocument
	}
	delete(m.sessions, s.ID)
	return nil
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
