package auth

import (
	"context"
	"sync"

	"github.com/oybek/wellness/entity"
)

type MemoryUserStore struct {
	mu      sync.RWMutex
	byID    map[string]entity.User
	byEmail map[string]string
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		byID:    make(map[string]entity.User),
		byEmail: make(map[string]string),
	}
}

func (m *MemoryUserStore) CreateUser(_ context.Context, u entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byEmail[u.Email]; ok {
		return ErrEmailTaken
	}
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u.ID
	return nil
}

func (m *MemoryUserStore) FindUserByEmail(_ context.Context, email string) (entity.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[email]
	if !ok {
		return entity.User{}, ErrUserNotFound
	}
	return m.byID[id], nil
}

func (m *MemoryUserStore) FindUserByID(_ context.Context, id string) (entity.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.byID[id]
	if !ok {
		return entity.User{}, ErrUserNotFound
	}
	return u, nil
}

func (m *MemoryUserStore) DeleteUser(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.byID[id]; ok {
		delete(m.byEmail, u.Email)
		delete(m.byID, id)
	}
}
