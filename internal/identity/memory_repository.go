package identity

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewMemoryRepository builds an in-memory user store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[string]User)}
}

func (r *memoryRepository) Create(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.ExternalID]; exists {
		return ErrConflict
	}
	r.users[user.ExternalID] = user
	return nil
}

func (r *memoryRepository) FindByExternalID(_ context.Context, externalID string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[externalID]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}
