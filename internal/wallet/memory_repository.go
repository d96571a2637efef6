package wallet

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Credential
}

// NewMemoryRepository constructs an in-memory credential repository for tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Credential)}
}

func (r *memoryRepository) Get(_ context.Context, userID string) (Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cred, ok := r.storage[userID]
	if !ok {
		return Credential{}, ErrNotFound
	}
	return cred, nil
}

func (r *memoryRepository) Upsert(_ context.Context, cred Credential) (Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if existing, ok := r.storage[cred.UserID]; ok {
		cred.CreatedAt = existing.CreatedAt
	} else {
		cred.CreatedAt = now
	}
	cred.UpdatedAt = now
	r.storage[cred.UserID] = cred
	return cred, nil
}
