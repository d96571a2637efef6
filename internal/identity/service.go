package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrConflict indicates another writer inserted the same external identifier
// first. Repositories surface it; Resolve absorbs it by re-reading.
var ErrConflict = errors.New("user already exists")

// Service resolves external identifiers to internal user records.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Resolve returns the user for the given external identifier, creating the
// record on first sight. Two concurrent calls for the same unseen identifier
// may both attempt the insert; the loser recovers by re-reading the winner's
// row, so the conflict never reaches the caller.
func (s *Service) Resolve(ctx context.Context, externalID string) (User, error) {
	if externalID == "" {
		return User{}, errors.New("external id is required")
	}

	user, err := s.repo.FindByExternalID(ctx, externalID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, fmt.Errorf("lookup user %s: %w", externalID, err)
	}

	user = User{
		ID:         uuid.NewString(),
		ExternalID: externalID,
		CreatedAt:  time.Now().UTC(),
	}
	err = s.repo.Create(ctx, user)
	if err == nil {
		return user, nil
	}
	if errors.Is(err, ErrConflict) {
		return s.repo.FindByExternalID(ctx, externalID)
	}
	return User{}, fmt.Errorf("create user %s: %w", externalID, err)
}
