package catalog

import (
	"context"
	"sync"

	apperrors "rollcall.io/application/appErrors"
	"rollcall.io/entities"
)

// MemoryStore is a CatalogStore kept in process memory, in enrollment order.
type MemoryStore struct {
	mu      sync.Mutex
	entries []entities.EnrolledIdentity
}

func NewMemoryStore(seed ...entities.EnrolledIdentity) *MemoryStore {
	store := &MemoryStore{}
	for _, identity := range seed {
		store.entries = append(store.entries, identity.Clone())
	}
	return store
}

func (s *MemoryStore) All(ctx context.Context) ([]entities.EnrolledIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.EnrolledIdentity, len(s.entries))
	for i, entry := range s.entries {
		out[i] = entry.Clone()
	}
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*entities.EnrolledIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.entries {
		if entry.ID == id {
			found := entry.Clone()
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *MemoryStore) Upsert(ctx context.Context, identity entities.EnrolledIdentity) (*entities.EnrolledIdentity, error) {
	parsed := identity.ParseModel().(*entities.EnrolledIdentity)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if s.entries[i].ID == parsed.ID {
			parsed.CreatedAt = s.entries[i].CreatedAt
			s.entries[i] = parsed.Clone()
			return parsed, nil
		}
	}
	s.entries = append(s.entries, parsed.Clone())
	return parsed, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}
