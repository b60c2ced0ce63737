package store

import (
	"context"
	"sync"
	"time"

	"Mnemo/internal/models"

	"github.com/google/uuid"
)

// MemoryStore is an in-process LocalStore used in tests and for running the
// service without MongoDB. Facts are kept per user in insertion order.
type MemoryStore struct {
	mu    sync.RWMutex
	facts map[string][]*models.Fact // userID -> facts in insertion order
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{facts: make(map[string][]*models.Fact)}
}

// Scan returns copies of all facts for a user in insertion order.
func (s *MemoryStore) Scan(ctx context.Context, userID string) ([]*models.Fact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Fact, 0, len(s.facts[userID]))
	for _, f := range s.facts[userID] {
		c := *f
		out = append(out, &c)
	}
	return out, nil
}

// Insert stores a copy of the fact, assigning a MemoryID when needed.
func (s *MemoryStore) Insert(ctx context.Context, fact *models.Fact) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *fact
	if c.MemoryID == "" {
		c.MemoryID = uuid.New().String()
	}
	if c.LastUpdated.IsZero() {
		c.LastUpdated = time.Now()
	}
	s.facts[c.UserID] = append(s.facts[c.UserID], &c)
	return c.MemoryID, nil
}

// Get returns a copy of the fact with the given IDs.
func (s *MemoryStore) Get(ctx context.Context, userID, memoryID string) (*models.Fact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, f := range s.facts[userID] {
		if f.MemoryID == memoryID {
			c := *f
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

// Delete removes the fact with the given IDs.
func (s *MemoryStore) Delete(ctx context.Context, userID, memoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	facts := s.facts[userID]
	for i, f := range facts {
		if f.MemoryID == memoryID {
			s.facts[userID] = append(facts[:i], facts[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
