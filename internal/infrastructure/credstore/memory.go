package credstore

import (
	"context"
	"sync"

	"github.com/orderdesk/crm-console/internal/core/domain"
)

// MemStore keeps the session in process memory only. Used by tests and by
// one-shot invocations that must not leave tokens on disk.
type MemStore struct {
	mu      sync.Mutex
	current domain.StoredSession
	present bool
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Get() (domain.StoredSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.present
}

func (s *MemStore) Set(_ context.Context, rec domain.StoredSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = rec
	s.present = true
	return nil
}

func (s *MemStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = domain.StoredSession{}
	s.present = false
	return nil
}
