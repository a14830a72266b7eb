package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rl1809/counter-pos/internal/core/domain"
)

// MemorySessionStore keeps open bills in process memory; used when Redis is
// not configured.
type MemorySessionStore struct {
	mu          sync.Mutex
	sessions    map[string]*domain.BillSession
	savedAt     map[string]time.Time
	idempotency map[string]struct{}
	now         func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions:    make(map[string]*domain.BillSession),
		savedAt:     make(map[string]time.Time),
		idempotency: make(map[string]struct{}),
		now:         time.Now,
	}
}

func (m *MemorySessionStore) SaveSession(ctx context.Context, s *domain.BillSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s.Clone()
	m.savedAt[s.ID] = m.now()
	return nil
}

func (m *MemorySessionStore) LoadSession(ctx context.Context, id string) (*domain.BillSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("bill %s: %w", id, domain.ErrSessionNotFound)
	}
	return s.Clone(), nil
}

func (m *MemorySessionStore) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	delete(m.savedAt, id)
	return nil
}

func (m *MemorySessionStore) IdleSessions(ctx context.Context, savedBefore time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, at := range m.savedAt {
		if at.Before(savedBefore) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MemorySessionStore) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.idempotency[key]; ok {
		return false, nil
	}
	m.idempotency[key] = struct{}{}
	return true, nil
}
