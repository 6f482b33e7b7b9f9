package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store persists session edit state across the refresh/reconnect boundary.
type Store interface {
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// MemoryStore is the default single-process store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	ttl      time.Duration
}

// NewMemoryStore creates a memory store. Sessions idle longer than ttl are
// dropped by PurgeExpired; a zero ttl disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: map[uuid.UUID]*Session{},
		ttl:      ttl,
	}
}

// Get returns the session with the given id.
func (m *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNoSession
	}
	return s, nil
}

// Put stores or replaces a session.
func (m *MemoryStore) Put(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

// Delete removes a session. Deleting an absent session is a no-op.
func (m *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// PurgeExpired drops sessions idle past the TTL and returns how many were
// removed.
func (m *MemoryStore) PurgeExpired(now time.Time) int {
	if m.ttl <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if now.Sub(s.UpdatedAt) > m.ttl {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}
