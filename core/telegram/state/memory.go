package state

import (
	"context"
	"sync"
	"time"
)

type memoryEntry[T any] struct {
	value   T
	expires time.Time
}

// MemoryStore is a mutex-guarded in-process Store. Sessions are lost on restart.
type MemoryStore[T any] struct {
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[int64]memoryEntry[T]
}

// NewMemoryStore builds an empty store; ttl <= 0 keeps sessions until cleared.
func NewMemoryStore[T any](ttl time.Duration) *MemoryStore[T] {
	return &MemoryStore[T]{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[int64]memoryEntry[T]),
	}
}

// Get returns the session for userID if one exists and has not expired.
func (m *MemoryStore[T]) Get(_ context.Context, userID int64) (T, bool, error) {
	m.mu.RLock()
	entry, ok := m.sessions[userID]
	m.mu.RUnlock()

	var zero T
	if !ok {
		return zero, false, nil
	}
	if !entry.expires.IsZero() && m.now().After(entry.expires) {
		m.mu.Lock()
		if cur, still := m.sessions[userID]; still && cur.expires.Equal(entry.expires) {
			delete(m.sessions, userID)
		}
		m.mu.Unlock()
		return zero, false, nil
	}
	return entry.value, true, nil
}

// Set replaces the session for userID.
func (m *MemoryStore[T]) Set(_ context.Context, userID int64, v T) error {
	entry := memoryEntry[T]{value: v}
	if m.ttl > 0 {
		entry.expires = m.now().Add(m.ttl)
	}
	m.mu.Lock()
	m.sessions[userID] = entry
	m.mu.Unlock()
	return nil
}

// Clear drops the session for userID; clearing an idle user is a no-op.
func (m *MemoryStore[T]) Clear(_ context.Context, userID int64) error {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
	return nil
}

// Len reports how many sessions are held, expired ones included.
func (m *MemoryStore[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
