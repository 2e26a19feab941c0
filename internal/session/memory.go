package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. Sessions expire ttl after
// their last write; expired ones are invisible and removed by Sweep.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*memorySession
	ttl      time.Duration
	now      func() time.Time
}

type memorySession struct {
	values    map[string]string
	expiresAt time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*memorySession),
		ttl:      ttl,
		now:      time.Now,
	}
}

// live returns the session if present and unexpired. Caller holds mu.
func (m *MemoryStore) live(sid string) *memorySession {
	s, ok := m.sessions[sid]
	if !ok {
		return nil
	}
	if m.now().After(s.expiresAt) {
		delete(m.sessions, sid)
		return nil
	}
	return s
}

func (m *MemoryStore) Get(_ context.Context, sid, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.live(sid)
	if s == nil {
		return "", false, nil
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, sid, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.live(sid)
	if s == nil {
		s = &memorySession{values: make(map[string]string)}
		m.sessions[sid] = s
	}
	s.values[key] = value
	s.expiresAt = m.now().Add(m.ttl)
	return nil
}

func (m *MemoryStore) Take(_ context.Context, sid, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.live(sid)
	if s == nil {
		return "", false, nil
	}
	v, ok := s.values[key]
	delete(s.values, key)
	return v, ok, nil
}

func (m *MemoryStore) Remove(_ context.Context, sid, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s := m.live(sid); s != nil {
		delete(s.values, key)
	}
	return nil
}

func (m *MemoryStore) Destroy(_ context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sid)
	return nil
}

// Sweep deletes expired sessions and returns how many were removed.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for sid, s := range m.sessions {
		if now.After(s.expiresAt) {
			delete(m.sessions, sid)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
