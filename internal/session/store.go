package session

import (
	"fmt"
	"sort"
	"sync"

	"github.com/osse101/IdleCultivation_Go/internal/domain"
)

// Store is the table of online sessions keyed by user id
type Store interface {
	Get(userID string) (domain.Session, bool)
	// Create fails with domain.ErrSessionExists when the user already has one
	Create(s domain.Session) error
	Update(s domain.Session)
	Delete(userID string) (domain.Session, bool)
	List() []domain.Session
	Count() int
}

// MemoryStore keeps sessions in process memory. Values are copied in and
// out so callers never share a session struct.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

// NewMemoryStore creates an empty session table
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]domain.Session)}
}

// Get returns a copy of the user's session
func (m *MemoryStore) Get(userID string) (domain.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	return s, ok
}

// Create inserts a session, failing with domain.ErrSessionExists on a duplicate
func (m *MemoryStore) Create(s domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.UserID]; ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionExists, s.UserID)
	}
	m.sessions[s.UserID] = s
	return nil
}

// Update replaces an existing session; unknown users are ignored
func (m *MemoryStore) Update(s domain.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.UserID]; ok {
		m.sessions[s.UserID] = s
	}
}

// Delete removes the user's session and returns it
func (m *MemoryStore) Delete(userID string) (domain.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	delete(m.sessions, userID)
	return s, ok
}

// List returns sessions ordered by login time
func (m *MemoryStore) List() []domain.Session {
	m.mu.RLock()
	out := make([]domain.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].LoginTime.Before(out[j].LoginTime) })
	return out
}

// Count returns the number of online sessions
func (m *MemoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
