// Package session carries pending-parameter state across conversation
// turns. The conversation manager itself lives outside this module;
// this package only implements the contract surface a host needs to
// resume a partially-bound action across turns: which parameters are
// already known and which are still missing.
package session

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"sxlrun/internal/exec"
)

// PendingState describes one action invocation awaiting the rest of its
// parameters from further conversation turns.
type PendingState struct {
	ActionID string
	Known    map[string]json.RawMessage
	Missing  []string
}

// Done reports whether every parameter has now been supplied.
func (p *PendingState) Done() bool {
	return len(p.Missing) == 0
}

// Session is one conversation's accumulated state: its execution context
// (carried forward so producesContext values survive across turns) and
// at most one PendingState awaiting completion.
type Session struct {
	ID        string
	Domain    string
	Context   *exec.ExecutionContext
	Pending   *PendingState
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Manager holds sessions in memory for the lifetime of the process.
// A host that needs durability wraps Manager rather than this package
// growing persistence of its own.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager returns an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: map[string]*Session{}}
}

// GetOrCreate returns the session for id, creating one (with a
// freshly-generated id if id is empty) if none exists yet.
func (m *Manager) GetOrCreate(id, domain string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	}
	if s, ok := m.sessions[id]; ok {
		return s
	}
	s := &Session{
		ID:        id,
		Domain:    domain,
		Context:   exec.NewExecutionContext(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.sessions[id] = s
	return s
}

// Get returns the session for id, or ok=false.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// SetPending installs a new PendingState on the session, replacing any
// prior one (a session holds at most one in-flight action awaiting
// completion).
func (m *Manager) SetPending(id string, pending *PendingState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.Pending = pending
		s.UpdatedAt = time.Now()
	}
}

// Advance supplies newly-known parameter values for the session's
// pending action, removing them from Missing. It returns the updated
// PendingState (nil if there was none) and whether it is now Done.
func (m *Manager) Advance(id string, newValues map[string]json.RawMessage) (*PendingState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok || s.Pending == nil {
		return nil, true
	}

	if s.Pending.Known == nil {
		s.Pending.Known = map[string]json.RawMessage{}
	}
	stillMissing := make([]string, 0, len(s.Pending.Missing))
	for _, name := range s.Pending.Missing {
		if v, supplied := newValues[name]; supplied {
			s.Pending.Known[name] = v
			continue
		}
		stillMissing = append(stillMissing, name)
	}
	s.Pending.Missing = stillMissing
	s.UpdatedAt = time.Now()

	if s.Pending.Done() {
		done := s.Pending
		s.Pending = nil
		return done, true
	}
	return s.Pending, false
}

// CleanupExpired removes sessions whose last update is older than maxAge.
func (m *Manager) CleanupExpired(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, s := range m.sessions {
		if s.UpdatedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}
