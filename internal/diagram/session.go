package diagram

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matthewbaird/formforge/internal/er"
)

var (
	// ErrNoGraph is returned for a layout request before any load.
	ErrNoGraph = errors.New("diagram: no graph loaded")
	// ErrStale is returned for a request numbered at or below the latest.
	ErrStale = errors.New("diagram: request superseded")
)

// Session holds the per-connection diagram state.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	mu     sync.Mutex
	graph  er.Graph
	loaded bool
	latest int64
	active int64
	cancel context.CancelFunc
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{ID: uuid.New().String(), CreatedAt: time.Now()}
}

// Load replaces the session graph and cancels any layout in flight. The
// sequence numbering carries over.
func (s *Session) Load(g er.Graph) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.active = 0
	s.graph = g
	s.loaded = true
}

// Begin registers a layout request and returns its sequence number, the
// graph to lay out, and a context that is cancelled when a newer request
// begins. seq zero takes the next number.
func (s *Session) Begin(parent context.Context, seq int64, timeout time.Duration) (int64, er.Graph, context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return 0, er.Graph{}, nil, ErrNoGraph
	}
	if seq == 0 {
		seq = s.latest + 1
	}
	if seq <= s.latest {
		return seq, er.Graph{}, nil, ErrStale
	}
	s.stopLocked()
	s.latest = seq
	s.active = seq
	ctx, cancel := context.WithTimeout(parent, timeout)
	s.cancel = cancel
	return seq, s.graph, ctx, nil
}

// Deliver runs send if seq is still the active request and reports whether
// it ran. The check and send happen under the session lock. A delivered
// request is no longer active.
func (s *Session) Deliver(seq int64, send func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq == 0 || seq != s.active {
		return false
	}
	s.active = 0
	s.stopLocked()
	send()
	return true
}

// Close cancels any layout in flight.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Session) stopLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Manager tracks the open sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Create creates a new session and returns it.
func (m *Manager) Create() *Session {
	s := NewSession()
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get retrieves a session by ID. Returns nil if not found.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// Remove closes and deletes a session.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	s := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if s != nil {
		s.Close()
	}
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
