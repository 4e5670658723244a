// Package session implements the gateway's session table (C4): minting and
// validating 32-character visible-ASCII session IDs, per-session state and
// the legacy bridging queue, grounded on mcp_server/transport/session.py's
// SessionManager and restructured around Go's mutex + channel primitives
// per the "dataclasses with factory defaults" redesign note (plain struct,
// mutation guarded by the owning manager's lock).
package session

import (
	"context"
	"sync"
	"time"
)

// Session is a single authenticated MCP session record.
type Session struct {
	ID           string
	CreatedAt    time.Time
	LastActivity time.Time
	AuthInfo     map[string]string
	State        map[string]interface{}
	Active       bool

	queue chan interface{}
}

const legacyQueueCapacity = 64

// Manager owns the session table. All mutating operations are serialised
// by a single mutex, matching the spec's "critical sections are strictly
// O(1) per operation except cleanupExpired" concurrency model.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	maxAge   time.Duration

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewManager constructs a Manager with the given session max age. It does
// not start a background sweep; callers that want periodic cleanup call
// StartCleanup explicitly (kept separate so tests can call
// CleanupExpired directly without waiting on a real ticker).
func NewManager(maxAge time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		maxAge:   maxAge,
		stopCh:   make(chan struct{}),
	}
}

// StartCleanup launches a background goroutine that calls CleanupExpired
// every interval until Close is called.
func (m *Manager) StartCleanup(interval time.Duration) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.CleanupExpired()
			case <-m.stopCh:
				return
			}
		}
	}()
}

// Close stops the background sweep, if running.
func (m *Manager) Close() {
	select {
	case <-m.stopCh:
	default:
		close(m.stopCh)
	}
	m.wg.Wait()
}

// Create mints a new session, retrying on the negligible chance of an ID
// collision, and returns its ID.
func (m *Manager) Create(authInfo map[string]string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for {
		id, err := generateID()
		if err != nil {
			return "", err
		}
		if _, exists := m.sessions[id]; exists {
			continue
		}
		now := time.Now()
		m.sessions[id] = &Session{
			ID:           id,
			CreatedAt:    now,
			LastActivity: now,
			AuthInfo:     authInfo,
			State:        make(map[string]interface{}),
			Active:       true,
			queue:        make(chan interface{}, legacyQueueCapacity),
		}
		return id, nil
	}
}

// Validate reports whether id names a live, non-expired session. An
// expired session is removed as a side effect.
func (m *Manager) Validate(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return false
	}
	if !s.Active || time.Since(s.CreatedAt) > m.maxAge || time.Since(s.LastActivity) > m.maxAge {
		s.Active = false
		delete(m.sessions, id)
		return false
	}
	return true
}

// Get returns a copy of the session record and touches last-activity, or
// ok=false if unknown.
func (m *Manager) Get(id string) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return Session{}, false
	}
	s.LastActivity = time.Now()
	return *s, true
}

// UpdateActivity bumps last-activity for id, if it exists.
func (m *Manager) UpdateActivity(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.LastActivity = time.Now()
	}
}

// SetState sets a key in the session's arbitrary state map.
func (m *Manager) SetState(id, key string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.State[key] = value
	}
}

// GetState reads a key from the session's state map, returning def if
// absent.
func (m *Manager) GetState(id, key string, def interface{}) interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return def
	}
	v, ok := s.State[key]
	if !ok {
		return def
	}
	return v
}

// Remove deletes a session outright, returning whether it existed.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

// CleanupExpired scans the table for sessions past their age or inactivity
// limit (or already inactive) and removes them, returning the count
// removed.
func (m *Manager) CleanupExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	now := time.Now()
	for id, s := range m.sessions {
		if !s.Active || now.Sub(s.CreatedAt) > m.maxAge || now.Sub(s.LastActivity) > m.maxAge {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Enqueue pushes msg onto the session's legacy bridging queue, returning
// false if the session is unknown or the queue is full.
func (m *Manager) Enqueue(id string, msg interface{}) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case s.queue <- msg:
		return true
	default:
		return false
	}
}

// WaitNext blocks up to timeout for the next queued message, returning
// nil if the session is unknown, the wait times out, or ctx is cancelled.
func (m *Manager) WaitNext(ctx context.Context, id string, timeout time.Duration) interface{} {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-s.queue:
		return msg
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return nil
	}
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
