// Package stream implements the connection manager (C5): the registry of
// live StreamConnection records, keep-alive, and timeout-based eviction,
// grounded on the teacher's session-table locking style
// (viant-jsonrpc/transport/server/base) and the spec's Cloud Run request
// timeout.
package stream

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Connection is a single live SSE/Streamable stream registration.
type Connection struct {
	ID          string
	ClientIP    string
	CreatedAt   time.Time
	LastPing    time.Time
	Credentials map[string]string
	Active      bool
}

// Manager tracks StreamConnection records keyed by connection ID.
type Manager struct {
	mu            sync.Mutex
	connections   map[string]*Connection
	streamTimeout time.Duration

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewManager constructs a Manager with the given per-stream age limit.
func NewManager(streamTimeout time.Duration) *Manager {
	return &Manager{
		connections:   make(map[string]*Connection),
		streamTimeout: streamTimeout,
		stopCh:        make(chan struct{}),
	}
}

// StartSweep launches a background goroutine evicting expired connections
// every interval.
func (m *Manager) StartSweep(interval time.Duration) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.Sweep()
			case <-m.stopCh:
				return
			}
		}
	}()
}

// Close stops the sweep goroutine, if running.
func (m *Manager) Close() {
	select {
	case <-m.stopCh:
	default:
		close(m.stopCh)
	}
	m.wg.Wait()
}

// Connect registers a new connection and returns its ID.
func (m *Manager) Connect(clientIP string, creds map[string]string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	now := time.Now()
	m.connections[id] = &Connection{
		ID:          id,
		ClientIP:    clientIP,
		CreatedAt:   now,
		LastPing:    now,
		Credentials: creds,
		Active:      true,
	}
	return id
}

// Disconnect removes a connection outright.
func (m *Manager) Disconnect(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.connections, id)
}

func (m *Manager) expired(c *Connection, now time.Time) bool {
	return !c.Active || now.Sub(c.CreatedAt) > m.streamTimeout
}

// Ping updates last-ping for id. It returns false (and evicts the
// connection) if the connection is missing, inactive, or expired.
func (m *Manager) Ping(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.connections[id]
	if !ok {
		return false
	}
	now := time.Now()
	if m.expired(c, now) {
		delete(m.connections, id)
		return false
	}
	c.LastPing = now
	return true
}

// Sweep disconnects every connection whose age exceeds streamTimeout or
// that has gone inactive, returning the count removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	now := time.Now()
	for id, c := range m.connections {
		if m.expired(c, now) {
			delete(m.connections, id)
			removed++
		}
	}
	return removed
}

// ActiveCount returns the number of tracked connections.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.connections)
}
