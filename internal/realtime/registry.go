package realtime

import (
	"sync"
	"time"
)

// Conn is a live realtime connection subscribed to one project.
type Conn struct {
	ID        string
	ProjectID string
	UserID    string

	transport Transport
	lastPing  time.Time
}

// NewConn wraps a transport as a registrable connection.
func NewConn(id, projectID, userID string, t Transport) *Conn {
	return &Conn{ID: id, ProjectID: projectID, UserID: userID, transport: t, lastPing: time.Now()}
}

// Registry tracks live connections keyed by connection id. It is an
// injectable component, not a package-level singleton, so tests can run
// independent registries side by side.
type Registry struct {
	mu    sync.Mutex
	conns map[string]*Conn
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*Conn)}
}

// Add registers a connection. The caller owns wiring transport close and
// error notifications back to Remove (the WS read pump and SSE handler do
// this), so a connection cannot outlive its transport here.
func (r *Registry) Add(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c.ID] = c
}

// Remove closes the connection's transport and deletes the entry.
// Idempotent: a second call for the same id finds nothing and does not
// double-close.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	c, ok := r.conns[id]
	if ok {
		delete(r.conns, id)
	}
	r.mu.Unlock()
	if ok {
		_ = c.transport.Close()
	}
}

// Touch records liveness for a connection (pong received or probe
// delivered).
func (r *Registry) Touch(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.conns[id]; ok {
		c.lastPing = time.Now()
	}
}

// Count returns the total number of registered connections.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// CountFor returns the number of connections subscribed to a project.
func (r *Registry) CountFor(projectID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.conns {
		if c.ProjectID == projectID {
			n++
		}
	}
	return n
}

// snapshot returns the current connections so iteration never holds the
// lock across transport writes.
func (r *Registry) snapshot() []*Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Conn, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out
}
