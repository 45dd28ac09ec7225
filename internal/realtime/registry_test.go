package realtime

import (
	"errors"
	"sync"
	"testing"
)

// fakeTransport records sends and can be told to fail.
type fakeTransport struct {
	mu       sync.Mutex
	sent     [][]byte
	sendErr  error
	closed   int
	closeErr error
}

func (t *fakeTransport) Send(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sendErr != nil {
		return t.sendErr
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	t.sent = append(t.sent, cp)
	return nil
}

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed++
	return t.closeErr
}

func (t *fakeTransport) sentCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sent)
}

func (t *fakeTransport) closeCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *fakeTransport) failSends() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sendErr = errors.New("transport broken")
}

func TestRegistryAddRemove(t *testing.T) {
	reg := NewRegistry()
	tr := &fakeTransport{}
	reg.Add(NewConn("c1", "p1", "u1", tr))

	if reg.Count() != 1 {
		t.Fatalf("expected 1 connection, got %d", reg.Count())
	}

	reg.Remove("c1")
	if reg.Count() != 0 {
		t.Fatalf("expected 0 connections, got %d", reg.Count())
	}
	if tr.closeCount() != 1 {
		t.Fatalf("remove should close the transport once, got %d", tr.closeCount())
	}

	// Second removal finds nothing and must not close again.
	reg.Remove("c1")
	if tr.closeCount() != 1 {
		t.Fatalf("idempotent remove must not double close, got %d", tr.closeCount())
	}
}

func TestRegistryRemoveUnknownID(t *testing.T) {
	reg := NewRegistry()
	reg.Remove("never-registered")
	if reg.Count() != 0 {
		t.Fatal("removing an unknown id must be a no-op")
	}
}

func TestRegistryCountFor(t *testing.T) {
	reg := NewRegistry()
	reg.Add(NewConn("c1", "p1", "u1", &fakeTransport{}))
	reg.Add(NewConn("c2", "p1", "u2", &fakeTransport{}))
	reg.Add(NewConn("c3", "p2", "u1", &fakeTransport{}))

	if got := reg.CountFor("p1"); got != 2 {
		t.Errorf("expected 2 connections on p1, got %d", got)
	}
	if got := reg.CountFor("p2"); got != 1 {
		t.Errorf("expected 1 connection on p2, got %d", got)
	}
	if got := reg.CountFor("p3"); got != 0 {
		t.Errorf("expected 0 connections on p3, got %d", got)
	}
}

func TestRegistriesAreIndependent(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()
	a.Add(NewConn("c1", "p1", "u1", &fakeTransport{}))

	if b.Count() != 0 {
		t.Error("registries must not share state")
	}
}
