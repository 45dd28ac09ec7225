package realtime

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Transport is the capability a registered connection exposes to the
// broadcaster. The broadcaster never sees concrete transport types.
type Transport interface {
	Send(data []byte) error
	Close() error
}

// wsTransport wraps a gorilla WebSocket connection. Writes are serialized;
// gorilla connections support one concurrent writer.
type wsTransport struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newWSTransport(conn *websocket.Conn) *wsTransport {
	return &wsTransport{conn: conn}
}

func (t *wsTransport) Send(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t *wsTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = t.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return t.conn.Close()
}

// sseTransport frames events as text/event-stream data lines on a hijack-free
// streaming response. Close releases the handler goroutine; the response
// itself ends when the handler returns.
type sseTransport struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	closed  chan struct{}
	once    sync.Once
}

func newSSETransport(w http.ResponseWriter, flusher http.Flusher) *sseTransport {
	return &sseTransport{w: w, flusher: flusher, closed: make(chan struct{})}
}

func (t *sseTransport) Send(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	select {
	case <-t.closed:
		return fmt.Errorf("sse transport closed")
	default:
	}
	if _, err := fmt.Fprintf(t.w, "data: %s\n\n", data); err != nil {
		return err
	}
	t.flusher.Flush()
	return nil
}

func (t *sseTransport) Close() error {
	t.once.Do(func() { close(t.closed) })
	return nil
}

// Done reports transport closure to the owning handler.
func (t *sseTransport) Done() <-chan struct{} {
	return t.closed
}
