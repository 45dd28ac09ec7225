package realtime

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ClientState names the client adapter's connection lifecycle phase.
type ClientState string

const (
	StateDisconnected ClientState = "disconnected"
	StateConnecting   ClientState = "connecting"
	StateConnected    ClientState = "connected"
	StateReconnecting ClientState = "reconnecting"
)

const (
	reconnectDelay       = 5 * time.Second
	maxReconnectAttempts = 5
	clientEventBuffer    = 64
)

// Client subscribes to a project's event stream. It prefers WebSocket and
// falls back to SSE after repeated handshake failures; once on SSE it stays
// there for the life of the connection. Heartbeat frames are consumed as
// liveness and never surface on Events.
type Client struct {
	baseURL string
	token   string
	http    *http.Client

	retryDelay  time.Duration
	maxAttempts int

	mu     sync.Mutex
	state  ClientState
	cancel context.CancelFunc
	done   chan struct{}
	events chan Event
}

// NewClient creates a client adapter for the given server origin (for
// example "http://localhost:8080") authenticating with a session token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		token:       token,
		http:        &http.Client{},
		retryDelay:  reconnectDelay,
		maxAttempts: maxReconnectAttempts,
		state:       StateDisconnected,
	}
}

// State returns the current lifecycle phase.
func (c *Client) State() ClientState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Events returns the stream of project events for the active connection.
// The channel is replaced by Connect and closed when the connection ends.
func (c *Client) Events() <-chan Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events
}

func (c *Client) setState(s ClientState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Connect subscribes to projectID, tearing down any previous subscription
// first. It returns once the connection loop is running; delivery begins on
// Events.
func (c *Client) Connect(ctx context.Context, projectID string) {
	c.Disconnect()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	events := make(chan Event, clientEventBuffer)

	c.mu.Lock()
	c.cancel = cancel
	c.done = done
	c.events = events
	c.state = StateConnecting
	c.mu.Unlock()

	go func() {
		defer close(done)
		defer close(events)
		defer c.setState(StateDisconnected)
		c.run(runCtx, projectID, events)
	}()
}

// Disconnect tears down the active connection and waits for its goroutine
// to finish. Safe to call at any time, in any state.
func (c *Client) Disconnect() {
	c.mu.Lock()
	cancel := c.cancel
	done := c.done
	c.cancel = nil
	c.done = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// run drives the reconnect loop. WebSocket dials back off linearly; after
// maxAttempts consecutive failed opens the client switches to SSE and does
// not try WebSocket again. A successful open resets the failure budget, so a
// transient drop hours into a subscription redials WebSocket rather than
// counting toward the fallback.
func (c *Client) run(ctx context.Context, projectID string, events chan<- Event) {
	attempts := 0
	for {
		if ctx.Err() != nil {
			return
		}
		if attempts >= c.maxAttempts {
			log.Printf("realtime client: websocket unavailable after %d attempts, using sse", attempts)
			c.runSSE(ctx, projectID, events)
			return
		}
		if attempts > 0 {
			c.setState(StateReconnecting)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(attempts) * c.retryDelay):
			}
		}

		opened, err := c.runWS(ctx, projectID, events)
		if ctx.Err() != nil {
			return
		}
		if opened {
			attempts = 0
		}
		if err != nil {
			log.Printf("realtime client: websocket attempt %d: %v", attempts+1, err)
		}
		attempts++
	}
}

// runWS dials and drains one WebSocket connection. It reports whether the
// dial succeeded; only consecutive failed opens count toward the SSE
// fallback.
func (c *Client) runWS(ctx context.Context, projectID string, events chan<- Event) (bool, error) {
	u, err := c.wsURL(projectID)
	if err != nil {
		return false, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, u, nil)
	if err != nil {
		if resp != nil {
			return false, fmt.Errorf("dial %s: %w (status %d)", u, err, resp.StatusCode)
		}
		return false, fmt.Errorf("dial %s: %w", u, err)
	}
	defer conn.Close()

	c.setState(StateConnected)

	// Close handshake on teardown so the server sees a clean departure
	// rather than waiting for a failed heartbeat.
	go func() {
		<-ctx.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return true, nil
			}
			return true, fmt.Errorf("read: %w", err)
		}
		c.deliver(ctx, data, events)
	}
}

// runSSE holds the event-stream fallback open, reconnecting with a fixed
// delay until ctx ends.
func (c *Client) runSSE(ctx context.Context, projectID string, events chan<- Event) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.setState(StateConnecting)
		if err := c.streamSSE(ctx, projectID, events); err != nil && ctx.Err() == nil {
			log.Printf("realtime client: sse stream: %v", err)
		}
		if ctx.Err() != nil {
			return
		}
		c.setState(StateReconnecting)
		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (c *Client) streamSSE(ctx context.Context, projectID string, events chan<- Event) error {
	u := fmt.Sprintf("%s/api/projects/%s/realtime", c.baseURL, url.PathEscape(projectID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.AddCookie(&http.Cookie{Name: "session", Value: c.token})

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sse handshake: status %d", resp.StatusCode)
	}

	c.setState(StateConnected)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		payload, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		c.deliver(ctx, []byte(payload), events)
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// deliver decodes a wire frame and forwards it, swallowing heartbeats and
// malformed payloads.
func (c *Client) deliver(ctx context.Context, data []byte, events chan<- Event) {
	var evt Event
	if err := json.Unmarshal(data, &evt); err != nil {
		log.Printf("realtime client: decode event: %v", err)
		return
	}
	if evt.Type == EventHeartbeat {
		return
	}
	select {
	case events <- evt:
	case <-ctx.Done():
	}
}

func (c *Client) wsURL(projectID string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/ws"
	q := u.Query()
	q.Set("projectId", projectID)
	q.Set("session", c.token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
