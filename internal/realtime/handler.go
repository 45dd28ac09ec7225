package realtime

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"colab/internal/domain"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const maxInboundMessageSize = 8192

// SessionValidator resolves a bearer token to the owning user; implemented
// by the auth service.
type SessionValidator interface {
	UserForToken(ctx context.Context, token string) (*domain.User, *domain.Session, error)
}

// Handler authorizes realtime handshakes and registers connections. Both
// transports gate on a valid session and project membership before any
// registry insertion, so a refused handshake leaves no partial state.
type Handler struct {
	reg      *Registry
	auth     SessionValidator
	members  domain.MemberRepository
	upgrader websocket.Upgrader
}

// NewHandler creates a realtime handshake handler.
func NewHandler(reg *Registry, auth SessionValidator, members domain.MemberRepository) *Handler {
	return &Handler{
		reg:     reg,
		auth:    auth,
		members: members,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Session token + membership are the gate; the cookie-less WS
			// handshake carries credentials in the query string instead.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS handles GET /ws?projectId=...&session=... . Browser WebSocket
// handshakes cannot set custom headers, so the session token arrives as a
// query parameter.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("projectId")
	token := r.URL.Query().Get("session")
	if projectID == "" || token == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	user, _, err := h.auth.UserForToken(r.Context(), token)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	member, err := h.members.Get(r.Context(), projectID, user.ID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if member == nil {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("realtime: websocket upgrade: %v", err)
		return
	}

	conn := NewConn(uuid.NewString(), projectID, user.ID, newWSTransport(ws))
	h.reg.Add(conn)

	if data, err := json.Marshal(connectedEvent(projectID, conn.ID)); err == nil {
		if err := conn.transport.Send(data); err != nil {
			h.reg.Remove(conn.ID)
			return
		}
	}

	go h.readPump(ws, conn.ID)
}

// readPump drains the inbound side until close or error, then removes the
// connection. Inbound payloads are not part of the protocol and are
// discarded; pongs refresh liveness.
func (h *Handler) readPump(ws *websocket.Conn, connID string) {
	defer h.reg.Remove(connID)

	ws.SetReadLimit(maxInboundMessageSize)
	ws.SetPongHandler(func(string) error {
		h.reg.Touch(connID)
		return nil
	})
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("realtime: websocket read: %v", err)
			}
			return
		}
	}
}

// ServeSSE handles the event-stream fallback for an already authenticated
// member. The HTTP adapter resolves the session cookie and passes the
// caller's identity; membership is still checked here so both handshakes
// share one gate.
func (h *Handler) ServeSSE(w http.ResponseWriter, r *http.Request, projectID, userID string) {
	member, err := h.members.Get(r.Context(), projectID, userID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if member == nil {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	transport := newSSETransport(w, flusher)
	conn := NewConn(uuid.NewString(), projectID, userID, transport)
	h.reg.Add(conn)

	if data, err := json.Marshal(connectedEvent(projectID, conn.ID)); err == nil {
		if err := transport.Send(data); err != nil {
			h.reg.Remove(conn.ID)
			return
		}
	}

	// Hold the response open until the client goes away or the transport is
	// closed by a failed send or heartbeat probe.
	select {
	case <-r.Context().Done():
	case <-transport.Done():
	}
	h.reg.Remove(conn.ID)
}
