package adapthttp

import (
	"net/http"

	"colab/internal/app"
	"colab/internal/realtime"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// OIDCConfig carries optional single sign-on settings.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config *oauth2.Config
}

// Config wires the application services into the HTTP adapter.
type Config struct {
	Auth     *app.AuthService
	Projects *app.ProjectService
	Tasks    *app.TaskService
	Files    *app.FileService
	Messages *app.MessageService
	Admin    *app.AdminService
	Realtime *realtime.Handler
	OIDC     OIDCConfig
	// Production enables Secure cookies.
	Production bool
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	auth       *app.AuthService
	projects   *app.ProjectService
	tasks      *app.TaskService
	files      *app.FileService
	messages   *app.MessageService
	admin      *app.AdminService
	realtime   *realtime.Handler
	oidcConfig OIDCConfig
	production bool
}

// New creates a Server wired to the given application services.
func New(cfg Config) *Server {
	return &Server{
		auth:       cfg.Auth,
		projects:   cfg.Projects,
		tasks:      cfg.Tasks,
		files:      cfg.Files,
		messages:   cfg.Messages,
		admin:      cfg.Admin,
		realtime:   cfg.Realtime,
		oidcConfig: cfg.OIDC,
		production: cfg.Production,
	}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	mux.HandleFunc("GET /api/config", s.handleConfig)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("GET /api/auth/verify", s.handleVerifyEmail)
	mux.HandleFunc("POST /api/auth/resend-verification", s.handleResendVerification)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.HandleFunc("POST /api/auth/invite", s.handleAcceptInvite)
	mux.HandleFunc("GET /api/auth/sso/login", s.handleSSOLogin)
	mux.HandleFunc("GET /api/auth/sso/callback", s.handleSSOCallback)

	mux.HandleFunc("GET /api/me", s.requireAuth(s.handleGetProfile))
	mux.HandleFunc("PUT /api/me", s.requireAuth(s.handleUpdateProfile))

	mux.HandleFunc("GET /api/projects", s.requireAuth(s.handleListProjects))
	mux.HandleFunc("POST /api/projects", s.requireAuth(s.handleCreateProject))
	mux.HandleFunc("GET /api/projects/{id}", s.requireAuth(s.handleGetProject))
	mux.HandleFunc("PUT /api/projects/{id}", s.requireAuth(s.handleUpdateProject))
	mux.HandleFunc("DELETE /api/projects/{id}", s.requireAuth(s.handleDeleteProject))

	mux.HandleFunc("GET /api/projects/{id}/members", s.requireAuth(s.handleListMembers))
	mux.HandleFunc("POST /api/projects/{id}/members", s.requireAuth(s.handleAddMember))
	mux.HandleFunc("DELETE /api/projects/{id}/members/{userId}", s.requireAuth(s.handleRemoveMember))

	mux.HandleFunc("GET /api/projects/{id}/tasks", s.requireAuth(s.handleListTasks))
	mux.HandleFunc("POST /api/projects/{id}/tasks", s.requireAuth(s.handleCreateTask))
	mux.HandleFunc("PUT /api/projects/{id}/tasks/{taskId}", s.requireAuth(s.handleUpdateTask))
	mux.HandleFunc("DELETE /api/projects/{id}/tasks/{taskId}", s.requireAuth(s.handleDeleteTask))

	mux.HandleFunc("GET /api/projects/{id}/files", s.requireAuth(s.handleListFiles))
	mux.HandleFunc("POST /api/projects/{id}/files", s.requireAuth(s.handleUploadFile))
	mux.HandleFunc("DELETE /api/projects/{id}/files/{fileId}", s.requireAuth(s.handleDeleteFile))

	mux.HandleFunc("GET /api/projects/{id}/messages", s.requireAuth(s.handleListMessages))
	mux.HandleFunc("POST /api/projects/{id}/messages", s.requireAuth(s.handlePostMessage))

	mux.HandleFunc("GET /api/projects/{id}/realtime", s.requireAuth(s.handleRealtimeSSE))
	mux.HandleFunc("GET /ws", s.realtime.ServeWS)

	mux.HandleFunc("GET /api/admin/stats", s.requireAdmin(s.handleAdminStats))
	mux.HandleFunc("GET /api/admin/users", s.requireAdmin(s.handleAdminListUsers))
	mux.HandleFunc("PUT /api/admin/users/{id}/role", s.requireAdmin(s.handleAdminUpdateRole))
	mux.HandleFunc("DELETE /api/admin/users/{id}", s.requireAdmin(s.handleAdminDeleteUser))

	return s.loggingMiddleware(withNoCache(mux))
}

// handleRealtimeSSE bridges the authenticated HTTP route to the realtime
// SSE handshake.
func (s *Server) handleRealtimeSSE(w http.ResponseWriter, r *http.Request) {
	s.realtime.ServeSSE(w, r, r.PathValue("id"), userFrom(r.Context()).ID)
}
