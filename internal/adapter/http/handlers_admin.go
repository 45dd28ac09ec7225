package adapthttp

import (
	"errors"
	"net/http"

	"colab/internal/app"
	"colab/internal/domain"
)

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.admin.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"stats":       stats,
		"recentUsers": toUserResponses(stats.RecentUsers),
	})
}

func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.admin.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"users": toUserResponses(users)})
}

func (s *Server) handleAdminUpdateRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"role"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.admin.UpdateUserRole(r.Context(), r.PathValue("id"), domain.Role(req.Role))
	if errors.Is(err, app.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"user": toUserResponse(user)})
}

func (s *Server) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	targetID := r.PathValue("id")
	if targetID == userFrom(r.Context()).ID {
		writeError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}
	if err := s.admin.DeleteUser(r.Context(), targetID); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"message": "user deleted"})
}
