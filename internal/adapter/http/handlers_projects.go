package adapthttp

import (
	"errors"
	"net/http"

	"colab/internal/app"
	"colab/internal/domain"
)

// writeProjectError maps project service sentinels onto the API envelope.
func writeProjectError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrProjectNotFound):
		writeError(w, http.StatusNotFound, "project not found")
	case errors.Is(err, app.ErrForbidden):
		writeError(w, http.StatusForbidden, "insufficient project role")
	case errors.Is(err, app.ErrAlreadyMember):
		writeError(w, http.StatusConflict, "user is already a member")
	case errors.Is(err, app.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.projects.List(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"projects": toProjectResponses(projects)})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	project, err := s.projects.Create(r.Context(), userFrom(r.Context()).ID, req.Name, req.Description)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeSuccess(w, http.StatusCreated, map[string]any{"project": toProjectResponse(project)})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	project, err := s.projects.Get(r.Context(), r.PathValue("id"), userFrom(r.Context()).ID)
	if err != nil {
		writeProjectError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"project": toProjectResponse(project)})
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	project, err := s.projects.Update(r.Context(), r.PathValue("id"), userFrom(r.Context()).ID,
		req.Name, req.Description)
	if err != nil {
		writeProjectError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"project": toProjectResponse(project)})
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.projects.Delete(r.Context(), r.PathValue("id"), userFrom(r.Context()).ID); err != nil {
		writeProjectError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"message": "project deleted"})
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.projects.ListMembers(r.Context(), r.PathValue("id"), userFrom(r.Context()).ID)
	if err != nil {
		writeProjectError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"members": toMemberResponses(members)})
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role := domain.MemberRole(req.Role)
	if role == "" {
		role = domain.MemberRoleMember
	}
	if role != domain.MemberRoleAdmin && role != domain.MemberRoleMember {
		writeError(w, http.StatusBadRequest, "invalid member role")
		return
	}

	member, err := s.projects.AddMember(r.Context(), r.PathValue("id"), userFrom(r.Context()).ID,
		req.Email, role)
	if err != nil {
		writeProjectError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, map[string]any{"member": toMemberResponse(member)})
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	err := s.projects.RemoveMember(r.Context(), r.PathValue("id"), userFrom(r.Context()).ID,
		r.PathValue("userId"))
	if err != nil {
		writeProjectError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"message": "member removed"})
}
