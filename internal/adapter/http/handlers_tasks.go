package adapthttp

import (
	"errors"
	"net/http"

	"colab/internal/app"
	"colab/internal/domain"
)

func writeTaskError(w http.ResponseWriter, err error) {
	if errors.Is(err, app.ErrTaskNotFound) {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if errors.Is(err, app.ErrProjectNotFound) || errors.Is(err, app.ErrForbidden) {
		writeProjectError(w, err)
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	status := domain.TaskStatus(r.URL.Query().Get("status"))
	tasks, err := s.tasks.List(r.Context(), r.PathValue("id"), userFrom(r.Context()).ID, status)
	if err != nil {
		writeTaskError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Status      string `json:"status"`
		Priority    string `json:"priority"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	task, err := s.tasks.Create(r.Context(), r.PathValue("id"), userFrom(r.Context()).ID,
		req.Title, req.Description, domain.TaskStatus(req.Status), domain.TaskPriority(req.Priority))
	if err != nil {
		writeTaskError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, map[string]any{"task": task})
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Status      *string `json:"status"`
		Priority    *string `json:"priority"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	upd := app.TaskUpdate{Title: req.Title, Description: req.Description}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		upd.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		upd.Priority = &priority
	}

	task, err := s.tasks.Update(r.Context(), r.PathValue("id"), r.PathValue("taskId"),
		userFrom(r.Context()).ID, upd)
	if err != nil {
		writeTaskError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"task": task})
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	err := s.tasks.Delete(r.Context(), r.PathValue("id"), r.PathValue("taskId"),
		userFrom(r.Context()).ID)
	if err != nil {
		writeTaskError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"message": "task deleted"})
}
