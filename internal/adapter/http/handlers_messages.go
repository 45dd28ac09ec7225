package adapthttp

import (
	"errors"
	"net/http"

	"colab/internal/app"
)

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	limit := intQuery(r, "limit", 50)
	messages, err := s.messages.List(r.Context(), r.PathValue("id"), userFrom(r.Context()).ID, limit)
	if err != nil {
		writeProjectError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"messages": toMessageResponses(messages)})
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Body string `json:"body"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := s.messages.Post(r.Context(), r.PathValue("id"), userFrom(r.Context()).ID, req.Body)
	if err != nil {
		if errors.Is(err, app.ErrProjectNotFound) || errors.Is(err, app.ErrForbidden) {
			writeProjectError(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeSuccess(w, http.StatusCreated, map[string]any{"message": toMessageResponse(msg)})
}
