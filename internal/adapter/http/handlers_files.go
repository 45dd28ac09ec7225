package adapthttp

import (
	"errors"
	"net/http"

	"colab/internal/app"
)

// maxUploadBytes caps multipart uploads at 32 MiB.
const maxUploadBytes = 32 << 20

func writeFileError(w http.ResponseWriter, err error) {
	if errors.Is(err, app.ErrFileNotFound) {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	if errors.Is(err, app.ErrProjectNotFound) || errors.Is(err, app.ErrForbidden) {
		writeProjectError(w, err)
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.files.List(r.Context(), r.PathValue("id"), userFrom(r.Context()).ID)
	if err != nil {
		writeFileError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"files": toFileResponses(files)})
}

func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer part.Close()

	file, err := s.files.Upload(r.Context(), r.PathValue("id"), r.FormValue("taskId"),
		userFrom(r.Context()).ID, header.Filename, header.Header.Get("Content-Type"),
		header.Size, part)
	if err != nil {
		writeFileError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, map[string]any{"file": toFileResponse(file)})
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	err := s.files.Delete(r.Context(), r.PathValue("id"), r.PathValue("fileId"),
		userFrom(r.Context()).ID)
	if err != nil {
		writeFileError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"message": "file deleted"})
}
