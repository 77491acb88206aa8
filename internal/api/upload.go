package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

const maxUploadSize = 20 << 20

func (s *Server) uploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		badRequest(w, "file too large (max 20MB)")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		badRequest(w, "missing file field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	res, err := s.canvases.Upload(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "nodeId"), header.Filename, contentType, file)
	if err != nil {
		writeError(w, err, "Failed to upload file.")
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) listUploads(w http.ResponseWriter, r *http.Request) {
	list, err := s.canvases.Uploads(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "nodeId"))
	if err != nil {
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, list)
}
