package web

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sidoarjo/callcenter/internal/core"
)

// handleImport imports an uploaded CSV into the schema's table.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	file, header, err := s.uploadedFile(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer file.Close()

	result, err := s.service.Import(r.Context(), chi.URLParam(r, "schema"), header.Filename, file)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, ImportResponse{ImportResult: result, Duration: result.Duration.String()})
}

// handlePreview returns the normalized first rows of an upload without writing.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	file, _, err := s.uploadedFile(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer file.Close()

	preview, err := s.service.Preview(r.Context(), chi.URLParam(r, "schema"), file)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, preview)
}

// uploadedFile returns the multipart "file" field, bounded by the import size limit.
func (s *Server) uploadedFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, core.ErrFileTooLarge
		}
		return nil, nil, core.ErrNoFile
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, core.ErrNoFile
	}
	return file, header, nil
}
