package server

import (
	"errors"
	"io"
	"net/http"
	"os"

	"facilitypay/internal/storage"
)

func (s *Service) handleServeUpload(w http.ResponseWriter, r *http.Request) {
	s.serveStored(w, r, "uploads")
}

func (s *Service) handleServeDocument(w http.ResponseWriter, r *http.Request) {
	s.serveStored(w, r, "documents")
}

// serveStored streams a stored file back to the client. Names that could
// climb out of the storage root are refused outright, before the backend
// is consulted.
func (s *Service) serveStored(w http.ResponseWriter, r *http.Request, prefix string) {
	name := r.PathValue("...")

	if !storage.SafeRelPath(name) {
		s.respondError(w, r, http.StatusBadRequest, "invalid file name")
		return
	}

	f, err := s.files.Open(r.Context(), prefix+"/"+name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.respondError(w, r, http.StatusNotFound, "file not found")
			return
		}
		s.logger.WithError(err).Error("failed to open stored file")
		s.respondError(w, r, http.StatusInternalServerError, "failed to read file")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", storage.ContentTypeByExt(name))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, f); err != nil {
		s.logger.WithError(err).Warn("interrupted while streaming stored file")
	}
}
