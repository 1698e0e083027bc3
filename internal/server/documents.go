package server

import (
	"errors"
	"net/http"
	"path"
	"strings"

	"facilitypay/internal/storage"
	"facilitypay/internal/store"
	"facilitypay/pkg/types"

	"github.com/go-chi/render"
)

const maxDocumentBytes = 20 << 20

type documentMetaRequest struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	SortOrder int    `json:"order"`
	IsActive  bool   `json:"isActive"`
}

func (s *Service) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	documents, err := s.documentRepo.Documents(r.Context(), false)
	if err != nil {
		s.logger.WithError(err).Error("failed to list documents")
		s.respondError(w, r, http.StatusInternalServerError, "failed to list documents")
		return
	}

	s.respondJSON(w, r, http.StatusOK, documents)
}

// handleUploadDocument accepts a policy PDF plus its metadata. Only PDFs
// are served to submitters, so anything else is refused at the door.
func (s *Service) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentBytes)
	if err := r.ParseMultipartForm(maxDocumentBytes); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid multipart payload")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		s.respondError(w, r, http.StatusBadRequest, "title is required")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = store.MachineName(title)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "document file is required")
		return
	}
	defer file.Close()

	if !strings.EqualFold(path.Ext(header.Filename), ".pdf") {
		s.respondError(w, r, http.StatusBadRequest, "only PDF documents are accepted")
		return
	}

	storedName := storage.DocumentName(header.Filename)
	key := "documents/" + storedName

	if err := s.files.Save(r.Context(), key, file, "application/pdf"); err != nil {
		s.logger.WithError(err).Error("failed to store document file")
		s.respondError(w, r, http.StatusInternalServerError, "failed to store document")
		return
	}

	document := &types.ConsentDocument{
		Name:     name,
		Title:    title,
		FilePath: "/api/documents/" + storedName,
		IsActive: true,
	}
	if err := s.documentRepo.CreateDocument(r.Context(), document); err != nil {
		s.logger.WithError(err).Error("failed to create document")
		s.respondError(w, r, http.StatusInternalServerError, "failed to create document")
		return
	}

	s.formCache.Invalidate()
	s.respondJSON(w, r, http.StatusCreated, document)
}

func (s *Service) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("id")

	var req documentMetaRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Title = strings.TrimSpace(req.Title)
	if req.Name == "" || req.Title == "" {
		s.respondError(w, r, http.StatusBadRequest, "name and title are required")
		return
	}

	err := s.documentRepo.UpdateDocumentMeta(r.Context(), documentID, req.Name, req.Title, req.SortOrder, req.IsActive)
	if err != nil {
		if errors.Is(err, types.ErrDocumentNotFound) {
			s.respondError(w, r, http.StatusNotFound, err.Error())
			return
		}
		s.logger.WithError(err).Error("failed to update document")
		s.respondError(w, r, http.StatusInternalServerError, "failed to update document")
		return
	}

	s.formCache.Invalidate()
	s.respondJSON(w, r, http.StatusOK, map[string]any{"ok": true})
}

// handleDeleteDocument removes the row, then the stored file
// best-effort. Historical consent records reference the document by
// name and stay intact.
func (s *Service) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("id")

	document, err := s.documentRepo.Document(r.Context(), documentID)
	if err != nil {
		if errors.Is(err, types.ErrDocumentNotFound) {
			s.respondError(w, r, http.StatusNotFound, err.Error())
			return
		}
		s.logger.WithError(err).Error("failed to load document")
		s.respondError(w, r, http.StatusInternalServerError, "failed to delete document")
		return
	}

	if err := s.documentRepo.DeleteDocument(r.Context(), documentID); err != nil {
		if errors.Is(err, types.ErrDocumentNotFound) {
			s.respondError(w, r, http.StatusNotFound, err.Error())
			return
		}
		s.logger.WithError(err).Error("failed to delete document")
		s.respondError(w, r, http.StatusInternalServerError, "failed to delete document")
		return
	}

	if key, ok := strings.CutPrefix(document.FilePath, "/api/"); ok {
		if err := s.files.Delete(r.Context(), key); err != nil {
			s.logger.WithError(err).Warn("failed to remove stored document file")
		}
	}

	s.formCache.Invalidate()
	s.respondJSON(w, r, http.StatusOK, map[string]any{"ok": true})
}
