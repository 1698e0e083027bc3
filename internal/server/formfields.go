package server

import (
	"errors"
	"net/http"
	"strings"

	"facilitypay/pkg/types"

	"github.com/go-chi/render"
)

type formFieldRequest struct {
	Label    string  `json:"label"`
	Type     string  `json:"type"`
	Required bool    `json:"required"`
	Options  *string `json:"options"`
	IsActive bool    `json:"isActive"`
}

func validFormFieldType(t string) bool {
	switch t {
	case types.FormFieldTypeText, types.FormFieldTypeNumber,
		types.FormFieldTypeDate, types.FormFieldTypeSelect:
		return true
	}
	return false
}

func (s *Service) handleListFormFields(w http.ResponseWriter, r *http.Request) {
	fields, err := s.formFieldRepo.FormFields(r.Context(), false)
	if err != nil {
		s.logger.WithError(err).Error("failed to list form fields")
		s.respondError(w, r, http.StatusInternalServerError, "failed to list form fields")
		return
	}

	s.respondJSON(w, r, http.StatusOK, fields)
}

func (s *Service) handleCreateFormField(w http.ResponseWriter, r *http.Request) {
	var req formFieldRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Label = strings.TrimSpace(req.Label)
	if req.Label == "" {
		s.respondError(w, r, http.StatusBadRequest, "label is required")
		return
	}
	if !validFormFieldType(req.Type) {
		s.respondError(w, r, http.StatusBadRequest, "unknown field type")
		return
	}

	field := &types.FormField{
		Label:    req.Label,
		Type:     req.Type,
		Required: req.Required,
		Options:  req.Options,
		IsActive: req.IsActive,
	}
	if err := s.formFieldRepo.CreateFormField(r.Context(), field); err != nil {
		s.logger.WithError(err).Error("failed to create form field")
		s.respondError(w, r, http.StatusInternalServerError, "failed to create form field")
		return
	}

	s.formCache.Invalidate()
	s.respondJSON(w, r, http.StatusCreated, field)
}

func (s *Service) handleSetFormFieldActive(w http.ResponseWriter, r *http.Request) {
	fieldID := r.PathValue("id")

	var req struct {
		IsActive bool `json:"isActive"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.formFieldRepo.SetFormFieldActive(r.Context(), fieldID, req.IsActive); err != nil {
		if errors.Is(err, types.ErrFormFieldNotFound) {
			s.respondError(w, r, http.StatusNotFound, err.Error())
			return
		}
		s.logger.WithError(err).Error("failed to toggle form field")
		s.respondError(w, r, http.StatusInternalServerError, "failed to toggle form field")
		return
	}

	s.formCache.Invalidate()
	s.respondJSON(w, r, http.StatusOK, map[string]any{"ok": true})
}

func (s *Service) handleDeleteFormField(w http.ResponseWriter, r *http.Request) {
	fieldID := r.PathValue("id")

	if err := s.formFieldRepo.DeleteFormField(r.Context(), fieldID); err != nil {
		switch {
		case errors.Is(err, types.ErrFormFieldNotFound):
			s.respondError(w, r, http.StatusNotFound, err.Error())
		case errors.Is(err, types.ErrFormFieldIsSystem):
			s.respondError(w, r, http.StatusConflict, err.Error())
		default:
			s.logger.WithError(err).Error("failed to delete form field")
			s.respondError(w, r, http.StatusInternalServerError, "failed to delete form field")
		}
		return
	}

	s.formCache.Invalidate()
	s.respondJSON(w, r, http.StatusOK, map[string]any{"ok": true})
}
