package server

import (
	"errors"
	"net/http"
	"strings"

	"facilitypay/pkg/types"

	"github.com/go-chi/render"
)

type facilityRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`

	InternalStudentPriceCents int64 `json:"internalStudentPriceCents"`
	ExternalStudentPriceCents int64 `json:"externalStudentPriceCents"`
	AcademicStaffPriceCents   int64 `json:"academicStaffPriceCents"`
	AdminStaffPriceCents      int64 `json:"adminStaffPriceCents"`

	IsActive bool `json:"isActive"`
}

func (req *facilityRequest) validate() string {
	if strings.TrimSpace(req.Name) == "" {
		return "name is required"
	}
	for _, price := range []int64{
		req.InternalStudentPriceCents,
		req.ExternalStudentPriceCents,
		req.AcademicStaffPriceCents,
		req.AdminStaffPriceCents,
	} {
		if price < 0 {
			return "prices cannot be negative"
		}
	}
	return ""
}

func (req *facilityRequest) toFacility() *types.Facility {
	return &types.Facility{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,

		InternalStudentPriceCents: req.InternalStudentPriceCents,
		ExternalStudentPriceCents: req.ExternalStudentPriceCents,
		AcademicStaffPriceCents:   req.AcademicStaffPriceCents,
		AdminStaffPriceCents:      req.AdminStaffPriceCents,

		IsActive: req.IsActive,
	}
}

func (s *Service) handleListFacilities(w http.ResponseWriter, r *http.Request) {
	facilities, err := s.facilityRepo.Facilities(r.Context(), false)
	if err != nil {
		s.logger.WithError(err).Error("failed to list facilities")
		s.respondError(w, r, http.StatusInternalServerError, "failed to list facilities")
		return
	}

	s.respondJSON(w, r, http.StatusOK, facilities)
}

func (s *Service) handleCreateFacility(w http.ResponseWriter, r *http.Request) {
	var req facilityRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		s.respondError(w, r, http.StatusBadRequest, msg)
		return
	}

	facility := req.toFacility()
	if err := s.facilityRepo.CreateFacility(r.Context(), facility); err != nil {
		s.logger.WithError(err).Error("failed to create facility")
		s.respondError(w, r, http.StatusInternalServerError, "failed to create facility")
		return
	}

	s.formCache.Invalidate()
	s.respondJSON(w, r, http.StatusCreated, facility)
}

func (s *Service) handleUpdateFacility(w http.ResponseWriter, r *http.Request) {
	facilityID := r.PathValue("id")

	var req facilityRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		s.respondError(w, r, http.StatusBadRequest, msg)
		return
	}

	facility := req.toFacility()
	if err := s.facilityRepo.UpdateFacility(r.Context(), facilityID, facility); err != nil {
		if errors.Is(err, types.ErrFacilityNotFound) {
			s.respondError(w, r, http.StatusNotFound, err.Error())
			return
		}
		s.logger.WithError(err).Error("failed to update facility")
		s.respondError(w, r, http.StatusInternalServerError, "failed to update facility")
		return
	}

	s.formCache.Invalidate()
	s.respondJSON(w, r, http.StatusOK, facility)
}

func (s *Service) handleDeleteFacility(w http.ResponseWriter, r *http.Request) {
	facilityID := r.PathValue("id")

	if err := s.facilityRepo.DeleteFacility(r.Context(), facilityID); err != nil {
		var inUse *types.FacilityInUseError
		if errors.As(err, &inUse) {
			s.respondJSON(w, r, http.StatusConflict, map[string]any{
				"error":           inUse.Error(),
				"submissionCount": inUse.SubmissionCount,
			})
			return
		}
		if errors.Is(err, types.ErrFacilityNotFound) {
			s.respondError(w, r, http.StatusNotFound, err.Error())
			return
		}
		s.logger.WithError(err).Error("failed to delete facility")
		s.respondError(w, r, http.StatusInternalServerError, "failed to delete facility")
		return
	}

	s.formCache.Invalidate()
	s.respondJSON(w, r, http.StatusOK, map[string]any{"ok": true})
}
