package server

import (
	"errors"
	"net/http"
	"strings"

	"facilitypay/internal/pricing"
	"facilitypay/internal/utils"
	"facilitypay/pkg/types"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type submissionFilter struct {
	Status string `form:"status"`
}

func (s *Service) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	var filter submissionFilter
	if err := decoder.Decode(&filter, r.URL.Query()); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid query parameters")
		return
	}

	if filter.Status != "" && !types.SubmissionStatus(filter.Status).Valid() {
		s.respondError(w, r, http.StatusBadRequest, "unknown status filter")
		return
	}

	submissions, err := s.submissionRepo.Submissions(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to list submissions")
		s.respondError(w, r, http.StatusInternalServerError, "failed to list submissions")
		return
	}

	if filter.Status != "" {
		filtered := submissions[:0]
		for _, sub := range submissions {
			if sub.Status == types.SubmissionStatus(filter.Status) {
				filtered = append(filtered, sub)
			}
		}
		submissions = filtered
	}

	s.attachFacilities(r, submissions)

	s.respondJSON(w, r, http.StatusOK, submissions)
}

// attachFacilities joins each submission with its facility and resolves
// the amount owed from the facility's per-category prices. A missing
// facility is left nil rather than failing the listing.
func (s *Service) attachFacilities(r *http.Request, submissions []*types.Submission) {
	byID := make(map[string]*types.Facility)

	for _, sub := range submissions {
		facility, ok := byID[sub.FacilityID]
		if !ok {
			loaded, err := s.facilityRepo.Facility(r.Context(), sub.FacilityID)
			if err != nil {
				if !errors.Is(err, types.ErrFacilityNotFound) {
					s.logger.WithError(err).Warn("failed to load facility for submission")
				}
				byID[sub.FacilityID] = nil
				continue
			}
			facility = loaded
			byID[sub.FacilityID] = facility
		}
		if facility == nil {
			continue
		}
		sub.Facility = facility
		sub.AmountCents = pricing.Resolve(facility, sub.UserType)
	}
}

func (s *Service) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	submissionID := r.PathValue("id")

	submission, err := s.submissionRepo.Submission(r.Context(), submissionID)
	if err != nil {
		if errors.Is(err, types.ErrSubmissionNotFound) {
			s.respondError(w, r, http.StatusNotFound, err.Error())
			return
		}
		s.logger.WithError(err).Error("failed to load submission")
		s.respondError(w, r, http.StatusInternalServerError, "failed to load submission")
		return
	}

	s.attachFacilities(r, []*types.Submission{submission})

	s.respondJSON(w, r, http.StatusOK, submission)
}

func (s *Service) handleUpdateSubmissionStatus(w http.ResponseWriter, r *http.Request) {
	submissionID := r.PathValue("id")

	var req struct {
		Status string `json:"status"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	status := types.SubmissionStatus(req.Status)
	if !status.Valid() {
		s.respondError(w, r, http.StatusBadRequest, "unknown submission status")
		return
	}

	if err := s.submissionRepo.UpdateStatus(r.Context(), submissionID, status); err != nil {
		if errors.Is(err, types.ErrSubmissionNotFound) {
			s.respondError(w, r, http.StatusNotFound, err.Error())
			return
		}
		s.logger.WithError(err).Error("failed to update submission status")
		s.respondError(w, r, http.StatusInternalServerError, "failed to update submission")
		return
	}

	adminID, _ := s.adminIDFromContext(r.Context())
	s.logger.WithFields(logrus.Fields{
		"submission_id": submissionID,
		"status":        status,
		"admin_id":      adminID,
	}).Info("submission reviewed")

	s.respondJSON(w, r, http.StatusOK, map[string]any{"ok": true})
}

func (s *Service) handleUpdateSubmissionNotes(w http.ResponseWriter, r *http.Request) {
	submissionID := r.PathValue("id")

	var req struct {
		Notes string `json:"notes"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	notes := utils.NullableString(strings.TrimSpace(req.Notes))
	if err := s.submissionRepo.UpdateNotes(r.Context(), submissionID, notes); err != nil {
		if errors.Is(err, types.ErrSubmissionNotFound) {
			s.respondError(w, r, http.StatusNotFound, err.Error())
			return
		}
		s.logger.WithError(err).Error("failed to update submission notes")
		s.respondError(w, r, http.StatusInternalServerError, "failed to update submission")
		return
	}

	s.respondJSON(w, r, http.StatusOK, map[string]any{"ok": true})
}
