package server

import (
	"context"
	"net/http"

	"facilitypay/internal/consent"
	"facilitypay/internal/intake"

	"github.com/sirupsen/logrus"
)

// maxSubmissionBytes bounds the multipart submission body, receipt
// included.
const maxSubmissionBytes = 10 << 20

func (s *Service) handleForm(w http.ResponseWriter, r *http.Request) {
	payload, err := s.formCache.Get(r.Context(), s.loadFormPayload)
	if err != nil {
		s.logger.WithError(err).Error("failed to load form payload")
		s.respondError(w, r, http.StatusInternalServerError, "failed to load form")
		return
	}

	s.respondJSON(w, r, http.StatusOK, payload)
}

func (s *Service) loadFormPayload(ctx context.Context) (*formPayload, error) {
	facilities, err := s.facilityRepo.Facilities(ctx, true)
	if err != nil {
		return nil, err
	}

	fields, err := s.formFieldRepo.FormFields(ctx, true)
	if err != nil {
		return nil, err
	}

	documents, err := s.documentRepo.Documents(ctx, true)
	if err != nil {
		return nil, err
	}

	settings, err := s.settingsRepo.Settings(ctx)
	if err != nil {
		return nil, err
	}

	return &formPayload{
		Facilities: facilities,
		FormFields: fields,
		Documents:  documents,
		Settings:   settings,
	}, nil
}

func (s *Service) handleCaptcha(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, r, http.StatusOK, s.captcha.Issue())
}

func (s *Service) handleClientIP(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, r, http.StatusOK, map[string]string{"ip": consent.ClientIP(r)})
}

func (s *Service) handleCreateSubmission(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSubmissionBytes)
	if err := r.ParseMultipartForm(maxSubmissionBytes); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid multipart payload")
		return
	}

	values := make(map[string]string, len(r.MultipartForm.Value))
	for key, vals := range r.MultipartForm.Value {
		if len(vals) > 0 {
			values[key] = vals[0]
		}
	}

	req := &intake.Request{Values: values}

	file, header, err := r.FormFile("receipt")
	if err == nil {
		defer file.Close()
		req.Receipt = file
		req.ReceiptFilename = header.Filename
	}

	submission, err := s.intake.Submit(r.Context(), req)
	if err != nil {
		s.respondIntakeError(w, r, err)
		return
	}

	s.logger.WithFields(logrus.Fields{
		"submission_id": submission.ID,
		"facility_id":   submission.FacilityID,
	}).Info("submission received")

	s.respondJSON(w, r, http.StatusCreated, submission)
}
