package server

import (
	"errors"
	"net/http"

	"facilitypay/internal/intake"

	"github.com/go-chi/render"
)

func (s *Service) respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func (s *Service) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]any{"error": message})
}

// respondIntakeError translates a validation pipeline failure into the
// JSON shape the form client renders: the message plus a stable code the
// client can branch on, and the offending field when there is one.
func (s *Service) respondIntakeError(w http.ResponseWriter, r *http.Request, err error) {
	var ie *intake.Error
	if !errors.As(err, &ie) {
		s.logger.WithError(err).Error("submission failed")
		s.respondError(w, r, http.StatusInternalServerError, "Your application could not be saved. Please try again.")
		return
	}

	status := http.StatusBadRequest
	switch ie.Kind {
	case intake.ErrStorageWrite, intake.ErrPersistence:
		status = http.StatusInternalServerError
		s.logger.WithError(ie).Error("submission failed")
	}

	body := map[string]any{
		"error": ie.Message,
		"code":  string(ie.Kind),
	}
	if ie.Field != "" {
		body["field"] = ie.Field
	}

	render.Status(r, status)
	render.JSON(w, r, body)
}
