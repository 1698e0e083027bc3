package server

import (
	"net/http"

	"facilitypay/pkg/types"

	"github.com/go-chi/render"
)

func (s *Service) handleListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settingsRepo.Settings(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to load settings")
		s.respondError(w, r, http.StatusInternalServerError, "failed to load settings")
		return
	}

	s.respondJSON(w, r, http.StatusOK, settings)
}

func (s *Service) handlePutSetting(w http.ResponseWriter, r *http.Request) {
	var req types.Setting
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, ok := types.SettingDefaults[req.Key]; !ok {
		s.respondError(w, r, http.StatusBadRequest, "unknown setting key")
		return
	}

	if err := s.settingsRepo.SetSetting(r.Context(), req.Key, req.Value); err != nil {
		s.logger.WithError(err).Error("failed to save setting")
		s.respondError(w, r, http.StatusInternalServerError, "failed to save setting")
		return
	}

	s.formCache.Invalidate()
	s.respondJSON(w, r, http.StatusOK, req)
}
