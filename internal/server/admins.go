package server

import (
	"errors"
	"net/http"
	"strings"

	"facilitypay/pkg/types"

	"github.com/go-chi/render"
	"golang.org/x/crypto/bcrypt"
)

type adminCreateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

func (s *Service) handleListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := s.adminRepo.Admins(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to list admins")
		s.respondError(w, r, http.StatusInternalServerError, "failed to list admins")
		return
	}

	s.respondJSON(w, r, http.StatusOK, admins)
}

func (s *Service) handleCreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req adminCreateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)

	if req.Email == "" || req.Name == "" {
		s.respondError(w, r, http.StatusBadRequest, "email and name are required")
		return
	}
	if len(req.Password) < minPasswordLength {
		s.respondError(w, r, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	if _, err := s.adminRepo.AdminByEmail(r.Context(), req.Email); err == nil {
		s.respondError(w, r, http.StatusConflict, types.ErrAdminExists.Error())
		return
	} else if !errors.Is(err, types.ErrAdminNotFound) {
		s.logger.WithError(err).Error("failed to check for existing admin")
		s.respondError(w, r, http.StatusInternalServerError, "failed to create admin")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.WithError(err).Error("failed to hash password")
		s.respondError(w, r, http.StatusInternalServerError, "failed to create admin")
		return
	}

	admin := &types.Admin{
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Role:         req.Role,
	}
	if err := s.adminRepo.CreateAdmin(r.Context(), admin); err != nil {
		s.logger.WithError(err).Error("failed to create admin")
		s.respondError(w, r, http.StatusInternalServerError, "failed to create admin")
		return
	}

	s.respondJSON(w, r, http.StatusCreated, admin)
}

func (s *Service) handleChangeAdminPassword(w http.ResponseWriter, r *http.Request) {
	adminID := r.PathValue("id")

	var req struct {
		Password string `json:"password"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Password) < minPasswordLength {
		s.respondError(w, r, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.WithError(err).Error("failed to hash password")
		s.respondError(w, r, http.StatusInternalServerError, "failed to change password")
		return
	}

	if err := s.adminRepo.UpdatePassword(r.Context(), adminID, string(hash)); err != nil {
		if errors.Is(err, types.ErrAdminNotFound) {
			s.respondError(w, r, http.StatusNotFound, err.Error())
			return
		}
		s.logger.WithError(err).Error("failed to change admin password")
		s.respondError(w, r, http.StatusInternalServerError, "failed to change password")
		return
	}

	s.respondJSON(w, r, http.StatusOK, map[string]any{"ok": true})
}

func (s *Service) handleDeleteAdmin(w http.ResponseWriter, r *http.Request) {
	adminID := r.PathValue("id")

	if err := s.adminRepo.DeleteAdmin(r.Context(), adminID); err != nil {
		switch {
		case errors.Is(err, types.ErrLastAdmin):
			s.respondError(w, r, http.StatusConflict, err.Error())
		case errors.Is(err, types.ErrAdminNotFound):
			s.respondError(w, r, http.StatusNotFound, err.Error())
		default:
			s.logger.WithError(err).Error("failed to delete admin")
			s.respondError(w, r, http.StatusInternalServerError, "failed to delete admin")
		}
		return
	}

	s.respondJSON(w, r, http.StatusOK, map[string]any{"ok": true})
}
