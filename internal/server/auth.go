package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"facilitypay/pkg/types"

	"github.com/go-chi/render"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type setupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	CaptchaToken  string `json:"captchaToken"`
	CaptchaAnswer string `json:"captchaAnswer"`
}

// handleSetup creates the very first admin account. Once any admin row
// exists the endpoint is closed for good; further accounts are created
// by a logged-in admin.
func (s *Service) handleSetup(w http.ResponseWriter, r *http.Request) {
	var req setupRequest
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

	count, err := s.adminRepo.Count(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to count admins")
		s.respondError(w, r, http.StatusInternalServerError, "setup failed")
		return
	}
	if count > 0 {
		s.respondError(w, r, http.StatusConflict, types.ErrSetupDone.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.WithError(err).Error("failed to hash password")
		s.respondError(w, r, http.StatusInternalServerError, "setup failed")
		return
	}

	admin := &types.Admin{
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
	}
	if err := s.adminRepo.CreateAdmin(r.Context(), admin); err != nil {
		s.logger.WithError(err).Error("failed to create first admin")
		s.respondError(w, r, http.StatusInternalServerError, "setup failed")
		return
	}

	s.logger.WithField("email", admin.Email).Info("first admin account created")
	s.respondJSON(w, r, http.StatusCreated, admin)
}

// handleLogin checks the captcha before even looking at credentials, the
// same gate the public form goes through.
func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.CaptchaToken == "" || req.CaptchaAnswer == "" {
		s.respondError(w, r, http.StatusBadRequest, "captcha is required")
		return
	}
	if err := s.captcha.Verify(req.CaptchaToken, req.CaptchaAnswer); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "captcha verification failed")
		return
	}

	admin, err := s.adminRepo.AdminByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if !errors.Is(err, types.ErrAdminNotFound) {
			s.logger.WithError(err).Error("failed to look up admin")
		}
		s.respondError(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		s.respondError(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := s.setSessionCookie(w, admin); err != nil {
		s.logger.WithError(err).Error("failed to issue session")
		s.respondError(w, r, http.StatusInternalServerError, "login failed")
		return
	}

	s.logger.WithField("admin_id", admin.ID).Info("admin logged in")
	s.respondJSON(w, r, http.StatusOK, admin)
}

func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearSessionCookie(w)
	s.respondJSON(w, r, http.StatusOK, map[string]any{"ok": true})
}

// setSessionCookie signs a short-lived token carrying the admin's
// identity and wraps it in an encrypted cookie.
func (s *Service) setSessionCookie(w http.ResponseWriter, admin *types.Admin) error {
	now := time.Now()
	maxAge := time.Duration(s.config.SessionMaxAgeSec) * time.Second

	token, err := jwt.NewBuilder().
		Subject(admin.ID).
		IssuedAt(now).
		Expiration(now.Add(maxAge)).
		Claim("email", admin.Email).
		Build()
	if err != nil {
		return err
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), s.sessionKey))
	if err != nil {
		return err
	}

	encoded, err := s.cookie.Encode(s.config.SessionCookieName, string(signed))
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.config.SessionCookieName,
		Value:    encoded,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   s.config.SessionMaxAgeSec,
		Path:     "/",
	})

	return nil
}

func (s *Service) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
