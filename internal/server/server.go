package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"facilitypay/internal/cache"
	"facilitypay/internal/captcha"
	"facilitypay/internal/intake"
	"facilitypay/internal/storage"
	"facilitypay/internal/store"
	"facilitypay/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

// formPayload is everything the public application form needs in one
// response: what can be paid for, what must be filled in, and what must
// be acknowledged.
type formPayload struct {
	Facilities []*types.Facility        `json:"facilities"`
	FormFields []*types.FormField       `json:"formFields"`
	Documents  []*types.ConsentDocument `json:"documents"`
	Settings   map[string]string        `json:"settings"`
}

type Service struct {
	logger *logrus.Logger
	config *types.Config

	captcha *captcha.Generator
	intake  *intake.Service

	facilityRepo   *store.FacilityRepository
	formFieldRepo  *store.FormFieldRepository
	documentRepo   *store.DocumentRepository
	submissionRepo *store.SubmissionRepository
	adminRepo      *store.AdminRepository
	settingsRepo   *store.SettingsRepository

	files storage.Store

	cookie     *securecookie.SecureCookie
	sessionKey []byte

	formCache *cache.TTL[*formPayload]

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	captchaGen *captcha.Generator,
	intakeService *intake.Service,
	facilityRepo *store.FacilityRepository,
	formFieldRepo *store.FormFieldRepository,
	documentRepo *store.DocumentRepository,
	submissionRepo *store.SubmissionRepository,
	adminRepo *store.AdminRepository,
	settingsRepo *store.SettingsRepository,
	files storage.Store,
) (*Service, error) {
	mux := flow.New()

	hashKey, err := base64.StdEncoding.DecodeString(config.CookieHashKey)
	if err != nil || len(hashKey) == 0 {
		return nil, fmt.Errorf("COOKIE_HASH_KEY must be non-empty base64")
	}

	blockKey, err := base64.StdEncoding.DecodeString(config.CookieBlockKey)
	if err != nil || len(blockKey) == 0 {
		return nil, fmt.Errorf("COOKIE_BLOCK_KEY must be non-empty base64")
	}

	sessionKey, err := base64.StdEncoding.DecodeString(config.SessionSecret)
	if err != nil || len(sessionKey) == 0 {
		return nil, fmt.Errorf("SESSION_SECRET must be non-empty base64")
	}

	s := &Service{
		logger:  logger,
		config:  config,
		captcha: captchaGen,
		intake:  intakeService,

		facilityRepo:   facilityRepo,
		formFieldRepo:  formFieldRepo,
		documentRepo:   documentRepo,
		submissionRepo: submissionRepo,
		adminRepo:      adminRepo,
		settingsRepo:   settingsRepo,

		files: files,

		cookie:     securecookie.New(hashKey, blockKey),
		sessionKey: sessionKey,

		formCache: cache.New[*formPayload](time.Duration(config.FormCacheTTLSec) * time.Second),

		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)
	r.Use(MetricsMiddleware())

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)
	r.Handle("/metrics", promhttp.Handler(), http.MethodGet)

	r.HandleFunc("/api/form", s.handleForm, http.MethodGet)
	r.HandleFunc("/api/captcha", s.handleCaptcha, http.MethodGet)
	r.HandleFunc("/api/ip", s.handleClientIP, http.MethodGet)
	r.HandleFunc("/api/submissions", s.handleCreateSubmission, http.MethodPost)

	r.HandleFunc("/api/uploads/...", s.handleServeUpload, http.MethodGet)
	r.HandleFunc("/api/documents/...", s.handleServeDocument, http.MethodGet)

	r.HandleFunc("/api/admin/setup", s.handleSetup, http.MethodPost)
	r.HandleFunc("/api/admin/login", s.handleLogin, http.MethodPost)
	r.HandleFunc("/api/admin/logout", s.handleLogout, http.MethodPost)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAdmin)

		r.HandleFunc("/api/admin/facilities", s.handleListFacilities, http.MethodGet)
		r.HandleFunc("/api/admin/facilities", s.handleCreateFacility, http.MethodPost)
		r.HandleFunc("/api/admin/facilities/:id", s.handleUpdateFacility, http.MethodPut)
		r.HandleFunc("/api/admin/facilities/:id", s.handleDeleteFacility, http.MethodDelete)

		r.HandleFunc("/api/admin/form-fields", s.handleListFormFields, http.MethodGet)
		r.HandleFunc("/api/admin/form-fields", s.handleCreateFormField, http.MethodPost)
		r.HandleFunc("/api/admin/form-fields/:id/active", s.handleSetFormFieldActive, http.MethodPut)
		r.HandleFunc("/api/admin/form-fields/:id", s.handleDeleteFormField, http.MethodDelete)

		r.HandleFunc("/api/admin/documents", s.handleListDocuments, http.MethodGet)
		r.HandleFunc("/api/admin/documents", s.handleUploadDocument, http.MethodPost)
		r.HandleFunc("/api/admin/documents/:id", s.handleUpdateDocument, http.MethodPut)
		r.HandleFunc("/api/admin/documents/:id", s.handleDeleteDocument, http.MethodDelete)

		r.HandleFunc("/api/admin/submissions", s.handleListSubmissions, http.MethodGet)
		r.HandleFunc("/api/admin/submissions/:id", s.handleGetSubmission, http.MethodGet)
		r.HandleFunc("/api/admin/submissions/:id/status", s.handleUpdateSubmissionStatus, http.MethodPut)
		r.HandleFunc("/api/admin/submissions/:id/notes", s.handleUpdateSubmissionNotes, http.MethodPut)

		r.HandleFunc("/api/admin/admins", s.handleListAdmins, http.MethodGet)
		r.HandleFunc("/api/admin/admins", s.handleCreateAdmin, http.MethodPost)
		r.HandleFunc("/api/admin/admins/:id/password", s.handleChangeAdminPassword, http.MethodPut)
		r.HandleFunc("/api/admin/admins/:id", s.handleDeleteAdmin, http.MethodDelete)

		r.HandleFunc("/api/admin/settings", s.handleListSettings, http.MethodGet)
		r.HandleFunc("/api/admin/settings", s.handlePutSetting, http.MethodPut)
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Service) adminIDFromContext(ctx context.Context) (string, error) {
	adminID, ok := ctx.Value(contextKeyAdminID).(string)
	if !ok {
		return "", fmt.Errorf("admin id not found in context")
	}
	return adminID, nil
}
