package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"facilitypay/internal/captcha"
	"facilitypay/internal/storage"
	"facilitypay/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestServeUpload(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "uploads"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "uploads", "receipt.pdf"), []byte("%PDF-fake"), 0o644); err != nil {
		t.Fatal(err)
	}

	files, err := storage.NewLocalStore(root)
	if err != nil {
		t.Fatal(err)
	}

	s := &Service{logger: testLogger(), files: files}
	mux := flow.New()
	mux.HandleFunc("/api/uploads/...", s.handleServeUpload, http.MethodGet)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantType   string
	}{
		{"existing file", "/api/uploads/receipt.pdf", http.StatusOK, "application/pdf"},
		{"missing file", "/api/uploads/nope.pdf", http.StatusNotFound, ""},
		{"parent traversal", "/api/uploads/../secrets.txt", http.StatusBadRequest, ""},
		{"home expansion", "/api/uploads/~root/x.pdf", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantType != "" && rec.Header().Get("Content-Type") != tt.wantType {
				t.Errorf("content type = %q, want %q", rec.Header().Get("Content-Type"), tt.wantType)
			}
		})
	}
}

func TestClientIPEndpoint(t *testing.T) {
	s := &Service{logger: testLogger()}

	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"loopback collapses", "127.0.0.1:51000", "", "localhost"},
		{"ipv6 loopback collapses", "[::1]:51000", "", "localhost"},
		{"forwarded header wins", "10.0.0.1:51000", "203.0.113.9", "203.0.113.9"},
		{"plain remote", "198.51.100.4:51000", "", "198.51.100.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/ip", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			rec := httptest.NewRecorder()
			s.handleClientIP(rec, req)

			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body["ip"] != tt.want {
				t.Errorf("ip = %q, want %q", body["ip"], tt.want)
			}
		})
	}
}

func TestCaptchaEndpoint(t *testing.T) {
	gen := captcha.New("test-salt")
	s := &Service{logger: testLogger(), captcha: gen}

	req := httptest.NewRequest(http.MethodGet, "/api/captcha", nil)
	rec := httptest.NewRecorder()
	s.handleCaptcha(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		A        int    `json:"a"`
		B        int    `json:"b"`
		Operator string `json:"operator"`
		Token    string `json:"token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Token == "" {
		t.Fatal("challenge token is empty")
	}

	var answer int
	switch captcha.Operator(body.Operator) {
	case captcha.OpAdd:
		answer = body.A + body.B
	case captcha.OpSub:
		answer = body.A - body.B
	case captcha.OpMul:
		answer = body.A * body.B
	default:
		t.Fatalf("unknown operator %q", body.Operator)
	}

	if err := gen.Verify(body.Token, strconv.Itoa(answer)); err != nil {
		t.Errorf("computed answer did not verify: %v", err)
	}
}

func TestRequireAdmin(t *testing.T) {
	hashKey := securecookie.GenerateRandomKey(32)
	blockKey := securecookie.GenerateRandomKey(32)

	s := &Service{
		logger: testLogger(),
		config: &types.Config{
			SessionCookieName: "fp_session",
			SessionMaxAgeSec:  3600,
		},
		cookie:     securecookie.New(hashKey, blockKey),
		sessionKey: securecookie.GenerateRandomKey(32),
	}

	var sawAdminID string
	guarded := s.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAdminID, _ = s.adminIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("no cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/facilities", nil)
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("garbage cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/facilities", nil)
		req.AddCookie(&http.Cookie{Name: "fp_session", Value: "not-a-session"})
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("valid session", func(t *testing.T) {
		issue := httptest.NewRecorder()
		err := s.setSessionCookie(issue, &types.Admin{ID: "adm_1", Email: "admin@example.edu"})
		if err != nil {
			t.Fatal(err)
		}
		cookies := issue.Result().Cookies()
		if len(cookies) != 1 {
			t.Fatalf("issued %d cookies, want 1", len(cookies))
		}

		req := httptest.NewRequest(http.MethodGet, "/api/admin/facilities", nil)
		req.AddCookie(cookies[0])
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", rec.Code)
		}
		if sawAdminID != "adm_1" {
			t.Errorf("admin id in context = %q, want adm_1", sawAdminID)
		}
	})
}

func TestNormalizeMetricPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/form", "/api/form"},
		{"/api/uploads/1714-42-receipt.pdf", "/api/uploads/{name}"},
		{"/api/documents/1714_kvkk.pdf", "/api/documents/{name}"},
		{"/api/admin/facilities", "/api/admin/facilities"},
		{"/api/admin/facilities/abc123", "/api/admin/facilities/{id}"},
		{"/api/admin/submissions/abc123/status", "/api/admin/submissions/{id}/status"},
	}

	for _, tt := range tests {
		if got := normalizeMetricPath(tt.path); got != tt.want {
			t.Errorf("normalizeMetricPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestCreateSubmissionBodySizeLimit(t *testing.T) {
	s := &Service{logger: testLogger()}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	field, err := mw.CreateFormField("address")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := field.Write(bytes.Repeat([]byte("a"), maxSubmissionBytes+1024)); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/submissions", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.handleCreateSubmission(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestNewRejectsInvalidKeys(t *testing.T) {
	validKey := base64.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32))

	tests := []struct {
		name   string
		config *types.Config
	}{
		{"hash key not base64", &types.Config{CookieHashKey: "%%%", CookieBlockKey: validKey, SessionSecret: validKey}},
		{"hash key empty", &types.Config{CookieHashKey: "", CookieBlockKey: validKey, SessionSecret: validKey}},
		{"block key not base64", &types.Config{CookieHashKey: validKey, CookieBlockKey: "%%%", SessionSecret: validKey}},
		{"session secret not base64", &types.Config{CookieHashKey: validKey, CookieBlockKey: validKey, SessionSecret: "%%%"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.config, testLogger(), nil, nil, nil, nil, nil, nil, nil, nil, nil); err == nil {
				t.Fatal("expected configuration error, got nil")
			}
		})
	}

	valid := &types.Config{CookieHashKey: validKey, CookieBlockKey: validKey, SessionSecret: validKey}
	if _, err := New(valid, testLogger(), nil, nil, nil, nil, nil, nil, nil, nil, nil); err != nil {
		t.Fatalf("expected no error with valid keys, got %v", err)
	}
}
