package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const (
	contextKeyAdminID contextKey = "admin_id"
	contextKeyEmail   contextKey = "email"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fp_http_requests_total",
			Help: "Total HTTP requests served",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fp_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware records request counts and latencies. Paths with
// identifiers or file names are collapsed to a placeholder so label
// cardinality stays bounded.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			path := normalizeMetricPath(r.URL.Path)
			httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rw.statusCode)).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(started).Seconds())
		})
	}
}

func normalizeMetricPath(path string) string {
	for _, prefix := range []string{"/api/uploads/", "/api/documents/"} {
		if strings.HasPrefix(path, prefix) {
			return prefix + "{name}"
		}
	}

	const adminPrefix = "/api/admin/"
	if strings.HasPrefix(path, adminPrefix) {
		parts := strings.Split(path[len(adminPrefix):], "/")
		if len(parts) >= 2 {
			parts[1] = "{id}"
			return adminPrefix + strings.Join(parts, "/")
		}
	}

	return path
}

// RequireAdmin verifies the session cookie and puts the admin's identity
// on the request context. Unauthenticated requests get a JSON 401; this
// is an API, not a page flow, so there is no login redirect.
func (s *Service) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(s.config.SessionCookieName)
		if err != nil {
			s.logger.WithError(err).Debug("no session cookie found")
			s.respondError(w, r, http.StatusUnauthorized, "authentication required")
			return
		}

		var signed string
		if err := s.cookie.Decode(s.config.SessionCookieName, cookie.Value, &signed); err != nil {
			s.logger.WithError(err).Warn("failed to decode session cookie")
			s.respondError(w, r, http.StatusUnauthorized, "authentication required")
			return
		}

		token, err := jwt.Parse(
			[]byte(signed),
			jwt.WithKey(jwa.HS256(), s.sessionKey),
			jwt.WithValidate(true),
		)
		if err != nil {
			s.logger.WithError(err).Warn("failed to verify session token")
			s.respondError(w, r, http.StatusUnauthorized, "authentication required")
			return
		}

		adminID, ok := token.Subject()
		if !ok || adminID == "" {
			s.logger.Error("no admin ID in session token subject claim")
			s.respondError(w, r, http.StatusUnauthorized, "authentication required")
			return
		}

		var email string
		if err := token.Get("email", &email); err != nil {
			s.logger.WithError(err).Warn("no email claim in session token")
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, contextKeyAdminID, adminID)
		if email != "" {
			ctx = context.WithValue(ctx, contextKeyEmail, email)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path != "/" && strings.HasSuffix(path, "/") {
			newURL := *r.URL
			newURL.Path = strings.TrimSuffix(path, "/")

			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}
