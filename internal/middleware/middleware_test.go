package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"water-admin/internal/auth"
	"water-admin/internal/config"
	"water-admin/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

func token(t *testing.T, role string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"user_id": 5, "role": role}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	return signed
}

func okHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := auth.FromContext(r.Context())
		if !ok {
			t.Errorf("session missing from context")
		}
		w.Write([]byte(s.Role.String()))
	})
}

func TestRequireRole(t *testing.T) {
	now := time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC)
	m := NewAuthMiddleware(auth.NewJWTManager("k")).WithClock(func() time.Time { return now })
	h := m.RequireRole(models.RoleAdmin, models.RoleManager)(okHandler(t))

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"bad scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc", http.StatusUnauthorized},
		{"expired", "Bearer " + token(t, "admin", now), http.StatusUnauthorized},
		{"driver", "Bearer " + token(t, "driver", now.Add(time.Hour)), http.StatusForbidden},
		{"unknown role", "Bearer " + token(t, "root", now.Add(time.Hour)), http.StatusForbidden},
		{"manager", "Bearer " + token(t, "manager", now.Add(time.Hour)), http.StatusOK},
		{"no exp", "Bearer " + token(t, "admin", time.Time{}), http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/prices", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d (%s)", tc.name, tc.status, rec.Code, rec.Body.String())
		}
		if tc.status != http.StatusOK {
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
				t.Fatalf("%s: expected JSON error body, got %q", tc.name, rec.Body.String())
			}
		}
	}
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/session", nil))
	if rec.Header().Get(RequestIDHeader) == "" || rec.Code != http.StatusTeapot {
		t.Fatalf("expected generated request id and passthrough status")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get(RequestIDHeader) != "abc-123" {
		t.Fatalf("caller request id must be kept")
	}
}

func TestPanicRecovery(t *testing.T) {
	h := PanicRecovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.CorsAllowedOrigins = []string{"http://admin.example.test"}
	cfg.Server.CorsAllowedMethods = []string{"GET", "POST"}
	cfg.Server.CorsAllowedHeaders = []string{"Authorization"}
	h := NewCORS(cfg)(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/prices", nil)
	req.Header.Set("Origin", "http://admin.example.test")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://admin.example.test" {
		t.Fatalf("expected allowed origin, got headers %v", rec.Header())
	}
}

func TestCORSDefaultConfigAllowsSessionDelete(t *testing.T) {
	cfg, err := config.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	h := NewCORS(cfg)(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/session", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "DELETE")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatalf("expected DELETE preflight to pass, got headers %v", rec.Header())
	}
}

func TestCORSWildcardDropsCredentials(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.CorsAllowedOrigins = []string{"*"}
	cfg.Server.CorsAllowedMethods = []string{"GET"}
	h := NewCORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.Header.Set("Origin", "http://anywhere.example.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected wildcard origin, got %v", rec.Header())
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "" {
		t.Fatalf("credentials must be off for a wildcard origin")
	}
}

func TestWithDefaults(t *testing.T) {
	got := withDefaults([]string{"get", "authorization"}, "Authorization", "OPTIONS")
	if strings.Join(got, ",") != "get,authorization,OPTIONS" {
		t.Fatalf("unexpected merge %v", got)
	}
}
