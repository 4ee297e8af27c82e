package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestAdminKeyAuth(t *testing.T) {
	// Save original env and restore after test
	originalKey := os.Getenv("ADMIN_KEY")
	defer os.Setenv("ADMIN_KEY", originalKey)

	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		adminKey       string // env var value
		authHeader     string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "no admin key configured - allows all requests",
			adminKey:       "",
			authHeader:     "",
			expectedStatus: http.StatusOK,
			expectedBody:   "ok",
		},
		{
			name:           "valid admin key",
			adminKey:       "test-secret-key",
			authHeader:     "Bearer test-secret-key",
			expectedStatus: http.StatusOK,
			expectedBody:   "ok",
		},
		{
			name:           "missing auth header",
			adminKey:       "test-secret-key",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "AUTH_REQUIRED",
		},
		{
			name:           "invalid auth format - no Bearer",
			adminKey:       "test-secret-key",
			authHeader:     "test-secret-key",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "AUTH_INVALID_FORMAT",
		},
		{
			name:           "invalid admin key",
			adminKey:       "test-secret-key",
			authHeader:     "Bearer wrong-key",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "AUTH_INVALID_KEY",
		},
		{
			name:           "case insensitive Bearer",
			adminKey:       "test-secret-key",
			authHeader:     "bearer test-secret-key",
			expectedStatus: http.StatusOK,
			expectedBody:   "ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset the cached admin key for each test
			adminKeyOnce = sync.Once{}
			adminKey = ""

			os.Setenv("ADMIN_KEY", tt.adminKey)

			router := gin.New()
			router.Use(AdminKeyAuth())
			router.GET("/test", func(c *gin.Context) {
				c.String(http.StatusOK, "ok")
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.expectedBody) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedBody, w.Body.String())
			}
		})
	}
}

func TestVerifyAdminKey(t *testing.T) {
	originalKey := os.Getenv("ADMIN_KEY")
	defer os.Setenv("ADMIN_KEY", originalKey)

	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		adminKey       string
		authHeader     string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "auth disabled reports valid",
			adminKey:       "",
			authHeader:     "",
			expectedStatus: http.StatusOK,
			expectedBody:   `"auth_enabled":false`,
		},
		{
			name:           "correct key is valid",
			adminKey:       "secret",
			authHeader:     "Bearer secret",
			expectedStatus: http.StatusOK,
			expectedBody:   `"valid":true`,
		},
		{
			name:           "wrong key is invalid",
			adminKey:       "secret",
			authHeader:     "Bearer nope",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"valid":false`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adminKeyOnce = sync.Once{}
			adminKey = ""
			os.Setenv("ADMIN_KEY", tt.adminKey)

			router := gin.New()
			router.GET("/verify", VerifyAdminKey)

			req := httptest.NewRequest(http.MethodGet, "/verify", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.expectedBody) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedBody, w.Body.String())
			}
		})
	}
}
