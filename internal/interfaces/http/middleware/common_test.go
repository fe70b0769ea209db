package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func okEngine(mw ...gin.HandlerFunc) *gin.Engine {
	engine := gin.New()
	engine.Use(mw...)
	engine.GET("/customers", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return engine
}

func TestCORSWithConfig(t *testing.T) {
	allowList := CORSConfig{
		AllowOrigins:     []string{"https://branch.example"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Content-Type", "X-Tenant-ID"},
		AllowCredentials: true,
		MaxAge:           time.Hour,
	}

	tests := []struct {
		name        string
		cfg         CORSConfig
		method      string
		origin      string
		wantStatus  int
		wantOrigin  string
		wantMaxAge  string
		wantCredent string
	}{
		{"default rejects cross origin", DefaultCORSConfig(), http.MethodGet, "https://evil.example", http.StatusOK, "", "", ""},
		{"default answers preflight without headers", DefaultCORSConfig(), http.MethodOptions, "https://evil.example", http.StatusNoContent, "", "", ""},
		{"listed origin", allowList, http.MethodGet, "https://branch.example", http.StatusOK, "https://branch.example", "3600", "true"},
		{"listed origin preflight", allowList, http.MethodOptions, "https://branch.example", http.StatusNoContent, "https://branch.example", "3600", "true"},
		{"unlisted origin", allowList, http.MethodGet, "https://other.example", http.StatusOK, "", "", ""},
		{"wildcard never sends credentials", CORSConfig{AllowOrigins: []string{"*"}, AllowCredentials: true}, http.MethodGet, "https://any.example", http.StatusOK, "*", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(okEngine(CORSWithConfig(tt.cfg)), tt.method, "/customers", "Origin", tt.origin)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantMaxAge, w.Header().Get("Access-Control-Max-Age"))
			assert.Equal(t, tt.wantCredent, w.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestDefaultCORSConfig_AllowsIdentityHeaders(t *testing.T) {
	cfg := DefaultCORSConfig()

	assert.Empty(t, cfg.AllowOrigins)
	assert.Contains(t, cfg.AllowHeaders, "Authorization")
	assert.Contains(t, cfg.AllowHeaders, TenantHeaderKey)
	assert.Contains(t, cfg.AllowHeaders, UserHeaderKey)
}

func TestRequestID(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/customers", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	t.Run("generated", func(t *testing.T) {
		w := serve(engine, http.MethodGet, "/customers")

		id := w.Header().Get("X-Request-ID")
		assert.Len(t, id, 32)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("propagated", func(t *testing.T) {
		w := serve(engine, http.MethodGet, "/customers", "X-Request-ID", "req-42")

		assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
		assert.Equal(t, "req-42", w.Body.String())
	})

	t.Run("oversized header replaced", func(t *testing.T) {
		w := serve(engine, http.MethodGet, "/customers", "X-Request-ID", strings.Repeat("x", MaxRequestIDLength+1))

		assert.Len(t, w.Header().Get("X-Request-ID"), 32)
	})
}

func TestSecure(t *testing.T) {
	w := serve(okEngine(Secure()), http.MethodGet, "/customers")

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "frame-ancestors 'none'")
	assert.Contains(t, w.Header().Get("Permissions-Policy"), "camera=()")
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestSecureWithConfig_HSTS(t *testing.T) {
	cfg := DefaultSecurityConfig()
	cfg.HSTSEnabled = true
	cfg.HSTSPreload = true

	w := serve(okEngine(SecureWithConfig(cfg)), http.MethodGet, "/customers")

	assert.Equal(t, "max-age=31536000; includeSubDomains; preload", w.Header().Get("Strict-Transport-Security"))
}
