package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"betadmin/internal/authz"
	"betadmin/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_jwt_secret_32_chars_minimum!"

// ── Helpers ──────────────────────────────────────────────────────────────────

type fakeDenylist struct {
	revoked map[string]bool
	err     error
}

func (d *fakeDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	return d.revoked[jti], nil
}

func signToken(t *testing.T, role, tokenType string, ttl time.Duration) (string, *authz.Claims) {
	t.Helper()
	claims := authz.NewClaims(authz.Principal{ID: uuid.New(), Role: role, Permissions: []string{"view_tickets"}}, tokenType, ttl)
	tok, err := authz.SignToken(testSecret, claims)
	require.NoError(t, err)
	return tok, claims
}

func protectedRouter(revoked RevocationChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuth(testSecret, revoked))
	r.GET("/protected", func(c *gin.Context) {
		p := GetPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"id": p.ID.String(), "role": p.Role})
	})
	r.GET("/admin", RequireRole(model.RoleSuperAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

// ── Tests: JWT ───────────────────────────────────────────────────────────────

func TestJWTAuth_NoToken(t *testing.T) {
	w := get(protectedRouter(nil), "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_ValidToken(t *testing.T) {
	tok, claims := signToken(t, model.RoleUser, authz.TokenAccess, time.Hour)
	w := get(protectedRouter(nil), "/protected", tok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), claims.ID)
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	tok, _ := signToken(t, model.RoleUser, authz.TokenAccess, -time.Second)
	w := get(protectedRouter(nil), "/protected", tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_RefreshTokenRejected(t *testing.T) {
	tok, _ := signToken(t, model.RoleUser, authz.TokenRefresh, time.Hour)
	w := get(protectedRouter(nil), "/protected", tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_RevokedToken(t *testing.T) {
	tok, claims := signToken(t, model.RoleUser, authz.TokenAccess, time.Hour)
	deny := &fakeDenylist{revoked: map[string]bool{claims.RegisteredClaims.ID: true}}

	w := get(protectedRouter(deny), "/protected", tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "revocado")
}

func TestJWTAuth_DenylistDownFailsOpen(t *testing.T) {
	tok, _ := signToken(t, model.RoleUser, authz.TokenAccess, time.Hour)
	deny := &fakeDenylist{err: errors.New("connection refused")}

	w := get(protectedRouter(deny), "/protected", tok)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole(t *testing.T) {
	r := protectedRouter(nil)
	userTok, _ := signToken(t, model.RoleUser, authz.TokenAccess, time.Hour)
	superTok, _ := signToken(t, model.RoleSuperAdmin, authz.TokenAccess, time.Hour)

	assert.Equal(t, http.StatusForbidden, get(r, "/admin", userTok).Code)
	assert.Equal(t, http.StatusOK, get(r, "/admin", superTok).Code)
}

func TestOptionalJWT(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/register", OptionalJWT(testSecret, nil), func(c *gin.Context) {
		if p := OptionalPrincipal(c); p != nil {
			c.String(http.StatusOK, p.Role)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	w := get(r, "/register", "")
	assert.Equal(t, "anonymous", w.Body.String())

	tok, _ := signToken(t, model.RoleSuperAdmin, authz.TokenAccess, time.Hour)
	w = get(r, "/register", tok)
	assert.Equal(t, model.RoleSuperAdmin, w.Body.String())

	w = get(r, "/register", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// ── Tests: Rate limiter ──────────────────────────────────────────────────────

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter("login", 2, time.Minute, "Demasiados intentos")
	r := gin.New()
	r.GET("/login", rl.Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, get(r, "/login", "").Code)
	assert.Equal(t, http.StatusOK, get(r, "/login", "").Code)
	w := get(r, "/login", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimiter_WindowResetAndPurge(t *testing.T) {
	now := time.Now()
	rl := NewRateLimiter("api", 1, time.Minute, "x")
	rl.now = func() time.Time { return now }

	ok, _ := rl.allow("10.0.0.1")
	assert.True(t, ok)
	ok, _ = rl.allow("10.0.0.1")
	assert.False(t, ok)

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, rl.Purge())
	ok, _ = rl.allow("10.0.0.1")
	assert.True(t, ok)
}

func TestRateLimiter_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter("api", 0, time.Minute, "x")
	r := gin.New()
	r.GET("/x", rl.Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, get(r, "/x", "").Code)
	}
}

// ── Tests: Misc ──────────────────────────────────────────────────────────────

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"https://panel.example.com"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://panel.example.com")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://panel.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := get(r, "/x", "")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	w = httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestErrorHandler_HidesCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/boom", func(c *gin.Context) { _ = c.Error(errors.New("pq: connection reset")) })

	w := get(r, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:")
	assert.Contains(t, w.Body.String(), "Error interno del servidor")
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := get(r, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestMetrics_LabelsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics())
	r.GET("/taquillas/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/taquillas/:id", "200"))
	get(r, "/taquillas/"+uuid.NewString(), "")
	get(r, "/taquillas/"+uuid.NewString(), "")
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/taquillas/:id", "200"))
	assert.Equal(t, before+2, after)
}
