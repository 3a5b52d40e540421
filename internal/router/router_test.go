package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"betadmin/internal/config"
	"betadmin/internal/dto"
	"betadmin/internal/model"
	"betadmin/internal/repository/repotest"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
	svcs   *Services
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cfg := &config.Config{
		JWTSecret:          "router_test_secret_32_chars_long!",
		JWTExpirationHours: 1,
		JWTRefreshHours:    24,
		BcryptCost:         bcrypt.MinCost,
	}
	repos := Repositories{
		Users:          repotest.NewUsers(),
		Centers:        repotest.NewCenters(),
		Taquillas:      repotest.NewTaquillas(),
		Permissions:    repotest.NewPermissions(),
		RoleDefaults:   repotest.NewRoleDefaults(),
		Configurations: repotest.NewConfigurations(),
	}
	svcs := NewServices(cfg, nil, rdb, repos, nil)

	ctx := context.Background()
	require.NoError(t, svcs.Permissions.SeedCatalog(ctx))
	require.NoError(t, svcs.RoleDefaults.SeedIfEmpty(ctx))
	require.NoError(t, svcs.Users.EnsureSuperAdmin(ctx, "root", "root@example.com", "password123"))

	engine := gin.New()
	Mount(engine, cfg, svcs, nil)
	return &testAPI{t: t, engine: engine, svcs: svcs}
}

func (a *testAPI) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testAPI) login(identifier string) dto.LoginResponse {
	a.t.Helper()
	w := a.do(http.MethodPost, "/login", "", gin.H{"identifier": identifier, "password": "password123"})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.LoginResponse
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (a *testAPI) register(token, username, role string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/register", token, gin.H{
		"username": username, "email": username + "@example.com", "password": "password123", "role": role,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var resp dto.RegisterResponse
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.UserID
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// ── Tests: Auth ──────────────────────────────────────────────────────────────

func TestAuthFlow_RegisterLoginLogout(t *testing.T) {
	api := newTestAPI(t)
	id := api.register("", "maria", "")
	session := api.login("maria@example.com")

	w := api.do(http.MethodGet, "/user/"+id, session.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	u := decode[dto.UserResponse](t, w)
	assert.Equal(t, model.RoleUser, u.Role)
	assert.NotContains(t, w.Body.String(), "password")

	assert.Equal(t, http.StatusOK, api.do(http.MethodPost, "/logout", session.AccessToken, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/user/"+id, session.AccessToken, nil).Code)
}

func TestLogout_WithRefreshTokenEndsTheSession(t *testing.T) {
	api := newTestAPI(t)
	api.register("", "maria", "")
	session := api.login("maria")

	w := api.do(http.MethodPost, "/logout", session.AccessToken, gin.H{"refresh_token": session.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(http.MethodPost, "/refresh", "", gin.H{"refresh_token": session.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_RefreshTokenIsNotABearerToken(t *testing.T) {
	api := newTestAPI(t)
	session := api.login("root")

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/users", session.RefreshToken, nil).Code)

	w := api.do(http.MethodPost, "/refresh", "", gin.H{"refresh_token": session.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code)
	fresh := decode[dto.LoginResponse](t, w)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/users", fresh.AccessToken, nil).Code)
}

func TestAuth_LoginErrors(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/login", "", gin.H{"identifier": "root", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodPost, "/login", "", gin.H{"password": "password123"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = api.do(http.MethodPost, "/login", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_RoleRequiresSuperAdminToken(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/register", "", gin.H{
		"username": "eve", "email": "eve@example.com", "password": "password123", "role": model.RoleSuperAdmin,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	root := api.login("root")
	api.register(root.AccessToken, "admin1", model.RoleAdminCentro)
	assert.Equal(t, model.RoleAdminCentro, api.login("admin1").User.Role)

	w = api.do(http.MethodPost, "/register", "", gin.H{
		"username": "admin1", "email": "other@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

// ── Tests: Users ─────────────────────────────────────────────────────────────

func TestListUsers_ByRole(t *testing.T) {
	api := newTestAPI(t)
	api.register("", "maria", "")
	maria := api.login("maria")
	root := api.login("root")

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/users", maria.AccessToken, nil).Code)

	w := api.do(http.MethodGet, "/users", root.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]dto.UserResponse](t, w), 2)
}

func TestUserRoutes_InvalidID(t *testing.T) {
	api := newTestAPI(t)
	root := api.login("root")
	w := api.do(http.MethodGet, "/user/not-a-uuid", root.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ── Tests: Centers and taquillas ─────────────────────────────────────────────

func TestCenterAndTaquillaFlow(t *testing.T) {
	api := newTestAPI(t)
	root := api.login("root")
	adminID := api.register(root.AccessToken, "admin1", model.RoleAdminCentro)
	sellerID := api.register("", "maria", "")
	admin := api.login("admin1")

	w := api.do(http.MethodPost, "/betting-centers", admin.AccessToken, gin.H{"name": "Norte", "address": "Av 1", "admin_id": adminID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPost, "/betting-centers", root.AccessToken, gin.H{"name": "Norte", "address": "Av 1", "admin_id": adminID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	center := decode[dto.BettingCenterResponse](t, w)

	w = api.do(http.MethodPost, "/taquillas", admin.AccessToken, gin.H{"number": 1, "betting_center_id": center.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tq := decode[dto.TaquillaResponse](t, w)

	w = api.do(http.MethodPost, "/taquillas", admin.AccessToken, gin.H{"number": 1, "betting_center_id": center.ID})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(http.MethodPost, "/taquillas/"+tq.ID+"/assign-user", admin.AccessToken, gin.H{"user_id": sellerID})
	assert.Equal(t, http.StatusForbidden, w.Code, "holder must belong to the center first")
	w = api.do(http.MethodPost, "/betting-centers/"+center.ID+"/assign-users", admin.AccessToken, gin.H{"user_id": sellerID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = api.do(http.MethodPost, "/taquillas/"+tq.ID+"/assign-user", admin.AccessToken, gin.H{"user_id": sellerID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(http.MethodPost, "/betting-centers/"+center.ID+"/assign-users", admin.AccessToken, gin.H{"user_id": root.User.ID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, "/betting-centers/"+center.ID, admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[dto.BettingCenterResponse](t, w)
	require.Len(t, got.Taquillas, 1)
	require.NotNil(t, got.Taquillas[0].AssignedUser)
	assert.Equal(t, "maria", got.Taquillas[0].AssignedUser.Username)

	w = api.do(http.MethodPatch, "/taquillas/"+tq.ID+"/status", admin.AccessToken, gin.H{"status": "broken"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/betting-centers/"+center.ID+"/taquillas?status=active", admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]dto.TaquillaResponse](t, w), 1)

	w = api.do(http.MethodGet, "/betting-centers/"+center.ID+"/report", admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))

	maria := api.login("maria")
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/betting-centers", maria.AccessToken, nil).Code)
}

func TestConfigurationRoutes(t *testing.T) {
	api := newTestAPI(t)
	root := api.login("root")
	adminID := api.register(root.AccessToken, "admin1", model.RoleAdminCentro)
	w := api.do(http.MethodPost, "/betting-centers", root.AccessToken, gin.H{"name": "Norte", "address": "Av 1", "admin_id": adminID})
	require.Equal(t, http.StatusCreated, w.Code)
	center := decode[dto.BettingCenterResponse](t, w)
	admin := api.login("admin1")

	w = api.do(http.MethodPost, "/configuration/"+center.ID, admin.AccessToken, gin.H{"max_sale_limit": "250.00", "no_limit": false})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(http.MethodPost, "/configuration/"+center.ID, admin.AccessToken, gin.H{})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(http.MethodGet, "/configuration/"+center.ID, admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "250", decode[dto.ConfigurationResponse](t, w).MaxSaleLimit.String())

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodDelete, "/configuration/"+center.ID, admin.AccessToken, nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodDelete, "/configuration/"+center.ID, root.AccessToken, nil).Code)
}

// ── Tests: Permissions ───────────────────────────────────────────────────────

func TestRolePermissions_InitializeIsIdempotent(t *testing.T) {
	api := newTestAPI(t)
	root := api.login("root")

	for i := 0; i < 2; i++ {
		w := api.do(http.MethodPost, "/role-permissions/initialize", root.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := api.do(http.MethodGet, "/role-permissions", root.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]dto.RolePermissionsResponse](t, w), 3)

	w = api.do(http.MethodPut, "/role-permissions/user", root.AccessToken, gin.H{"permissions": []string{"sell_tickets", "nope"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPut, "/role-permissions", root.AccessToken, gin.H{"role": "user", "permissions": []string{"sell_tickets"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = api.do(http.MethodGet, "/role-permissions/user", root.AccessToken, nil)
	assert.Equal(t, []string{"sell_tickets"}, decode[dto.RolePermissionsResponse](t, w).Permissions)
}

func TestUserPermissionRoutes(t *testing.T) {
	api := newTestAPI(t)
	root := api.login("root")
	id := api.register("", "maria", "")

	w := api.do(http.MethodPost, "/permissions/assign", root.AccessToken, gin.H{"user_id": id, "permission": "view_tickets"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(http.MethodGet, "/permissions/"+id, root.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "view_tickets")

	w = api.do(http.MethodPost, "/permissions/revoke", root.AccessToken, gin.H{"user_id": id, "permission": "view_tickets"})
	require.Equal(t, http.StatusOK, w.Code)

	maria := api.login("maria")
	w = api.do(http.MethodPost, "/permissions/assign", maria.AccessToken, gin.H{"user_id": id, "permission": "view_tickets"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
