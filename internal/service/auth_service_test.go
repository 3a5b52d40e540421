package service_test

import (
	"context"
	"testing"
	"time"

	"betadmin/internal/apierror"
	"betadmin/internal/authz"
	"betadmin/internal/cache"
	"betadmin/internal/dto"
	"betadmin/internal/model"
	"betadmin/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, f *fixture, caller *authz.Principal, username, role string) *dto.RegisterResponse {
	t.Helper()
	resp, err := f.authSvc.Register(context.Background(), caller, dto.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
		Role:     role,
	})
	require.NoError(t, err)
	return resp
}

// ── Tests: Register ──────────────────────────────────────────────────────────

func TestRegister_PublicCreatesUserRole(t *testing.T) {
	f := newFixture(t)
	resp := register(t, f, nil, "maria", "")

	u, err := f.users.FindByUsername(context.Background(), "maria")
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), resp.UserID)
	assert.Equal(t, model.RoleUser, u.Role)
}

func TestRegister_PublicCannotRequestAdminRole(t *testing.T) {
	f := newFixture(t)
	_, err := f.authSvc.Register(context.Background(), nil, dto.RegisterRequest{
		Username: "mallory", Email: "mallory@example.com", Password: "password123", Role: model.RoleSuperAdmin,
	})
	assert.ErrorIs(t, err, apierror.ErrAccessDenied)
}

func TestRegister_SuperAdminMayChooseRole(t *testing.T) {
	f := newFixture(t)
	super := f.superAdmin(t)
	register(t, f, &super, "admin1", model.RoleAdminCentro)

	u, err := f.users.FindByUsername(context.Background(), "admin1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdminCentro, u.Role)
}

// ── Tests: Login / Refresh ───────────────────────────────────────────────────

func TestLogin_IssuesAccessAndRefreshPair(t *testing.T) {
	f := newFixture(t)
	register(t, f, nil, "maria", "")

	resp, err := f.authSvc.Login(context.Background(), dto.LoginRequest{Identifier: "maria", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.Equal(t, "maria", resp.User.Username)

	claims, err := authz.ParseToken(f.cfg.JWTSecret, resp.AccessToken, authz.TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.ID)
	assert.Equal(t, model.RoleUser, claims.Role)
	assert.ElementsMatch(t, resp.User.Permissions, claims.Permissions)

	_, err = authz.ParseToken(f.cfg.JWTSecret, resp.RefreshToken, authz.TokenAccess)
	assert.ErrorIs(t, err, apierror.ErrUnauthenticated, "refresh token must not work as bearer")
}

func TestLogin_EmailAlias(t *testing.T) {
	f := newFixture(t)
	register(t, f, nil, "maria", "")

	_, err := f.authSvc.Login(context.Background(), dto.LoginRequest{Email: "maria@example.com", Password: "password123"})
	assert.NoError(t, err)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newFixture(t)
	register(t, f, nil, "maria", "")

	_, err := f.authSvc.Login(context.Background(), dto.LoginRequest{Identifier: "maria", Password: "wrong"})
	assert.ErrorIs(t, err, apierror.ErrInvalidCredentials)
}

func TestRefresh_PicksUpRoleChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	super := f.superAdmin(t)
	register(t, f, nil, "maria", "")

	login, err := f.authSvc.Login(ctx, dto.LoginRequest{Identifier: "maria", Password: "password123"})
	require.NoError(t, err)
	u, err := f.users.FindByUsername(ctx, "maria")
	require.NoError(t, err)
	_, err = f.userSvc.ChangeRole(ctx, super, u.ID, model.RoleAdminCentro)
	require.NoError(t, err)

	refreshed, err := f.authSvc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdminCentro, refreshed.User.Role)

	_, err = f.authSvc.Refresh(ctx, login.AccessToken)
	assert.ErrorIs(t, err, apierror.ErrUnauthenticated)
}

func TestRefresh_DeletedUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	register(t, f, nil, "maria", "")
	login, err := f.authSvc.Login(ctx, dto.LoginRequest{Identifier: "maria", Password: "password123"})
	require.NoError(t, err)

	u, err := f.users.FindByUsername(ctx, "maria")
	require.NoError(t, err)
	require.NoError(t, f.users.Delete(ctx, u.ID))

	_, err = f.authSvc.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, apierror.ErrUnauthenticated)
}

// ── Tests: Logout ────────────────────────────────────────────────────────────

func TestLogout_RevokesToken(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	denylist := cache.NewDenylist(rdb)

	f := newFixture(t)
	authSvc := service.NewAuthService(f.users, f.userSvc, denylist, nil, f.cfg)
	ctx := context.Background()
	register(t, f, nil, "maria", "")

	login, err := authSvc.Login(ctx, dto.LoginRequest{Identifier: "maria", Password: "password123"})
	require.NoError(t, err)
	claims, err := authz.ParseToken(f.cfg.JWTSecret, login.AccessToken, authz.TokenAccess)
	require.NoError(t, err)

	revoked, err := denylist.IsRevoked(ctx, claims.RegisteredClaims.ID)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, authSvc.Logout(ctx, claims, ""))

	revoked, err = denylist.IsRevoked(ctx, claims.RegisteredClaims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl := mr.TTL("revoked_jti:" + claims.RegisteredClaims.ID)
	assert.True(t, ttl > 0 && ttl <= time.Hour, "denylist entry expires with the token, got %s", ttl)
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	mr := miniredis.RunT(t)
	denylist := cache.NewDenylist(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	f := newFixture(t)
	authSvc := service.NewAuthService(f.users, f.userSvc, denylist, nil, f.cfg)
	ctx := context.Background()
	register(t, f, nil, "maria", "")

	login, err := authSvc.Login(ctx, dto.LoginRequest{Identifier: "maria", Password: "password123"})
	require.NoError(t, err)
	claims, err := authz.ParseToken(f.cfg.JWTSecret, login.AccessToken, authz.TokenAccess)
	require.NoError(t, err)

	_, err = authSvc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err, "refresh works before logout")

	require.NoError(t, authSvc.Logout(ctx, claims, login.RefreshToken))

	_, err = authSvc.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, apierror.ErrUnauthenticated)
}

func TestLogout_RejectsForeignRefreshToken(t *testing.T) {
	mr := miniredis.RunT(t)
	denylist := cache.NewDenylist(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	f := newFixture(t)
	authSvc := service.NewAuthService(f.users, f.userSvc, denylist, nil, f.cfg)
	ctx := context.Background()
	register(t, f, nil, "maria", "")
	register(t, f, nil, "pedro", "")

	maria, err := authSvc.Login(ctx, dto.LoginRequest{Identifier: "maria", Password: "password123"})
	require.NoError(t, err)
	pedro, err := authSvc.Login(ctx, dto.LoginRequest{Identifier: "pedro", Password: "password123"})
	require.NoError(t, err)
	claims, err := authz.ParseToken(f.cfg.JWTSecret, maria.AccessToken, authz.TokenAccess)
	require.NoError(t, err)

	err = authSvc.Logout(ctx, claims, pedro.RefreshToken)
	assert.ErrorIs(t, err, apierror.ErrAccessDenied)

	err = authSvc.Logout(ctx, claims, "garbage")
	assert.ErrorIs(t, err, apierror.ErrValidation)

	_, err = authSvc.Refresh(ctx, pedro.RefreshToken)
	assert.NoError(t, err)
}
