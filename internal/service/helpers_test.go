package service_test

import (
	"context"
	"testing"

	"betadmin/internal/authz"
	"betadmin/internal/config"
	"betadmin/internal/dto"
	"betadmin/internal/model"
	"betadmin/internal/repository/repotest"
	"betadmin/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ── Fixture ──────────────────────────────────────────────────────────────────

type fixture struct {
	users     *repotest.Users
	centers   *repotest.Centers
	taquillas *repotest.Taquillas
	catalog   *repotest.Permissions
	defaults  *repotest.RoleDefaults
	configs   *repotest.Configurations
	cfg       *config.Config

	userSvc     service.UserService
	authSvc     service.AuthService
	centerSvc   service.BettingCenterService
	taquillaSvc service.TaquillaService
	permSvc     service.PermissionService
	roleSvc     service.RolePermissionsService
	configSvc   service.ConfigurationService
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret-at-least-32-characters-long",
		JWTExpirationHours: 1,
		JWTRefreshHours:    24,
		BcryptCost:         bcrypt.MinCost,
	}
}

// newFixture wires every service over in-memory repositories with a seeded
// catalog and role defaults. The nil *gorm.DB makes transactions run inline.
func newFixture(t *testing.T, mutate ...func(*config.Config)) *fixture {
	t.Helper()
	f := &fixture{
		users:     repotest.NewUsers(),
		centers:   repotest.NewCenters(),
		taquillas: repotest.NewTaquillas(),
		catalog:   repotest.NewPermissions(),
		defaults:  repotest.NewRoleDefaults(),
		configs:   repotest.NewConfigurations(),
		cfg:       testConfig(),
	}
	for _, m := range mutate {
		m(f.cfg)
	}

	f.userSvc = service.NewUserService(f.users, f.centers, f.defaults, nil, f.cfg)
	f.authSvc = service.NewAuthService(f.users, f.userSvc, nil, nil, f.cfg)
	f.centerSvc = service.NewBettingCenterService(nil, f.centers, f.users, f.taquillas, f.catalog, f.configs)
	f.taquillaSvc = service.NewTaquillaService(nil, f.taquillas, f.centers, f.users, f.cfg)
	f.permSvc = service.NewPermissionService(f.catalog, f.users, f.centers)
	f.roleSvc = service.NewRolePermissionsService(f.defaults, f.catalog)
	f.configSvc = service.NewConfigurationService(f.configs, f.centers)

	ctx := context.Background()
	require.NoError(t, f.permSvc.SeedCatalog(ctx))
	require.NoError(t, f.roleSvc.SeedIfEmpty(ctx))
	return f
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func principalOf(u *model.User) authz.Principal {
	return authz.Principal{ID: u.ID, Role: u.Role, Permissions: u.Permissions}
}

func (f *fixture) newUser(t *testing.T, username, role string) (*model.User, authz.Principal) {
	t.Helper()
	u, err := f.userSvc.Create(context.Background(), username, username+"@example.com", "password123", role)
	require.NoError(t, err)
	return u, principalOf(u)
}

func (f *fixture) superAdmin(t *testing.T) authz.Principal {
	t.Helper()
	_, p := f.newUser(t, "root", model.RoleSuperAdmin)
	return p
}

// newCenter creates a center administered by a fresh admin_centro account.
func (f *fixture) newCenter(t *testing.T, super authz.Principal, name string) (uuid.UUID, authz.Principal) {
	t.Helper()
	admin, adminP := f.newUser(t, "admin-"+name, model.RoleAdminCentro)
	resp, err := f.centerSvc.Create(context.Background(), super, dtoCenter(name, admin.ID))
	require.NoError(t, err)
	return uuid.MustParse(resp.ID), adminP
}

func dtoCenter(name string, adminID uuid.UUID) dto.CreateBettingCenterRequest {
	return dto.CreateBettingCenterRequest{Name: name, Address: "Av. Principal 123", AdminID: adminID.String()}
}

// principalOfRole builds a caller that exists only in the token, enough for
// role-gated operations that never look the caller up.
func principalOfRole(role string) authz.Principal {
	return authz.Principal{ID: uuid.New(), Role: role}
}
