package router

import (
	"context"
	"time"

	"betadmin/internal/cache"
	"betadmin/internal/config"
	"betadmin/internal/handler"
	"betadmin/internal/infra"
	"betadmin/internal/middleware"
	"betadmin/internal/model"
	"betadmin/internal/repository"
	"betadmin/internal/service"
	"betadmin/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Repositories groups the data-access layer handed to NewServices.
type Repositories struct {
	Users          repository.UserRepository
	Centers        repository.BettingCenterRepository
	Taquillas      repository.TaquillaRepository
	Permissions    repository.PermissionRepository
	RoleDefaults   repository.RoleDefaultsRepository
	Configurations repository.ConfigurationRepository
}

// NewRepositories builds the gorm repositories over the shared pool. Role
// defaults are read through the redis cache when rdb is set.
func NewRepositories(cfg *config.Config, db *gorm.DB, rdb *redis.Client) Repositories {
	return Repositories{
		Users:          repository.NewUserRepository(db),
		Centers:        repository.NewBettingCenterRepository(db),
		Taquillas:      repository.NewTaquillaRepository(db),
		Permissions:    repository.NewPermissionRepository(db),
		RoleDefaults:   cache.NewRoleDefaults(repository.NewRoleDefaultsRepository(db), rdb, time.Duration(cfg.RoleCacheTTLSeconds)*time.Second),
		Configurations: repository.NewConfigurationRepository(db),
	}
}

// Services is the business layer shared by the HTTP routes and startup seeding.
type Services struct {
	Auth          service.AuthService
	Users         service.UserService
	Centers       service.BettingCenterService
	Taquillas     service.TaquillaService
	Permissions   service.PermissionService
	RoleDefaults  service.RolePermissionsService
	Configuration service.ConfigurationService

	// Revocations is nil when redis is not configured.
	Revocations middleware.RevocationChecker
}

// NewServices wires services over repos. db is only used to open transactions
// and may be nil; rdb enables the logout denylist; dispatcher may be nil.
func NewServices(cfg *config.Config, db *gorm.DB, rdb *redis.Client, repos Repositories, dispatcher *worker.Dispatcher) *Services {
	var revoker service.TokenRevoker
	var revocations middleware.RevocationChecker
	if rdb != nil {
		denylist := cache.NewDenylist(rdb)
		revoker, revocations = denylist, denylist
	}

	users := service.NewUserService(repos.Users, repos.Centers, repos.RoleDefaults, dispatcher, cfg)
	return &Services{
		Auth:          service.NewAuthService(repos.Users, users, revoker, dispatcher, cfg),
		Users:         users,
		Centers:       service.NewBettingCenterService(db, repos.Centers, repos.Users, repos.Taquillas, repos.Permissions, repos.Configurations),
		Taquillas:     service.NewTaquillaService(db, repos.Taquillas, repos.Centers, repos.Users, cfg),
		Permissions:   service.NewPermissionService(repos.Permissions, repos.Users, repos.Centers),
		RoleDefaults:  service.NewRolePermissionsService(repos.RoleDefaults, repos.Permissions),
		Configuration: service.NewConfigurationService(repos.Configurations, repos.Centers),
		Revocations:   revocations,
	}
}

// New returns the configured Gin engine: global middleware, health, metrics
// and every API route. ctx bounds the rate limiter purge goroutines.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailCB *infra.CircuitBreaker, svcs *Services) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())

	apiLimiter := middleware.NewRateLimiter("api", cfg.RateLimitPerMinute, time.Minute,
		"Demasiadas solicitudes. Intente nuevamente en un momento.")
	loginLimiter := middleware.NewRateLimiter("login", cfg.LoginRateLimitPerMinute, time.Minute,
		"Demasiados intentos de login. Intente en 1 minuto.")
	apiLimiter.StartPurge(ctx, 5*time.Minute)
	loginLimiter.StartPurge(ctx, 5*time.Minute)

	r.GET("/health", handler.Health(db, rdb, mailCB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("", apiLimiter.Handler())
	Mount(api, cfg, svcs, loginLimiter)

	ops := api.Group("/admin",
		middleware.JWTAuth(cfg.JWTSecret, svcs.Revocations),
		middleware.RequireRole(model.RoleSuperAdmin))
	ops.GET("/dead-letters", handler.DeadLetters(rdb))
	return r
}

// Mount registers the API routes on r. Authorization beyond the coarse role
// gates below is decided per entity by the services.
func Mount(r gin.IRouter, cfg *config.Config, svcs *Services, loginLimiter *middleware.RateLimiter) {
	authH := handler.NewAuthHandler(svcs.Auth)
	usersH := handler.NewUsersHandler(svcs.Users, svcs.Taquillas)
	centersH := handler.NewBettingCentersHandler(svcs.Centers, svcs.Taquillas)
	taquillasH := handler.NewTaquillasHandler(svcs.Taquillas)
	permsH := handler.NewPermissionsHandler(svcs.Permissions)
	rolePermsH := handler.NewRolePermissionsHandler(svcs.RoleDefaults)
	configH := handler.NewConfigurationHandler(svcs.Configuration)

	// Public
	login := []gin.HandlerFunc{authH.Login}
	if loginLimiter != nil {
		login = append([]gin.HandlerFunc{loginLimiter.Handler()}, login...)
	}
	r.POST("/register", middleware.OptionalJWT(cfg.JWTSecret, svcs.Revocations), authH.Register)
	r.POST("/login", login...)
	r.POST("/refresh", authH.Refresh)

	// Protected routes
	p := r.Group("", middleware.JWTAuth(cfg.JWTSecret, svcs.Revocations))
	superOnly := middleware.RequireRole(model.RoleSuperAdmin)
	admins := middleware.RequireRole(model.RoleSuperAdmin, model.RoleAdminCentro)

	p.POST("/logout", authH.Logout)

	p.GET("/users", admins, usersH.List)
	user := p.Group("/user")
	{
		user.GET("/:id", usersH.Get)
		user.PUT("/:id", usersH.Update)
		user.DELETE("/:id", usersH.Delete)
		user.PUT("/:id/change-password", usersH.ChangePassword)
		user.PUT("/:id/role", superOnly, usersH.ChangeRole)
		user.GET("/:id/taquillas", usersH.Taquillas)
	}

	centers := p.Group("/betting-centers", admins)
	{
		centers.POST("", superOnly, centersH.Create)
		centers.GET("", centersH.List)
		centers.GET("/:id", centersH.Get)
		centers.PUT("/:id", centersH.Update)
		centers.DELETE("/:id", superOnly, centersH.Delete)
		centers.GET("/:id/users", centersH.Users)
		centers.POST("/:id/assign-users", centersH.AssignUser)
		centers.DELETE("/:id/assign-users/:user_id", centersH.UnassignUser)
		centers.POST("/:id/manage-permissions", centersH.ManagePermissions)
		centers.POST("/:id/change-admin", superOnly, centersH.ChangeAdmin)
		centers.GET("/:id/taquillas", centersH.Taquillas)
		centers.GET("/:id/report", centersH.Report)
	}

	taquillas := p.Group("/taquillas", admins)
	{
		taquillas.POST("", taquillasH.Create)
		taquillas.GET("/:id", taquillasH.Get)
		taquillas.PUT("/:id", taquillasH.Update)
		taquillas.DELETE("/:id", taquillasH.Delete)
		taquillas.POST("/:id/assign-user", taquillasH.AssignUser)
		taquillas.POST("/:id/unassign-user", taquillasH.UnassignUser)
		taquillas.PATCH("/:id/status", taquillasH.ChangeStatus)
	}

	configuration := p.Group("/configuration", admins)
	{
		configuration.GET("/:center_id", configH.Get)
		configuration.POST("/:center_id", configH.Create)
		configuration.PUT("/:center_id", configH.Update)
		configuration.DELETE("/:center_id", superOnly, configH.Delete)
	}

	perms := p.Group("/permissions")
	{
		perms.GET("", permsH.List)
		perms.POST("", superOnly, permsH.Create)
		perms.POST("/assign", admins, permsH.Assign)
		perms.POST("/revoke", admins, permsH.Revoke)
		perms.GET("/:user_id", permsH.ForUser)
		perms.PUT("/catalog/:id", superOnly, permsH.Update)
		perms.DELETE("/catalog/:id", superOnly, permsH.Delete)
	}

	rolePerms := p.Group("/role-permissions", superOnly)
	{
		rolePerms.GET("", rolePermsH.List)
		rolePerms.PUT("", rolePermsH.SetFromBody)
		rolePerms.GET("/:role", rolePermsH.Get)
		rolePerms.PUT("/:role", rolePermsH.Set)
		rolePerms.POST("/initialize", rolePermsH.Initialize)
	}
}
