package service

import (
	"context"
	"fmt"
	"time"

	"betadmin/internal/apierror"
	"betadmin/internal/authz"
	"betadmin/internal/config"
	"betadmin/internal/dto"
	"betadmin/internal/model"
	"betadmin/internal/repository"
	"betadmin/internal/worker"

	"github.com/rs/zerolog/log"
)

// TokenRevoker records revoked tokens. cache.Denylist implements it.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type AuthService interface {
	// Register creates a user-role account. A super_admin caller may request any role.
	Register(ctx context.Context, caller *authz.Principal, req dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	// Logout revokes the access token and, when given, the session's refresh token.
	Logout(ctx context.Context, claims *authz.Claims, refreshToken string) error
}

type authService struct {
	users      repository.UserRepository
	userSvc    UserService
	revoker    TokenRevoker
	dispatcher *worker.Dispatcher
	cfg        *config.Config
}

func NewAuthService(
	users repository.UserRepository,
	userSvc UserService,
	revoker TokenRevoker,
	dispatcher *worker.Dispatcher,
	cfg *config.Config,
) AuthService {
	return &authService{users: users, userSvc: userSvc, revoker: revoker, dispatcher: dispatcher, cfg: cfg}
}

func (s *authService) Register(ctx context.Context, caller *authz.Principal, req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	role := model.RoleUser
	if req.Role != "" && req.Role != model.RoleUser {
		if caller == nil {
			return nil, fmt.Errorf("%w: solo un super administrador puede asignar el rol %q", apierror.ErrAccessDenied, req.Role)
		}
		if err := authz.RequireSuperAdmin(*caller); err != nil {
			return nil, err
		}
		role = req.Role
	}

	u, err := s.userSvc.Create(ctx, req.Username, req.Email, req.Password, role)
	if err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		payload := worker.EmailJobPayload{
			ToEmail: u.Email,
			Subject: "Bienvenido",
			Body:    fmt.Sprintf("Hola %s, tu cuenta fue creada con el rol %s.", u.Username, u.Role),
		}
		if err := s.dispatcher.EnqueueEmail(ctx, payload); err != nil {
			log.Warn().Err(err).Str("user", u.ID.String()).Msg("welcome email enqueue failed")
		}
	}

	return &dto.RegisterResponse{Message: "Usuario registrado exitosamente", UserID: u.ID.String()}, nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	u, err := s.userSvc.Authenticate(ctx, req.Login(), req.Password)
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

// Refresh re-reads the user so role and permission changes reach the new pair.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	claims, err := authz.ParseToken(s.cfg.JWTSecret, refreshToken, authz.TokenRefresh)
	if err != nil {
		return nil, err
	}
	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.RegisteredClaims.ID)
		if err != nil {
			log.Warn().Err(err).Msg("denylist unavailable, accepting refresh token")
		} else if revoked {
			return nil, fmt.Errorf("%w: token revocado", apierror.ErrUnauthenticated)
		}
	}
	p, err := claims.Principal()
	if err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, p.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: usuario no encontrado", apierror.ErrUnauthenticated)
		}
		return nil, err
	}
	return s.issue(u)
}

// Logout revokes the presented access token until it would expire. A refresh
// token must belong to the same user and is revoked as well.
func (s *authService) Logout(ctx context.Context, claims *authz.Claims, refreshToken string) error {
	if claims == nil {
		return nil
	}
	var refresh *authz.Claims
	if refreshToken != "" {
		rc, err := authz.ParseToken(s.cfg.JWTSecret, refreshToken, authz.TokenRefresh)
		if err != nil {
			return fmt.Errorf("%w: refresh_token invalido", apierror.ErrValidation)
		}
		if rc.ID != claims.ID {
			return fmt.Errorf("%w: el refresh token pertenece a otro usuario", apierror.ErrAccessDenied)
		}
		refresh = rc
	}
	if s.revoker == nil {
		return nil
	}
	for _, c := range []*authz.Claims{claims, refresh} {
		if c == nil || c.ExpiresAt == nil {
			continue
		}
		if err := s.revoker.Revoke(ctx, c.RegisteredClaims.ID, c.ExpiresAt.Time); err != nil {
			return err
		}
	}
	return nil
}

func (s *authService) issue(u *model.User) (*dto.LoginResponse, error) {
	p := authz.Principal{ID: u.ID, Role: u.Role, Permissions: append([]string{}, u.Permissions...)}

	access, err := authz.SignToken(s.cfg.JWTSecret,
		authz.NewClaims(p, authz.TokenAccess, time.Duration(s.cfg.JWTExpirationHours)*time.Hour))
	if err != nil {
		return nil, err
	}
	refresh, err := authz.SignToken(s.cfg.JWTSecret,
		authz.NewClaims(p, authz.TokenRefresh, time.Duration(s.cfg.JWTRefreshHours)*time.Hour))
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Message:      "Inicio de sesion exitoso",
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         toUserResponse(u),
	}, nil
}
