package service

import (
	"context"
	"fmt"

	"betadmin/internal/apierror"
	"betadmin/internal/authz"
	"betadmin/internal/config"
	"betadmin/internal/dto"
	"betadmin/internal/model"
	"betadmin/internal/repository"
	"betadmin/internal/worker"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	// Create registers an account seeded with the role's default permissions.
	Create(ctx context.Context, username, email, password, role string) (*model.User, error)
	// Authenticate resolves identifier (email or username) and verifies password.
	Authenticate(ctx context.Context, identifier, password string) (*model.User, error)
	Get(ctx context.Context, caller authz.Principal, id uuid.UUID) (*dto.UserResponse, error)
	List(ctx context.Context, caller authz.Principal) ([]dto.UserResponse, error)
	Update(ctx context.Context, caller authz.Principal, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, caller authz.Principal, id uuid.UUID) error
	ChangePassword(ctx context.Context, caller authz.Principal, id uuid.UUID, req dto.ChangePasswordRequest) error
	ChangeRole(ctx context.Context, caller authz.Principal, id uuid.UUID, role string) (*dto.UserResponse, error)
	// EnsureSuperAdmin creates the bootstrap account unless the username or email exists.
	EnsureSuperAdmin(ctx context.Context, username, email, password string) error
}

type userService struct {
	users        repository.UserRepository
	centers      repository.BettingCenterRepository
	roleDefaults repository.RoleDefaultsRepository
	dispatcher   *worker.Dispatcher
	cfg          *config.Config
}

func NewUserService(
	users repository.UserRepository,
	centers repository.BettingCenterRepository,
	roleDefaults repository.RoleDefaultsRepository,
	dispatcher *worker.Dispatcher,
	cfg *config.Config,
) UserService {
	return &userService{users: users, centers: centers, roleDefaults: roleDefaults, dispatcher: dispatcher, cfg: cfg}
}

func (s *userService) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func (s *userService) Create(ctx context.Context, username, email, password, role string) (*model.User, error) {
	if !model.IsValidRole(role) {
		return nil, apierror.ErrInvalidRole
	}
	perms, err := s.roleDefaults.Get(ctx, role)
	if err != nil {
		return nil, err
	}
	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Username:        username,
		Email:           email,
		PasswordHash:    hash,
		Role:            role,
		Permissions:     pq.StringArray(perms),
		AssignedCenters: pq.StringArray{},
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) Authenticate(ctx context.Context, identifier, password string) (*model.User, error) {
	u, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if isNotFound(err) {
			return nil, apierror.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, apierror.ErrInvalidCredentials
	}
	return u, nil
}

// load fetches the target and checks the caller may see it.
func (s *userService) load(ctx context.Context, caller authz.Principal, id uuid.UUID) (*model.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	administered, err := administeredCenters(ctx, s.centers, caller)
	if err != nil {
		return nil, err
	}
	if err := authz.CanAccessUser(caller, u, administered); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) Get(ctx context.Context, caller authz.Principal, id uuid.UUID) (*dto.UserResponse, error) {
	u, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(u)
	return &resp, nil
}

// List returns every user to a super_admin, and the users assigned to the
// caller's centers to an admin_centro.
func (s *userService) List(ctx context.Context, caller authz.Principal) ([]dto.UserResponse, error) {
	if err := authz.RequireAdmin(caller); err != nil {
		return nil, err
	}

	var users []model.User
	var err error
	if caller.IsSuperAdmin() {
		users, err = s.users.List(ctx)
	} else {
		var centers []uuid.UUID
		if centers, err = administeredCenters(ctx, s.centers, caller); err == nil {
			users, err = s.users.ListByCenters(ctx, centers)
		}
	}
	if err != nil {
		return nil, err
	}

	out := make([]dto.UserResponse, len(users))
	for i := range users {
		out[i] = toUserResponse(&users[i])
	}
	return out, nil
}

func (s *userService) Update(ctx context.Context, caller authz.Principal, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	u, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if req.Username != nil {
		u.Username = *req.Username
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	resp := toUserResponse(u)
	return &resp, nil
}

// Delete is allowed to super_admin and to the account owner. References held
// by centers and taquillas are left in place.
func (s *userService) Delete(ctx context.Context, caller authz.Principal, id uuid.UUID) error {
	if !caller.IsSuperAdmin() {
		if err := authz.RequireSelf(caller, id); err != nil {
			return err
		}
	}
	return s.users.Delete(ctx, id)
}

func (s *userService) ChangePassword(ctx context.Context, caller authz.Principal, id uuid.UUID, req dto.ChangePasswordRequest) error {
	if err := authz.RequireSelf(caller, id); err != nil {
		return err
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return fmt.Errorf("%w: la contraseña actual es incorrecta", apierror.ErrInvalidCredentials)
	}
	hash, err := s.hash(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, id, hash); err != nil {
		return err
	}

	s.notify(ctx, worker.EmailJobPayload{
		ToEmail: u.Email,
		Subject: "Tu contraseña fue cambiada",
		Body:    fmt.Sprintf("Hola %s, la contraseña de tu cuenta fue cambiada. Si no fuiste tu, contacta a un administrador.", u.Username),
	})
	return nil
}

// ChangeRole replaces the role and resets permissions to the new role's defaults,
// discarding any per-user overrides.
func (s *userService) ChangeRole(ctx context.Context, caller authz.Principal, id uuid.UUID, role string) (*dto.UserResponse, error) {
	if err := authz.RequireSuperAdmin(caller); err != nil {
		return nil, err
	}
	if !model.IsValidRole(role) {
		return nil, apierror.ErrInvalidRole
	}
	perms, err := s.roleDefaults.Get(ctx, role)
	if err != nil {
		return nil, err
	}
	if err := s.users.ChangeRole(ctx, id, role, perms); err != nil {
		return nil, err
	}
	log.Info().Str("actor", caller.ID.String()).Str("user", id.String()).Str("role", role).Msg("user role changed")

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(u)
	return &resp, nil
}

func (s *userService) EnsureSuperAdmin(ctx context.Context, username, email, password string) error {
	if _, err := s.users.FindByIdentifier(ctx, username); err == nil {
		return nil
	} else if !isNotFound(err) {
		return err
	}
	if _, err := s.users.FindByIdentifier(ctx, email); err == nil {
		return nil
	} else if !isNotFound(err) {
		return err
	}
	if _, err := s.Create(ctx, username, email, password, model.RoleSuperAdmin); err != nil {
		return err
	}
	log.Info().Str("username", username).Msg("bootstrap super_admin created")
	return nil
}

// notify enqueues an email; failures are logged and never fail the caller.
func (s *userService) notify(ctx context.Context, payload worker.EmailJobPayload) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.EnqueueEmail(ctx, payload); err != nil {
		log.Warn().Err(err).Str("to", payload.ToEmail).Msg("email enqueue failed")
	}
}
