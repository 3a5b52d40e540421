package service

import (
	"context"
	"sort"

	"betadmin/internal/apierror"
	"betadmin/internal/authz"
	"betadmin/internal/dto"
	"betadmin/internal/model"
	"betadmin/internal/repository"

	"github.com/rs/zerolog/log"
)

type RolePermissionsService interface {
	Get(ctx context.Context, caller authz.Principal, role string) (*dto.RolePermissionsResponse, error)
	Set(ctx context.Context, caller authz.Principal, role string, permissions []string) (*dto.RolePermissionsResponse, error)
	List(ctx context.Context, caller authz.Principal) ([]dto.RolePermissionsResponse, error)
	// Initialize overwrites all three roles with model.DefaultRolePermissions.
	Initialize(ctx context.Context, caller authz.Principal) ([]dto.RolePermissionsResponse, error)
	// SeedIfEmpty applies the baseline when no role has defaults yet.
	SeedIfEmpty(ctx context.Context) error
}

type rolePermissionsService struct {
	defaults repository.RoleDefaultsRepository
	catalog  repository.PermissionRepository
}

func NewRolePermissionsService(defaults repository.RoleDefaultsRepository, catalog repository.PermissionRepository) RolePermissionsService {
	return &rolePermissionsService{defaults: defaults, catalog: catalog}
}

func (s *rolePermissionsService) Get(ctx context.Context, caller authz.Principal, role string) (*dto.RolePermissionsResponse, error) {
	if err := authz.RequireSuperAdmin(caller); err != nil {
		return nil, err
	}
	if !model.IsValidRole(role) {
		return nil, apierror.ErrInvalidRole
	}
	perms, err := s.defaults.Get(ctx, role)
	if err != nil {
		return nil, err
	}
	return &dto.RolePermissionsResponse{Role: role, Permissions: perms}, nil
}

// Set replaces the role's defaults. Existing users keep their permissions
// until their role is changed.
func (s *rolePermissionsService) Set(ctx context.Context, caller authz.Principal, role string, permissions []string) (*dto.RolePermissionsResponse, error) {
	if err := authz.RequireSuperAdmin(caller); err != nil {
		return nil, err
	}
	if !model.IsValidRole(role) {
		return nil, apierror.ErrInvalidRole
	}
	if err := validatePermissions(ctx, s.catalog, permissions, true); err != nil {
		return nil, err
	}
	perms := append([]string{}, permissions...)
	if err := s.defaults.Set(ctx, role, perms); err != nil {
		return nil, err
	}
	log.Info().Str("actor", caller.ID.String()).Str("role", role).Strs("permissions", perms).Msg("role defaults updated")
	return &dto.RolePermissionsResponse{Role: role, Permissions: perms}, nil
}

func (s *rolePermissionsService) List(ctx context.Context, caller authz.Principal) ([]dto.RolePermissionsResponse, error) {
	if err := authz.RequireSuperAdmin(caller); err != nil {
		return nil, err
	}
	rows, err := s.defaults.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RolePermissionsResponse, len(rows))
	for i, r := range rows {
		out[i] = dto.RolePermissionsResponse{Role: r.Role, Permissions: append([]string{}, r.Permissions...)}
	}
	return out, nil
}

func (s *rolePermissionsService) Initialize(ctx context.Context, caller authz.Principal) ([]dto.RolePermissionsResponse, error) {
	if err := authz.RequireSuperAdmin(caller); err != nil {
		return nil, err
	}
	out, err := s.applyBaseline(ctx)
	if err != nil {
		return nil, err
	}
	log.Info().Str("actor", caller.ID.String()).Msg("role defaults initialized")
	return out, nil
}

func (s *rolePermissionsService) SeedIfEmpty(ctx context.Context) error {
	n, err := s.defaults.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := s.applyBaseline(ctx); err != nil {
		return err
	}
	log.Info().Msg("role defaults seeded")
	return nil
}

func (s *rolePermissionsService) applyBaseline(ctx context.Context) ([]dto.RolePermissionsResponse, error) {
	baseline := model.DefaultRolePermissions()
	out := make([]dto.RolePermissionsResponse, 0, len(baseline))
	for _, role := range model.Roles {
		perms := baseline[role]
		if err := s.defaults.Set(ctx, role, perms); err != nil {
			return nil, err
		}
		out = append(out, dto.RolePermissionsResponse{Role: role, Permissions: perms})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Role < out[j].Role })
	return out, nil
}
