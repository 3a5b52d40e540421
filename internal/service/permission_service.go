package service

import (
	"context"

	"betadmin/internal/authz"
	"betadmin/internal/dto"
	"betadmin/internal/model"
	"betadmin/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type PermissionService interface {
	Create(ctx context.Context, caller authz.Principal, req dto.CreatePermissionRequest) (*dto.PermissionResponse, error)
	List(ctx context.Context) ([]dto.PermissionResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.PermissionResponse, error)
	Update(ctx context.Context, caller authz.Principal, id uuid.UUID, req dto.UpdatePermissionRequest) (*dto.PermissionResponse, error)
	Delete(ctx context.Context, caller authz.Principal, id uuid.UUID) error
	AssignToUser(ctx context.Context, caller authz.Principal, req dto.UserPermissionRequest) error
	RevokeFromUser(ctx context.Context, caller authz.Principal, req dto.UserPermissionRequest) error
	// ListForUser returns the user's permissions; the "all" marker expands to the catalog.
	ListForUser(ctx context.Context, caller authz.Principal, userID uuid.UUID) ([]string, error)
	// SeedCatalog inserts the missing entries of model.DefaultPermissions.
	SeedCatalog(ctx context.Context) error
}

type permissionService struct {
	catalog repository.PermissionRepository
	users   repository.UserRepository
	centers repository.BettingCenterRepository
}

func NewPermissionService(
	catalog repository.PermissionRepository,
	users repository.UserRepository,
	centers repository.BettingCenterRepository,
) PermissionService {
	return &permissionService{catalog: catalog, users: users, centers: centers}
}

func (s *permissionService) Create(ctx context.Context, caller authz.Principal, req dto.CreatePermissionRequest) (*dto.PermissionResponse, error) {
	if err := authz.RequireSuperAdmin(caller); err != nil {
		return nil, err
	}
	p := &model.Permission{Name: req.Name, Description: req.Description}
	if err := s.catalog.Create(ctx, p); err != nil {
		return nil, err
	}
	resp := toPermissionResponse(p)
	return &resp, nil
}

func (s *permissionService) List(ctx context.Context) ([]dto.PermissionResponse, error) {
	list, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PermissionResponse, len(list))
	for i := range list {
		out[i] = toPermissionResponse(&list[i])
	}
	return out, nil
}

func (s *permissionService) Get(ctx context.Context, id uuid.UUID) (*dto.PermissionResponse, error) {
	p, err := s.catalog.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toPermissionResponse(p)
	return &resp, nil
}

// Update renames or re-describes a catalog entry. Users and role defaults
// holding the old name are not rewritten.
func (s *permissionService) Update(ctx context.Context, caller authz.Principal, id uuid.UUID, req dto.UpdatePermissionRequest) (*dto.PermissionResponse, error) {
	if err := authz.RequireSuperAdmin(caller); err != nil {
		return nil, err
	}
	p, err := s.catalog.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if err := s.catalog.Update(ctx, p); err != nil {
		return nil, err
	}
	resp := toPermissionResponse(p)
	return &resp, nil
}

func (s *permissionService) Delete(ctx context.Context, caller authz.Principal, id uuid.UUID) error {
	if err := authz.RequireSuperAdmin(caller); err != nil {
		return err
	}
	return s.catalog.Delete(ctx, id)
}

// target resolves the user named by req and checks the caller administers it.
func (s *permissionService) target(ctx context.Context, caller authz.Principal, req dto.UserPermissionRequest) (uuid.UUID, error) {
	userID, err := ParseID(req.UserID)
	if err != nil {
		return uuid.Nil, err
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return uuid.Nil, err
	}
	administered, err := administeredCenters(ctx, s.centers, caller)
	if err != nil {
		return uuid.Nil, err
	}
	if err := authz.CanAdministerUser(caller, u, administered); err != nil {
		return uuid.Nil, err
	}
	if err := validatePermissions(ctx, s.catalog, []string{req.Permission}, false); err != nil {
		return uuid.Nil, err
	}
	return userID, nil
}

func (s *permissionService) AssignToUser(ctx context.Context, caller authz.Principal, req dto.UserPermissionRequest) error {
	userID, err := s.target(ctx, caller, req)
	if err != nil {
		return err
	}
	return s.users.AddPermission(ctx, userID, req.Permission)
}

func (s *permissionService) RevokeFromUser(ctx context.Context, caller authz.Principal, req dto.UserPermissionRequest) error {
	userID, err := s.target(ctx, caller, req)
	if err != nil {
		return err
	}
	return s.users.RemovePermission(ctx, userID, req.Permission)
}

func (s *permissionService) ListForUser(ctx context.Context, caller authz.Principal, userID uuid.UUID) ([]string, error) {
	u, err := s.users.FindByID(ctx, userID)
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

	for _, name := range u.Permissions {
		if name != model.PermissionAll {
			continue
		}
		list, err := s.catalog.List(ctx)
		if err != nil {
			return nil, err
		}
		names := make([]string, len(list))
		for i, p := range list {
			names[i] = p.Name
		}
		return names, nil
	}
	return append([]string{}, u.Permissions...), nil
}

func (s *permissionService) SeedCatalog(ctx context.Context) error {
	created := 0
	for _, seed := range model.DefaultPermissions {
		if _, err := s.catalog.FindByName(ctx, seed.Name); err == nil {
			continue
		} else if !isNotFound(err) {
			return err
		}
		if err := s.catalog.Create(ctx, &model.Permission{Name: seed.Name, Description: seed.Description}); err != nil {
			return err
		}
		created++
	}
	if created > 0 {
		log.Info().Int("created", created).Msg("permission catalog seeded")
	}
	return nil
}
