package service

import (
	"context"
	"errors"
	"fmt"

	"betadmin/internal/apierror"
	"betadmin/internal/authz"
	"betadmin/internal/dto"
	"betadmin/internal/model"
	"betadmin/internal/repository"

	"github.com/google/uuid"
)

// ParseID parses a path or body identifier; malformed ids are ErrInvalidID.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", apierror.ErrInvalidID, s)
	}
	return id, nil
}

// administeredCenters returns the ids of the centers p administers.
// Only admin_centro callers administer centers through ownership.
func administeredCenters(ctx context.Context, centers repository.BettingCenterRepository, p authz.Principal) ([]uuid.UUID, error) {
	if !p.IsAdminCentro() {
		return nil, nil
	}
	list, err := centers.ListByAdmin(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(list))
	for i, c := range list {
		ids[i] = c.ID
	}
	return ids, nil
}

// validatePermissions checks that every name is in the catalog. allowWildcard
// additionally accepts the "all" marker.
func validatePermissions(ctx context.Context, catalog repository.PermissionRepository, names []string, allowWildcard bool) error {
	wanted := make([]string, 0, len(names))
	for _, n := range names {
		if n == model.PermissionAll {
			if !allowWildcard {
				return fmt.Errorf("%w: %q", apierror.ErrInvalidPermission, n)
			}
			continue
		}
		wanted = append(wanted, n)
	}
	found, err := catalog.ListByNames(ctx, wanted)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(found))
	for _, p := range found {
		known[p.Name] = true
	}
	for _, n := range wanted {
		if !known[n] {
			return fmt.Errorf("%w: %q", apierror.ErrInvalidPermission, n)
		}
	}
	return nil
}

func isNotFound(err error) bool { return errors.Is(err, apierror.ErrNotFound) }

// ── Mappers ──────────────────────────────────────────────────────────────────

func toUserResponse(u *model.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:              u.ID.String(),
		Username:        u.Username,
		Email:           u.Email,
		Role:            u.Role,
		Permissions:     append([]string{}, u.Permissions...),
		AssignedCenters: append([]string{}, u.AssignedCenters...),
		CreatedAt:       u.CreatedAt,
	}
	if u.AssignedTaquilla != nil {
		s := u.AssignedTaquilla.String()
		resp.AssignedTaquilla = &s
	}
	return resp
}

func toTaquillaResponse(t *model.Taquilla) dto.TaquillaResponse {
	resp := dto.TaquillaResponse{
		ID:              t.ID.String(),
		Number:          t.Number,
		BettingCenterID: t.BettingCenterID.String(),
		Status:          t.Status,
	}
	if t.AssignedUserID != nil {
		s := t.AssignedUserID.String()
		resp.AssignedUserID = &s
	}
	return resp
}

func toPermissionResponse(p *model.Permission) dto.PermissionResponse {
	return dto.PermissionResponse{ID: p.ID.String(), Name: p.Name, Description: p.Description}
}

func toConfigurationResponse(c *model.Configuration) dto.ConfigurationResponse {
	return dto.ConfigurationResponse{
		ID:                 c.ID.String(),
		CenterID:           c.CenterID.String(),
		MinSaleLimit:       c.MinSaleLimit,
		MaxSaleLimit:       c.MaxSaleLimit,
		MinHorseLimit:      c.MinHorseLimit,
		MaxHorseLimit:      c.MaxHorseLimit,
		MaxTicketsToDelete: c.MaxTicketsToDelete,
		NoLimit:            c.NoLimit,
		MinHorsesPerRace:   c.MinHorsesPerRace,
		FixedDividend:      c.FixedDividend,
		MaxDividend:        c.MaxDividend,
		MinDividend:        c.MinDividend,
		UpdatedAt:          c.UpdatedAt,
	}
}
