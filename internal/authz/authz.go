// Package authz decides whether a caller may act on a target entity.
//
// Rules by role:
//   - super_admin: allowed everywhere.
//   - admin_centro: allowed on centers it administers (center.AdminID == caller),
//     on taquillas and configurations under those centers, and on user-role
//     accounts assigned to one of those centers. Other admins and super_admins
//     are out of reach even when they share a center.
//   - user: allowed only on its own user record.
//
// Decisions are read-only. Every denial wraps apierror.ErrAccessDenied.
package authz

import (
	"fmt"

	"betadmin/internal/apierror"
	"betadmin/internal/model"

	"github.com/google/uuid"
)

// Principal is the authenticated caller, as carried by the access token.
type Principal struct {
	ID          uuid.UUID
	Role        string
	Permissions []string
}

func (p Principal) IsSuperAdmin() bool  { return p.Role == model.RoleSuperAdmin }
func (p Principal) IsAdminCentro() bool { return p.Role == model.RoleAdminCentro }

func deny(reason string) error {
	return fmt.Errorf("%w: %s", apierror.ErrAccessDenied, reason)
}

// RequireSuperAdmin allows only super_admin callers.
func RequireSuperAdmin(p Principal) error {
	if p.IsSuperAdmin() {
		return nil
	}
	return deny("se requiere rol de super administrador")
}

// RequireAdmin allows super_admin and admin_centro callers.
func RequireAdmin(p Principal) error {
	if p.IsSuperAdmin() || p.IsAdminCentro() {
		return nil
	}
	return deny("se requiere rol de administrador")
}

// CanManageCenter allows super_admin and the center's own admin.
func CanManageCenter(p Principal, center *model.BettingCenter) error {
	if p.IsSuperAdmin() {
		return nil
	}
	if p.IsAdminCentro() && center != nil && center.AdminID == p.ID {
		return nil
	}
	return deny("no eres el administrador de este centro de apuestas")
}

// CanManageTaquilla resolves the decision through the taquilla's owning center.
func CanManageTaquilla(p Principal, t *model.Taquilla, center *model.BettingCenter) error {
	if p.IsSuperAdmin() {
		return nil
	}
	if t == nil || center == nil || t.BettingCenterID != center.ID {
		return deny("la taquilla no pertenece a un centro que administres")
	}
	return CanManageCenter(p, center)
}

// CanAccessUser allows super_admin, the user itself, and an admin_centro whose
// administered centers intersect a user-role target's assigned centers.
func CanAccessUser(p Principal, target *model.User, administered []uuid.UUID) error {
	if p.IsSuperAdmin() {
		return nil
	}
	if target != nil && target.ID == p.ID {
		return nil
	}
	if p.IsAdminCentro() && inAdministeredCenter(target, administered) {
		return nil
	}
	return deny("no puedes acceder a la informacion de este usuario")
}

// CanAdministerUser is CanAccessUser without the self exception: it gates
// operations a user may not perform on its own account (permissions, centers).
func CanAdministerUser(p Principal, target *model.User, administered []uuid.UUID) error {
	if p.IsSuperAdmin() {
		return nil
	}
	if !p.IsAdminCentro() {
		return deny("no tienes permisos para administrar usuarios")
	}
	if inAdministeredCenter(target, administered) {
		return nil
	}
	return deny("el usuario no esta en tus centros asignados")
}

// CanAttachUser gates linking an account to a center: admin_centro may only
// attach user-role accounts.
func CanAttachUser(p Principal, target *model.User) error {
	if p.IsSuperAdmin() {
		return nil
	}
	if p.IsAdminCentro() && target != nil && target.Role == model.RoleUser {
		return nil
	}
	return deny("solo puedes asignar cuentas con rol 'user'")
}

func inAdministeredCenter(target *model.User, administered []uuid.UUID) bool {
	if target == nil || target.Role != model.RoleUser {
		return false
	}
	for _, centerID := range administered {
		if target.HasCenter(centerID) {
			return true
		}
	}
	return false
}

// RequireSelf allows only the owner of the record.
func RequireSelf(p Principal, userID uuid.UUID) error {
	if p.ID == userID {
		return nil
	}
	return deny("no puedes modificar la cuenta de otro usuario")
}

// HasPermission reports whether the caller holds name, directly or via the wildcard.
func HasPermission(p Principal, name string) bool {
	for _, perm := range p.Permissions {
		if perm == name || perm == model.PermissionAll {
			return true
		}
	}
	return false
}

// RequirePermission allows super_admin and callers holding name.
func RequirePermission(p Principal, name string) error {
	if p.IsSuperAdmin() || HasPermission(p, name) {
		return nil
	}
	return deny(fmt.Sprintf("falta el permiso %q", name))
}
