package model

// Roles, from most to least privileged.
const (
	RoleSuperAdmin  = "super_admin"
	RoleAdminCentro = "admin_centro"
	RoleUser        = "user"
)

// PermissionAll is the wildcard stored in the super_admin default set.
const PermissionAll = "all"

// PermissionViewSummaries gates the printable center report.
const PermissionViewSummaries = "view_summaries"

// Taquilla operational states.
const (
	TaquillaActive      = "active"
	TaquillaInactive    = "inactive"
	TaquillaMaintenance = "maintenance"
)

// Roles lists every valid role in privilege order.
var Roles = []string{RoleSuperAdmin, RoleAdminCentro, RoleUser}

// IsValidRole reports whether role is one of Roles.
func IsValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsValidTaquillaStatus reports whether status is active, inactive or maintenance.
func IsValidTaquillaStatus(status string) bool {
	switch status {
	case TaquillaActive, TaquillaInactive, TaquillaMaintenance:
		return true
	}
	return false
}

// PermissionSeed is a catalog entry created at initialization.
type PermissionSeed struct {
	Name        string
	Description string
}

// DefaultPermissions is the fixed catalog seeded on startup.
var DefaultPermissions = []PermissionSeed{
	{"view_centers", "Ver centros de apuestas"},
	{"manage_taquillas", "Gestionar taquillas"},
	{"delete_tickets", "Eliminar tickets"},
	{"view_tickets", "Ver tickets"},
	{"reprint_tickets", "Reimprimir tickets"},
	{"view_summaries", "Ver resúmenes"},
	{"manage_configuration", "Gestionar configuración"},
	{"configure_printer", "Configurar impresora"},
	{"sell_tickets", "Vender tickets"},
}

// DefaultRolePermissions is the baseline applied by role-permission initialization.
func DefaultRolePermissions() map[string][]string {
	return map[string][]string{
		RoleSuperAdmin: {PermissionAll},
		RoleAdminCentro: {
			"view_centers",
			"manage_taquillas",
			"delete_tickets",
			"view_tickets",
			"reprint_tickets",
			"view_summaries",
			"manage_configuration",
		},
		RoleUser: {
			"configure_printer",
			"sell_tickets",
			"delete_tickets",
			"reprint_tickets",
			"view_summaries",
		},
	}
}
