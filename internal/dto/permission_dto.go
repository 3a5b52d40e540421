package dto

type CreatePermissionRequest struct {
	Name        string `json:"name"        validate:"required,min=1,max=64"`
	Description string `json:"description" validate:"max=255"`
}

type UpdatePermissionRequest struct {
	Name        *string `json:"name"        validate:"omitempty,min=1,max=64"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

// UserPermissionRequest names the permission, not its catalog id.
type UserPermissionRequest struct {
	UserID     string `json:"user_id"    validate:"required,uuid"`
	Permission string `json:"permission" validate:"required"`
}

type PermissionResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type SetRolePermissionsRequest struct {
	Permissions []string `json:"permissions" validate:"required,dive,required"`
}

type RolePermissionsResponse struct {
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// RolePermissionsRequest names the role in the body, for PUT /role-permissions.
type RolePermissionsRequest struct {
	Role        string   `json:"role"        validate:"required"`
	Permissions []string `json:"permissions" validate:"required,dive,required"`
}
