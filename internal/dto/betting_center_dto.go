package dto

import "time"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateBettingCenterRequest struct {
	Name    string `json:"name"     validate:"required,min=1,max=120"`
	Address string `json:"address"  validate:"required,min=1,max=255"`
	AdminID string `json:"admin_id" validate:"required,uuid"`
}

type UpdateBettingCenterRequest struct {
	Name    *string `json:"name"    validate:"omitempty,min=1,max=120"`
	Address *string `json:"address" validate:"omitempty,min=1,max=255"`
}

type AssignUserRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

type ChangeAdminRequest struct {
	NewAdminID string `json:"new_admin_id" validate:"required,uuid"`
}

type PermissionChange struct {
	Action     string `json:"action"     validate:"required,oneof=assign revoke"`
	Permission string `json:"permission" validate:"required"`
}

type ManagePermissionsRequest struct {
	UserID      string             `json:"user_id"     validate:"required,uuid"`
	Permissions []PermissionChange `json:"permissions" validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type AssignedUserView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// CenterTaquillaView is a kiosk as embedded in a center, read live.
type CenterTaquillaView struct {
	ID           string            `json:"id"`
	Number       int               `json:"number"`
	Status       string            `json:"status"`
	AssignedUser *AssignedUserView `json:"assigned_user"`
}

type BettingCenterResponse struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	Address         string               `json:"address"`
	AdminID         string               `json:"admin_id"`
	Taquillas       []CenterTaquillaView `json:"taquillas"`
	AssociatedUsers []string             `json:"associated_users"`
	CreatedAt       time.Time            `json:"created_at"`
}
