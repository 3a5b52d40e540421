package dto

import "time"

type UpdateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=50"`
	Email    *string `json:"email"    validate:"omitempty,email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=72"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	Permissions      []string  `json:"permissions"`
	AssignedCenters  []string  `json:"assigned_centers"`
	AssignedTaquilla *string   `json:"assigned_taquilla"`
	CreatedAt        time.Time `json:"created_at"`
}
