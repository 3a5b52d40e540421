package dto

type CreateTaquillaRequest struct {
	Number          int    `json:"number"            validate:"required,min=1"`
	BettingCenterID string `json:"betting_center_id" validate:"required,uuid"`
}

type UpdateTaquillaRequest struct {
	Number *int    `json:"number" validate:"omitempty,min=1"`
	Status *string `json:"status"`
}

type ChangeTaquillaStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type TaquillaResponse struct {
	ID              string  `json:"id"`
	Number          int     `json:"number"`
	BettingCenterID string  `json:"betting_center_id"`
	AssignedUserID  *string `json:"assigned_user_id"`
	Status          string  `json:"status"`
}
