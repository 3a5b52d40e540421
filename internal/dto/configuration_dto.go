package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConfigurationRequest carries the operating limits of a center. Absent fields
// are left untouched on update.
type ConfigurationRequest struct {
	MinSaleLimit       *decimal.Decimal `json:"min_sale_limit"`
	MaxSaleLimit       *decimal.Decimal `json:"max_sale_limit"`
	MinHorseLimit      *decimal.Decimal `json:"min_horse_limit"`
	MaxHorseLimit      *decimal.Decimal `json:"max_horse_limit"`
	MaxTicketsToDelete *int             `json:"max_tickets_to_delete" validate:"omitempty,min=0"`
	NoLimit            *bool            `json:"no_limit"`
	MinHorsesPerRace   *int             `json:"min_horses_per_race"   validate:"omitempty,min=0"`
	FixedDividend      *decimal.Decimal `json:"fixed_dividend"`
	MaxDividend        *decimal.Decimal `json:"max_dividend"`
	MinDividend        *decimal.Decimal `json:"min_dividend"`
}

type ConfigurationResponse struct {
	ID                 string           `json:"id"`
	CenterID           string           `json:"center_id"`
	MinSaleLimit       *decimal.Decimal `json:"min_sale_limit"`
	MaxSaleLimit       *decimal.Decimal `json:"max_sale_limit"`
	MinHorseLimit      *decimal.Decimal `json:"min_horse_limit"`
	MaxHorseLimit      *decimal.Decimal `json:"max_horse_limit"`
	MaxTicketsToDelete *int             `json:"max_tickets_to_delete"`
	NoLimit            bool             `json:"no_limit"`
	MinHorsesPerRace   *int             `json:"min_horses_per_race"`
	FixedDividend      *decimal.Decimal `json:"fixed_dividend"`
	MaxDividend        *decimal.Decimal `json:"max_dividend"`
	MinDividend        *decimal.Decimal `json:"min_dividend"`
	UpdatedAt          time.Time        `json:"updated_at"`
}
