package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Configuration stores the operating limits of one betting center.
// Bounds are not cross-checked (min <= max is the caller's concern).
type Configuration struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CenterID           uuid.UUID        `gorm:"type:uuid;uniqueIndex;not null"`
	MinSaleLimit       *decimal.Decimal `gorm:"type:decimal(14,2)"`
	MaxSaleLimit       *decimal.Decimal `gorm:"type:decimal(14,2)"`
	MinHorseLimit      *decimal.Decimal `gorm:"type:decimal(14,2)"`
	MaxHorseLimit      *decimal.Decimal `gorm:"type:decimal(14,2)"`
	MaxTicketsToDelete *int
	NoLimit            bool `gorm:"not null;default:false"`
	MinHorsesPerRace   *int
	FixedDividend      *decimal.Decimal `gorm:"type:decimal(14,2)"`
	MaxDividend        *decimal.Decimal `gorm:"type:decimal(14,2)"`
	MinDividend        *decimal.Decimal `gorm:"type:decimal(14,2)"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (Configuration) TableName() string { return "configurations" }
