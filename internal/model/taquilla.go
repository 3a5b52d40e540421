package model

import (
	"time"

	"github.com/google/uuid"
)

// Taquilla is a ticket-selling kiosk. It belongs to one betting center for its
// whole lifetime; (Number, BettingCenterID) is unique.
type Taquilla struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Number          int        `gorm:"not null;uniqueIndex:idx_taquilla_number_center"`
	BettingCenterID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_taquilla_number_center;index"`
	AssignedUserID  *uuid.UUID `gorm:"type:uuid;index"`
	Status          string     `gorm:"type:varchar(20);not null;default:'active'"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Taquilla) TableName() string { return "taquillas" }
