package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// BettingCenter groups taquillas under one admin_centro user.
// Taquillas and AssociatedUsers hold ids; kiosk details are always read live
// from the taquillas table when a center is serialized.
type BettingCenter struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name            string         `gorm:"uniqueIndex;not null"`
	Address         string         `gorm:"not null"`
	AdminID         uuid.UUID      `gorm:"type:uuid;not null;index"`
	Taquillas       pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	AssociatedUsers pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (BettingCenter) TableName() string { return "betting_centers" }

// HasUser reports whether userID is an associated user of the center.
func (b *BettingCenter) HasUser(userID uuid.UUID) bool {
	return containsString(b.AssociatedUsers, userID.String())
}
