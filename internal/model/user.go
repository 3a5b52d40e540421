package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// User is an account of any role.
// Permissions holds permission names; AssignedCenters holds betting center ids.
type User struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username         string         `gorm:"uniqueIndex;not null"`
	Email            string         `gorm:"uniqueIndex;not null"`
	PasswordHash     string         `gorm:"not null"`
	Role             string         `gorm:"type:varchar(20);not null;default:'user'"`
	Permissions      pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	AssignedCenters  pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	AssignedTaquilla *uuid.UUID     `gorm:"type:uuid"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (User) TableName() string { return "users" }

// HasCenter reports whether centerID is among the user's assigned centers.
func (u *User) HasCenter(centerID uuid.UUID) bool {
	return containsString(u.AssignedCenters, centerID.String())
}

// CenterIDs parses AssignedCenters, skipping malformed entries.
func (u *User) CenterIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(u.AssignedCenters))
	for _, s := range u.AssignedCenters {
		if id, err := uuid.Parse(s); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
