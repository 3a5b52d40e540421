package model

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Permission is a catalog entry referenced by name from users and roles.
type Permission struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"uniqueIndex;not null"`
	Description string
}

func (Permission) TableName() string { return "permissions" }

// RoleDefaultPermissions holds the permission set applied to new users of Role
// and re-applied on role change. One row per role.
type RoleDefaultPermissions struct {
	Role        string         `gorm:"type:varchar(20);primaryKey"`
	Permissions pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
}

func (RoleDefaultPermissions) TableName() string { return "role_default_permissions" }
