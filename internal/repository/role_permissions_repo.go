package repository

import (
	"context"
	"errors"

	"betadmin/internal/model"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RoleDefaultsRepository stores one permission list per role.
type RoleDefaultsRepository interface {
	// Get returns the role's default permissions, or an empty list when unset.
	Get(ctx context.Context, role string) ([]string, error)
	// Set upserts the role's list, replacing any previous value.
	Set(ctx context.Context, role string, permissions []string) error
	List(ctx context.Context) ([]model.RoleDefaultPermissions, error)
	Count(ctx context.Context) (int64, error)
}

type roleDefaultsRepo struct{ db *gorm.DB }

func NewRoleDefaultsRepository(db *gorm.DB) RoleDefaultsRepository {
	return &roleDefaultsRepo{db: db}
}

func (r *roleDefaultsRepo) Get(ctx context.Context, role string) ([]string, error) {
	var rec model.RoleDefaultPermissions
	err := r.db.WithContext(ctx).Where("role = ?", role).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return []string(rec.Permissions), nil
}

func (r *roleDefaultsRepo) Set(ctx context.Context, role string, permissions []string) error {
	rec := model.RoleDefaultPermissions{Role: role, Permissions: pq.StringArray(permissions)}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "role"}},
		DoUpdates: clause.AssignmentColumns([]string{"permissions"}),
	}).Create(&rec).Error
}

func (r *roleDefaultsRepo) List(ctx context.Context) ([]model.RoleDefaultPermissions, error) {
	var list []model.RoleDefaultPermissions
	err := r.db.WithContext(ctx).Order("role asc").Find(&list).Error
	return list, err
}

func (r *roleDefaultsRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.RoleDefaultPermissions{}).Count(&n).Error
	return n, err
}
