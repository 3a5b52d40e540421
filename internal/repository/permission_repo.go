package repository

import (
	"context"

	"betadmin/internal/apierror"
	"betadmin/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const permissionEntity = "permiso"

// PermissionRepository is the permission catalog.
type PermissionRepository interface {
	Create(ctx context.Context, p *model.Permission) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Permission, error)
	FindByName(ctx context.Context, name string) (*model.Permission, error)
	List(ctx context.Context) ([]model.Permission, error)
	ListByNames(ctx context.Context, names []string) ([]model.Permission, error)
	Update(ctx context.Context, p *model.Permission) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type permissionRepo struct{ db *gorm.DB }

func NewPermissionRepository(db *gorm.DB) PermissionRepository { return &permissionRepo{db: db} }

func (r *permissionRepo) Create(ctx context.Context, p *model.Permission) error {
	return translate(r.db.WithContext(ctx).Create(p).Error, permissionEntity, apierror.ErrNameConflict)
}

func (r *permissionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Permission, error) {
	var p model.Permission
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err, permissionEntity, nil)
	}
	return &p, nil
}

func (r *permissionRepo) FindByName(ctx context.Context, name string) (*model.Permission, error) {
	var p model.Permission
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&p).Error; err != nil {
		return nil, translate(err, permissionEntity, nil)
	}
	return &p, nil
}

func (r *permissionRepo) List(ctx context.Context) ([]model.Permission, error) {
	var list []model.Permission
	err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error
	return list, err
}

func (r *permissionRepo) ListByNames(ctx context.Context, names []string) ([]model.Permission, error) {
	var list []model.Permission
	if len(names) == 0 {
		return list, nil
	}
	err := r.db.WithContext(ctx).Where("name IN ?", names).Order("name asc").Find(&list).Error
	return list, err
}

func (r *permissionRepo) Update(ctx context.Context, p *model.Permission) error {
	res := r.db.WithContext(ctx).Model(&model.Permission{}).Where("id = ?", p.ID).
		Updates(map[string]any{"name": p.Name, "description": p.Description})
	if err := translate(res.Error, permissionEntity, apierror.ErrNameConflict); err != nil {
		return err
	}
	return affected(res, permissionEntity)
}

func (r *permissionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&model.Permission{}, "id = ?", id), permissionEntity)
}
