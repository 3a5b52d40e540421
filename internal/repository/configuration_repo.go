package repository

import (
	"context"

	"betadmin/internal/apierror"
	"betadmin/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const configurationEntity = "configuracion"

// ConfigurationRepository stores one operating-limits record per center.
type ConfigurationRepository interface {
	Create(ctx context.Context, c *model.Configuration) error
	FindByCenter(ctx context.Context, centerID uuid.UUID) (*model.Configuration, error)
	Update(ctx context.Context, c *model.Configuration) error
	DeleteByCenter(ctx context.Context, centerID uuid.UUID) error
}

type configurationRepo struct{ db *gorm.DB }

func NewConfigurationRepository(db *gorm.DB) ConfigurationRepository {
	return &configurationRepo{db: db}
}

func (r *configurationRepo) Create(ctx context.Context, c *model.Configuration) error {
	return translate(r.db.WithContext(ctx).Create(c).Error, configurationEntity, apierror.ErrConflict)
}

func (r *configurationRepo) FindByCenter(ctx context.Context, centerID uuid.UUID) (*model.Configuration, error) {
	var c model.Configuration
	if err := r.db.WithContext(ctx).Where("center_id = ?", centerID).First(&c).Error; err != nil {
		return nil, translate(err, configurationEntity, nil)
	}
	return &c, nil
}

func (r *configurationRepo) Update(ctx context.Context, c *model.Configuration) error {
	return translate(r.db.WithContext(ctx).Save(c).Error, configurationEntity, nil)
}

func (r *configurationRepo) DeleteByCenter(ctx context.Context, centerID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("center_id = ?", centerID).Delete(&model.Configuration{})
	return affected(res, configurationEntity)
}
