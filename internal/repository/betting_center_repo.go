package repository

import (
	"context"

	"betadmin/internal/apierror"
	"betadmin/internal/model"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const centerEntity = "centro de apuestas"

// BettingCenterRepository stores betting centers and their id back-references.
type BettingCenterRepository interface {
	Create(ctx context.Context, tx *gorm.DB, c *model.BettingCenter) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.BettingCenter, error)
	FindByName(ctx context.Context, name string) (*model.BettingCenter, error)
	Update(ctx context.Context, c *model.BettingCenter) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddTaquilla(ctx context.Context, tx *gorm.DB, id, taquillaID uuid.UUID) error
	RemoveTaquilla(ctx context.Context, tx *gorm.DB, id, taquillaID uuid.UUID) error
	AssociateUser(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) error
	DisassociateUser(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) error
	ChangeAdmin(ctx context.Context, tx *gorm.DB, id, newAdminID uuid.UUID) error
	ListByAdmin(ctx context.Context, adminID uuid.UUID) ([]model.BettingCenter, error)
	ListAll(ctx context.Context) ([]model.BettingCenter, error)
}

type bettingCenterRepo struct{ db *gorm.DB }

func NewBettingCenterRepository(db *gorm.DB) BettingCenterRepository {
	return &bettingCenterRepo{db: db}
}

func (r *bettingCenterRepo) Create(ctx context.Context, tx *gorm.DB, c *model.BettingCenter) error {
	if c.Taquillas == nil {
		c.Taquillas = pq.StringArray{}
	}
	if c.AssociatedUsers == nil {
		c.AssociatedUsers = pq.StringArray{}
	}
	err := pick(r.db, tx).WithContext(ctx).Create(c).Error
	return translate(err, centerEntity, apierror.ErrNameConflict)
}

func (r *bettingCenterRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.BettingCenter, error) {
	var c model.BettingCenter
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err, centerEntity, nil)
	}
	return &c, nil
}

func (r *bettingCenterRepo) FindByName(ctx context.Context, name string) (*model.BettingCenter, error) {
	var c model.BettingCenter
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&c).Error; err != nil {
		return nil, translate(err, centerEntity, nil)
	}
	return &c, nil
}

// Update writes name and address only; references have their own operations.
func (r *bettingCenterRepo) Update(ctx context.Context, c *model.BettingCenter) error {
	res := r.db.WithContext(ctx).Model(&model.BettingCenter{}).Where("id = ?", c.ID).
		Updates(map[string]any{"name": c.Name, "address": c.Address})
	if err := translate(res.Error, centerEntity, apierror.ErrNameConflict); err != nil {
		return err
	}
	return affected(res, centerEntity)
}

// Delete removes the center row only. Taquillas and users keep their references.
func (r *bettingCenterRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&model.BettingCenter{}, "id = ?", id), centerEntity)
}

func (r *bettingCenterRepo) AddTaquilla(ctx context.Context, tx *gorm.DB, id, taquillaID uuid.UUID) error {
	return affected(addToSet(ctx, pick(r.db, tx), "betting_centers", "taquillas", id, taquillaID.String()), centerEntity)
}

func (r *bettingCenterRepo) RemoveTaquilla(ctx context.Context, tx *gorm.DB, id, taquillaID uuid.UUID) error {
	return affected(pull(ctx, pick(r.db, tx), "betting_centers", "taquillas", id, taquillaID.String()), centerEntity)
}

func (r *bettingCenterRepo) AssociateUser(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) error {
	return affected(addToSet(ctx, pick(r.db, tx), "betting_centers", "associated_users", id, userID.String()), centerEntity)
}

func (r *bettingCenterRepo) DisassociateUser(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) error {
	return affected(pull(ctx, pick(r.db, tx), "betting_centers", "associated_users", id, userID.String()), centerEntity)
}

func (r *bettingCenterRepo) ChangeAdmin(ctx context.Context, tx *gorm.DB, id, newAdminID uuid.UUID) error {
	res := pick(r.db, tx).WithContext(ctx).Model(&model.BettingCenter{}).Where("id = ?", id).
		Update("admin_id", newAdminID)
	return affected(res, centerEntity)
}

func (r *bettingCenterRepo) ListByAdmin(ctx context.Context, adminID uuid.UUID) ([]model.BettingCenter, error) {
	var list []model.BettingCenter
	err := r.db.WithContext(ctx).Where("admin_id = ?", adminID).Order("name asc").Find(&list).Error
	return list, err
}

func (r *bettingCenterRepo) ListAll(ctx context.Context) ([]model.BettingCenter, error) {
	var list []model.BettingCenter
	err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error
	return list, err
}
