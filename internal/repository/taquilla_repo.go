package repository

import (
	"context"

	"betadmin/internal/apierror"
	"betadmin/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const taquillaEntity = "taquilla"

// TaquillaRepository stores kiosks. (number, betting_center_id) is unique.
type TaquillaRepository interface {
	Create(ctx context.Context, tx *gorm.DB, t *model.Taquilla) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Taquilla, error)
	ListByCenter(ctx context.Context, centerID uuid.UUID) ([]model.Taquilla, error)
	ListActiveByCenter(ctx context.Context, centerID uuid.UUID) ([]model.Taquilla, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Taquilla, error)
	Update(ctx context.Context, t *model.Taquilla) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	AssignUser(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) error
	UnassignUser(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	ChangeStatus(ctx context.Context, id uuid.UUID, status string) error
}

type taquillaRepo struct{ db *gorm.DB }

func NewTaquillaRepository(db *gorm.DB) TaquillaRepository { return &taquillaRepo{db: db} }

func (r *taquillaRepo) Create(ctx context.Context, tx *gorm.DB, t *model.Taquilla) error {
	if t.Status == "" {
		t.Status = model.TaquillaActive
	}
	err := pick(r.db, tx).WithContext(ctx).Create(t).Error
	return translate(err, taquillaEntity, apierror.ErrNumberConflict)
}

func (r *taquillaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Taquilla, error) {
	var t model.Taquilla
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, translate(err, taquillaEntity, nil)
	}
	return &t, nil
}

func (r *taquillaRepo) ListByCenter(ctx context.Context, centerID uuid.UUID) ([]model.Taquilla, error) {
	var list []model.Taquilla
	err := r.db.WithContext(ctx).Where("betting_center_id = ?", centerID).Order("number asc").Find(&list).Error
	return list, err
}

func (r *taquillaRepo) ListActiveByCenter(ctx context.Context, centerID uuid.UUID) ([]model.Taquilla, error) {
	var list []model.Taquilla
	err := r.db.WithContext(ctx).
		Where("betting_center_id = ? AND status = ?", centerID, model.TaquillaActive).
		Order("number asc").Find(&list).Error
	return list, err
}

func (r *taquillaRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Taquilla, error) {
	var list []model.Taquilla
	err := r.db.WithContext(ctx).Where("assigned_user_id = ?", userID).Order("number asc").Find(&list).Error
	return list, err
}

// Update writes number and status. The owning center never changes.
func (r *taquillaRepo) Update(ctx context.Context, t *model.Taquilla) error {
	res := r.db.WithContext(ctx).Model(&model.Taquilla{}).Where("id = ?", t.ID).
		Updates(map[string]any{"number": t.Number, "status": t.Status})
	if err := translate(res.Error, taquillaEntity, apierror.ErrNumberConflict); err != nil {
		return err
	}
	return affected(res, taquillaEntity)
}

func (r *taquillaRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return affected(pick(r.db, tx).WithContext(ctx).Delete(&model.Taquilla{}, "id = ?", id), taquillaEntity)
}

func (r *taquillaRepo) AssignUser(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) error {
	res := pick(r.db, tx).WithContext(ctx).Model(&model.Taquilla{}).Where("id = ?", id).
		Update("assigned_user_id", userID)
	return affected(res, taquillaEntity)
}

func (r *taquillaRepo) UnassignUser(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := pick(r.db, tx).WithContext(ctx).Model(&model.Taquilla{}).Where("id = ?", id).
		Update("assigned_user_id", nil)
	return affected(res, taquillaEntity)
}

func (r *taquillaRepo) ChangeStatus(ctx context.Context, id uuid.UUID, status string) error {
	res := r.db.WithContext(ctx).Model(&model.Taquilla{}).Where("id = ?", id).Update("status", status)
	return affected(res, taquillaEntity)
}
