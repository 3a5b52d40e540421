package repository

import (
	"context"

	"betadmin/internal/apierror"
	"betadmin/internal/model"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const userEntity = "usuario"

// UserRepository is the user directory. Array columns use set semantics:
// add-if-absent and remove-if-present, applied atomically per row.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	ListByCenters(ctx context.Context, centerIDs []uuid.UUID) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddPermission(ctx context.Context, id uuid.UUID, permission string) error
	RemovePermission(ctx context.Context, id uuid.UUID, permission string) error
	ChangeRole(ctx context.Context, id uuid.UUID, role string, permissions []string) error
	AssignCenter(ctx context.Context, tx *gorm.DB, id, centerID uuid.UUID) error
	UnassignCenter(ctx context.Context, tx *gorm.DB, id, centerID uuid.UUID) error
	AssignTaquilla(ctx context.Context, tx *gorm.DB, id, taquillaID uuid.UUID) error
	UnassignTaquilla(ctx context.Context, tx *gorm.DB, id, taquillaID uuid.UUID) error
	ClearTaquilla(ctx context.Context, tx *gorm.DB, taquillaID uuid.UUID) error
}

type userRepo struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	if u.Permissions == nil {
		u.Permissions = pq.StringArray{}
	}
	if u.AssignedCenters == nil {
		u.AssignedCenters = pq.StringArray{}
	}
	return translate(r.db.WithContext(ctx).Create(u).Error, userEntity, apierror.ErrCredentialConflict)
}

func (r *userRepo) first(ctx context.Context, query string, args ...any) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&u).Error; err != nil {
		return nil, translate(err, userEntity, nil)
	}
	return &u, nil
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.first(ctx, "username = ?", username)
}

// FindByIdentifier matches either the email or the username.
func (r *userRepo) FindByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	return r.first(ctx, "email = ? OR username = ?", identifier, identifier)
}

func (r *userRepo) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).Order("username asc").Find(&users).Error
	return users, err
}

// ListByCenters returns users whose assigned centers overlap centerIDs.
func (r *userRepo) ListByCenters(ctx context.Context, centerIDs []uuid.UUID) ([]model.User, error) {
	var users []model.User
	if len(centerIDs) == 0 {
		return users, nil
	}
	ids := make(pq.StringArray, len(centerIDs))
	for i, id := range centerIDs {
		ids[i] = id.String()
	}
	err := r.db.WithContext(ctx).
		Where("assigned_centers && ?::text[]", ids).
		Order("username asc").
		Find(&users).Error
	return users, err
}

func (r *userRepo) Update(ctx context.Context, u *model.User) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", u.ID).
		Updates(map[string]any{"username": u.Username, "email": u.Email})
	if err := translate(res.Error, userEntity, apierror.ErrCredentialConflict); err != nil {
		return err
	}
	return affected(res, userEntity)
}

func (r *userRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("password_hash", hash)
	return affected(res, userEntity)
}

func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&model.User{}, "id = ?", id), userEntity)
}

func (r *userRepo) AddPermission(ctx context.Context, id uuid.UUID, permission string) error {
	return r.addToSet(ctx, nil, id, "permissions", permission)
}

func (r *userRepo) RemovePermission(ctx context.Context, id uuid.UUID, permission string) error {
	return r.pull(ctx, nil, id, "permissions", permission)
}

// ChangeRole sets the role and replaces the permission set in one statement.
func (r *userRepo) ChangeRole(ctx context.Context, id uuid.UUID, role string, permissions []string) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Updates(map[string]any{"role": role, "permissions": pq.StringArray(permissions)})
	return affected(res, userEntity)
}

func (r *userRepo) AssignCenter(ctx context.Context, tx *gorm.DB, id, centerID uuid.UUID) error {
	return r.addToSet(ctx, tx, id, "assigned_centers", centerID.String())
}

func (r *userRepo) UnassignCenter(ctx context.Context, tx *gorm.DB, id, centerID uuid.UUID) error {
	return r.pull(ctx, tx, id, "assigned_centers", centerID.String())
}

func (r *userRepo) AssignTaquilla(ctx context.Context, tx *gorm.DB, id, taquillaID uuid.UUID) error {
	res := pick(r.db, tx).WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Update("assigned_taquilla", taquillaID)
	return affected(res, userEntity)
}

// UnassignTaquilla clears the user's pointer only while it still names
// taquillaID; a user who has since moved to another taquilla keeps it.
func (r *userRepo) UnassignTaquilla(ctx context.Context, tx *gorm.DB, id, taquillaID uuid.UUID) error {
	return pick(r.db, tx).WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND assigned_taquilla = ?", id, taquillaID).
		Update("assigned_taquilla", nil).Error
}

// ClearTaquilla drops taquillaID from whichever user currently holds it.
func (r *userRepo) ClearTaquilla(ctx context.Context, tx *gorm.DB, taquillaID uuid.UUID) error {
	return pick(r.db, tx).WithContext(ctx).Model(&model.User{}).
		Where("assigned_taquilla = ?", taquillaID).
		Update("assigned_taquilla", nil).Error
}

func (r *userRepo) addToSet(ctx context.Context, tx *gorm.DB, id uuid.UUID, column, value string) error {
	return affected(addToSet(ctx, pick(r.db, tx), "users", column, id, value), userEntity)
}

func (r *userRepo) pull(ctx context.Context, tx *gorm.DB, id uuid.UUID, column, value string) error {
	return affected(pull(ctx, pick(r.db, tx), "users", column, id, value), userEntity)
}
