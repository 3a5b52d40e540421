package service

import (
	"context"
	"fmt"
	"time"

	"betadmin/internal/apierror"
	"betadmin/internal/authz"
	"betadmin/internal/dto"
	"betadmin/internal/infra"
	"betadmin/internal/model"
	"betadmin/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type BettingCenterService interface {
	Create(ctx context.Context, caller authz.Principal, req dto.CreateBettingCenterRequest) (*dto.BettingCenterResponse, error)
	List(ctx context.Context, caller authz.Principal) ([]dto.BettingCenterResponse, error)
	Get(ctx context.Context, caller authz.Principal, id uuid.UUID) (*dto.BettingCenterResponse, error)
	Update(ctx context.Context, caller authz.Principal, id uuid.UUID, req dto.UpdateBettingCenterRequest) (*dto.BettingCenterResponse, error)
	Delete(ctx context.Context, caller authz.Principal, id uuid.UUID) error
	AssignUser(ctx context.Context, caller authz.Principal, centerID, userID uuid.UUID) error
	UnassignUser(ctx context.Context, caller authz.Principal, centerID, userID uuid.UUID) error
	ListUsers(ctx context.Context, caller authz.Principal, centerID uuid.UUID) ([]dto.UserResponse, error)
	ManagePermissions(ctx context.Context, caller authz.Principal, centerID uuid.UUID, req dto.ManagePermissionsRequest) error
	ChangeAdmin(ctx context.Context, caller authz.Principal, centerID, newAdminID uuid.UUID) error
	Report(ctx context.Context, caller authz.Principal, centerID uuid.UUID) ([]byte, error)
}

type bettingCenterService struct {
	db        *gorm.DB
	centers   repository.BettingCenterRepository
	users     repository.UserRepository
	taquillas repository.TaquillaRepository
	catalog   repository.PermissionRepository
	configs   repository.ConfigurationRepository
}

// NewBettingCenterService takes db only to open transactions; it may be nil
// in tests, where each step runs directly against the repositories.
func NewBettingCenterService(
	db *gorm.DB,
	centers repository.BettingCenterRepository,
	users repository.UserRepository,
	taquillas repository.TaquillaRepository,
	catalog repository.PermissionRepository,
	configs repository.ConfigurationRepository,
) BettingCenterService {
	return &bettingCenterService{db: db, centers: centers, users: users, taquillas: taquillas, catalog: catalog, configs: configs}
}

// requireCenterAdmin checks that userID references an admin_centro account.
func (s *bettingCenterService) requireCenterAdmin(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if u == nil || u.Role != model.RoleAdminCentro {
		return nil, fmt.Errorf("%w: el ID de administrador proporcionado no es valido", apierror.ErrValidation)
	}
	return u, nil
}

// Create inserts the center and records it in the admin's assigned centers
// in one transaction.
func (s *bettingCenterService) Create(ctx context.Context, caller authz.Principal, req dto.CreateBettingCenterRequest) (*dto.BettingCenterResponse, error) {
	if err := authz.RequireSuperAdmin(caller); err != nil {
		return nil, err
	}
	adminID, err := ParseID(req.AdminID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireCenterAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	center := &model.BettingCenter{Name: req.Name, Address: req.Address, AdminID: adminID}
	err = repository.RunInTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.centers.Create(ctx, tx, center); err != nil {
			return err
		}
		return s.users.AssignCenter(ctx, tx, adminID, center.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.serialize(ctx, center)
}

func (s *bettingCenterService) List(ctx context.Context, caller authz.Principal) ([]dto.BettingCenterResponse, error) {
	var centers []model.BettingCenter
	var err error
	switch {
	case caller.IsSuperAdmin():
		centers, err = s.centers.ListAll(ctx)
	case caller.IsAdminCentro():
		centers, err = s.centers.ListByAdmin(ctx, caller.ID)
	default:
		return nil, authz.RequireAdmin(caller)
	}
	if err != nil {
		return nil, err
	}

	out := make([]dto.BettingCenterResponse, 0, len(centers))
	for i := range centers {
		resp, err := s.serialize(ctx, &centers[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}

// load fetches the center and checks the caller manages it.
func (s *bettingCenterService) load(ctx context.Context, caller authz.Principal, id uuid.UUID) (*model.BettingCenter, error) {
	center, err := s.centers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.CanManageCenter(caller, center); err != nil {
		return nil, err
	}
	return center, nil
}

func (s *bettingCenterService) Get(ctx context.Context, caller authz.Principal, id uuid.UUID) (*dto.BettingCenterResponse, error) {
	center, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return s.serialize(ctx, center)
}

func (s *bettingCenterService) Update(ctx context.Context, caller authz.Principal, id uuid.UUID, req dto.UpdateBettingCenterRequest) (*dto.BettingCenterResponse, error) {
	center, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		center.Name = *req.Name
	}
	if req.Address != nil {
		center.Address = *req.Address
	}
	if err := s.centers.Update(ctx, center); err != nil {
		return nil, err
	}
	return s.serialize(ctx, center)
}

// Delete removes only the center. Its taquillas, configuration and the
// users' assigned-center entries keep pointing at the deleted id.
func (s *bettingCenterService) Delete(ctx context.Context, caller authz.Principal, id uuid.UUID) error {
	if err := authz.RequireSuperAdmin(caller); err != nil {
		return err
	}
	if err := s.centers.Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Str("actor", caller.ID.String()).Str("center", id.String()).Msg("betting center deleted")
	return nil
}

// AssignUser links a user and a center on both sides. A user-role account
// belongs to at most one center; only super_admin may attach admin accounts.
func (s *bettingCenterService) AssignUser(ctx context.Context, caller authz.Principal, centerID, userID uuid.UUID) error {
	center, err := s.load(ctx, caller, centerID)
	if err != nil {
		return err
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := authz.CanAttachUser(caller, u); err != nil {
		return err
	}
	if u.Role == model.RoleUser {
		for _, other := range u.CenterIDs() {
			if other != center.ID {
				return fmt.Errorf("%w: el usuario ya esta asignado a otro centro de apuestas", apierror.ErrConflict)
			}
		}
	}

	return repository.RunInTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.users.AssignCenter(ctx, tx, userID, center.ID); err != nil {
			return err
		}
		return s.centers.AssociateUser(ctx, tx, center.ID, userID)
	})
}

func (s *bettingCenterService) UnassignUser(ctx context.Context, caller authz.Principal, centerID, userID uuid.UUID) error {
	center, err := s.load(ctx, caller, centerID)
	if err != nil {
		return err
	}
	if userID == center.AdminID {
		return fmt.Errorf("%w: use change-admin para reemplazar al administrador", apierror.ErrConflict)
	}
	return repository.RunInTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.users.UnassignCenter(ctx, tx, userID, center.ID); err != nil {
			return err
		}
		return s.centers.DisassociateUser(ctx, tx, center.ID, userID)
	})
}

// ListUsers returns the accounts whose assigned centers include the center.
func (s *bettingCenterService) ListUsers(ctx context.Context, caller authz.Principal, centerID uuid.UUID) ([]dto.UserResponse, error) {
	center, err := s.load(ctx, caller, centerID)
	if err != nil {
		return nil, err
	}
	users, err := s.users.ListByCenters(ctx, []uuid.UUID{center.ID})
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, len(users))
	for i := range users {
		out[i] = toUserResponse(&users[i])
	}
	return out, nil
}

// ManagePermissions applies assign/revoke changes to a user of the center.
func (s *bettingCenterService) ManagePermissions(ctx context.Context, caller authz.Principal, centerID uuid.UUID, req dto.ManagePermissionsRequest) error {
	if err := authz.RequireAdmin(caller); err != nil {
		return err
	}
	center, err := s.load(ctx, caller, centerID)
	if err != nil {
		return err
	}
	userID, err := ParseID(req.UserID)
	if err != nil {
		return err
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := authz.CanAdministerUser(caller, u, []uuid.UUID{center.ID}); err != nil {
		return err
	}

	names := make([]string, len(req.Permissions))
	for i, change := range req.Permissions {
		names[i] = change.Permission
	}
	if err := validatePermissions(ctx, s.catalog, names, false); err != nil {
		return err
	}

	for _, change := range req.Permissions {
		switch change.Action {
		case "assign":
			err = s.users.AddPermission(ctx, userID, change.Permission)
		case "revoke":
			err = s.users.RemovePermission(ctx, userID, change.Permission)
		default:
			err = fmt.Errorf("%w: accion %q", apierror.ErrValidation, change.Action)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// ChangeAdmin re-points the center and moves it between the two admins'
// assigned centers in a single transaction.
func (s *bettingCenterService) ChangeAdmin(ctx context.Context, caller authz.Principal, centerID, newAdminID uuid.UUID) error {
	if err := authz.RequireSuperAdmin(caller); err != nil {
		return err
	}
	if _, err := s.requireCenterAdmin(ctx, newAdminID); err != nil {
		return err
	}
	center, err := s.centers.FindByID(ctx, centerID)
	if err != nil {
		return err
	}
	oldAdminID := center.AdminID
	if oldAdminID == newAdminID {
		return nil
	}

	err = repository.RunInTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.centers.ChangeAdmin(ctx, tx, centerID, newAdminID); err != nil {
			return err
		}
		// The previous admin may have been deleted already.
		if err := s.users.UnassignCenter(ctx, tx, oldAdminID, centerID); err != nil && !isNotFound(err) {
			return err
		}
		return s.users.AssignCenter(ctx, tx, newAdminID, centerID)
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("actor", caller.ID.String()).
		Str("center", centerID.String()).
		Str("old_admin", oldAdminID.String()).
		Str("new_admin", newAdminID.String()).
		Msg("betting center admin changed")
	return nil
}

// Report renders the center's printable sheet. Admins need view_summaries.
func (s *bettingCenterService) Report(ctx context.Context, caller authz.Principal, centerID uuid.UUID) ([]byte, error) {
	if err := authz.RequirePermission(caller, model.PermissionViewSummaries); err != nil {
		return nil, err
	}
	center, err := s.load(ctx, caller, centerID)
	if err != nil {
		return nil, err
	}
	view, err := s.serialize(ctx, center)
	if err != nil {
		return nil, err
	}

	sheet := infra.CenterSheet{Name: center.Name, Address: center.Address, GeneratedAt: time.Now()}
	if admin, err := s.users.FindByID(ctx, center.AdminID); err == nil {
		sheet.AdminUsername = admin.Username
	}
	for _, t := range view.Taquillas {
		row := infra.SheetTaquilla{Number: t.Number, Status: t.Status}
		if t.AssignedUser != nil {
			row.AssignedUser = t.AssignedUser.Username
		}
		sheet.Taquillas = append(sheet.Taquillas, row)
	}

	cfg, err := s.configs.FindByCenter(ctx, centerID)
	switch {
	case err == nil:
		sheet.Limits = []infra.SheetLimit{
			{Label: "Venta mínima", Value: cfg.MinSaleLimit},
			{Label: "Venta máxima", Value: cfg.MaxSaleLimit},
			{Label: "Límite mínimo por caballo", Value: cfg.MinHorseLimit},
			{Label: "Límite máximo por caballo", Value: cfg.MaxHorseLimit},
			{Label: "Dividendo fijo", Value: cfg.FixedDividend},
			{Label: "Dividendo mínimo", Value: cfg.MinDividend},
			{Label: "Dividendo máximo", Value: cfg.MaxDividend},
		}
	case !isNotFound(err):
		return nil, err
	}

	return infra.RenderCenterSheet(sheet)
}

// serialize expands the center's taquillas live from the taquilla registry.
func (s *bettingCenterService) serialize(ctx context.Context, c *model.BettingCenter) (*dto.BettingCenterResponse, error) {
	taquillas, err := s.taquillas.ListByCenter(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	views := make([]dto.CenterTaquillaView, 0, len(taquillas))
	for _, t := range taquillas {
		v := dto.CenterTaquillaView{ID: t.ID.String(), Number: t.Number, Status: t.Status}
		if t.AssignedUserID != nil {
			u, err := s.users.FindByID(ctx, *t.AssignedUserID)
			switch {
			case err == nil:
				v.AssignedUser = &dto.AssignedUserView{ID: u.ID.String(), Username: u.Username}
			case !isNotFound(err):
				return nil, err
			}
		}
		views = append(views, v)
	}

	return &dto.BettingCenterResponse{
		ID:              c.ID.String(),
		Name:            c.Name,
		Address:         c.Address,
		AdminID:         c.AdminID.String(),
		Taquillas:       views,
		AssociatedUsers: append([]string{}, c.AssociatedUsers...),
		CreatedAt:       c.CreatedAt,
	}, nil
}
