package service

import (
	"context"
	"fmt"

	"betadmin/internal/apierror"
	"betadmin/internal/authz"
	"betadmin/internal/config"
	"betadmin/internal/dto"
	"betadmin/internal/model"
	"betadmin/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type TaquillaService interface {
	Create(ctx context.Context, caller authz.Principal, req dto.CreateTaquillaRequest) (*dto.TaquillaResponse, error)
	Get(ctx context.Context, caller authz.Principal, id uuid.UUID) (*dto.TaquillaResponse, error)
	Update(ctx context.Context, caller authz.Principal, id uuid.UUID, req dto.UpdateTaquillaRequest) (*dto.TaquillaResponse, error)
	Delete(ctx context.Context, caller authz.Principal, id uuid.UUID) error
	ListByCenter(ctx context.Context, caller authz.Principal, centerID uuid.UUID, activeOnly bool) ([]dto.TaquillaResponse, error)
	ListByUser(ctx context.Context, caller authz.Principal, userID uuid.UUID) ([]dto.TaquillaResponse, error)
	AssignUser(ctx context.Context, caller authz.Principal, id, userID uuid.UUID) error
	UnassignUser(ctx context.Context, caller authz.Principal, id uuid.UUID) error
	ChangeStatus(ctx context.Context, caller authz.Principal, id uuid.UUID, status string) error
}

type taquillaService struct {
	db        *gorm.DB
	taquillas repository.TaquillaRepository
	centers   repository.BettingCenterRepository
	users     repository.UserRepository
	cfg       *config.Config
}

func NewTaquillaService(
	db *gorm.DB,
	taquillas repository.TaquillaRepository,
	centers repository.BettingCenterRepository,
	users repository.UserRepository,
	cfg *config.Config,
) TaquillaService {
	return &taquillaService{db: db, taquillas: taquillas, centers: centers, users: users, cfg: cfg}
}

func (s *taquillaService) Create(ctx context.Context, caller authz.Principal, req dto.CreateTaquillaRequest) (*dto.TaquillaResponse, error) {
	centerID, err := ParseID(req.BettingCenterID)
	if err != nil {
		return nil, err
	}
	center, err := s.centers.FindByID(ctx, centerID)
	if err != nil {
		return nil, err
	}
	if err := authz.CanManageCenter(caller, center); err != nil {
		return nil, err
	}

	t := &model.Taquilla{Number: req.Number, BettingCenterID: centerID, Status: model.TaquillaActive}
	err = repository.RunInTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.taquillas.Create(ctx, tx, t); err != nil {
			return err
		}
		return s.centers.AddTaquilla(ctx, tx, centerID, t.ID)
	})
	if err != nil {
		return nil, err
	}
	resp := toTaquillaResponse(t)
	return &resp, nil
}

// load fetches the taquilla and checks the caller manages its center.
func (s *taquillaService) load(ctx context.Context, caller authz.Principal, id uuid.UUID) (*model.Taquilla, error) {
	t, err := s.taquillas.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller.IsSuperAdmin() {
		return t, nil
	}
	center, err := s.centers.FindByID(ctx, t.BettingCenterID)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if err := authz.CanManageTaquilla(caller, t, center); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *taquillaService) Get(ctx context.Context, caller authz.Principal, id uuid.UUID) (*dto.TaquillaResponse, error) {
	t, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	resp := toTaquillaResponse(t)
	return &resp, nil
}

// Update changes number and status. The owning center never changes.
func (s *taquillaService) Update(ctx context.Context, caller authz.Principal, id uuid.UUID, req dto.UpdateTaquillaRequest) (*dto.TaquillaResponse, error) {
	t, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if req.Status != nil {
		if !model.IsValidTaquillaStatus(*req.Status) {
			return nil, apierror.ErrInvalidStatus
		}
		t.Status = *req.Status
	}
	if req.Number != nil {
		t.Number = *req.Number
	}
	if err := s.taquillas.Update(ctx, t); err != nil {
		return nil, err
	}
	resp := toTaquillaResponse(t)
	return &resp, nil
}

// Delete removes the taquilla, its entry in the center and any user's pointer to it.
func (s *taquillaService) Delete(ctx context.Context, caller authz.Principal, id uuid.UUID) error {
	t, err := s.load(ctx, caller, id)
	if err != nil {
		return err
	}
	return repository.RunInTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.taquillas.Delete(ctx, tx, id); err != nil {
			return err
		}
		if err := s.centers.RemoveTaquilla(ctx, tx, t.BettingCenterID, id); err != nil && !isNotFound(err) {
			return err
		}
		return s.users.ClearTaquilla(ctx, tx, id)
	})
}

func (s *taquillaService) ListByCenter(ctx context.Context, caller authz.Principal, centerID uuid.UUID, activeOnly bool) ([]dto.TaquillaResponse, error) {
	center, err := s.centers.FindByID(ctx, centerID)
	if err != nil {
		return nil, err
	}
	if err := authz.CanManageCenter(caller, center); err != nil {
		return nil, err
	}

	var list []model.Taquilla
	if activeOnly {
		list, err = s.taquillas.ListActiveByCenter(ctx, centerID)
	} else {
		list, err = s.taquillas.ListByCenter(ctx, centerID)
	}
	if err != nil {
		return nil, err
	}
	return toTaquillaResponses(list), nil
}

func (s *taquillaService) ListByUser(ctx context.Context, caller authz.Principal, userID uuid.UUID) ([]dto.TaquillaResponse, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	administered, err := administeredCenters(ctx, s.centers, caller)
	if err != nil {
		return nil, err
	}
	if err := authz.CanAccessUser(caller, u, administered); err != nil {
		return nil, err
	}
	list, err := s.taquillas.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toTaquillaResponses(list), nil
}

// AssignUser points the taquilla and the user at each other. Any previous
// holder of the taquilla loses it. With exclusive assignment enabled a user
// already holding a different taquilla is rejected.
func (s *taquillaService) AssignUser(ctx context.Context, caller authz.Principal, id, userID uuid.UUID) error {
	t, err := s.load(ctx, caller, id)
	if err != nil {
		return err
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	// The holder must be a user of the taquilla's own center.
	if err := authz.CanAdministerUser(caller, u, []uuid.UUID{t.BettingCenterID}); err != nil {
		return err
	}
	if s.cfg != nil && s.cfg.TaquillaExclusiveAssignment {
		held, err := s.taquillas.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		for _, other := range held {
			if other.ID != t.ID {
				return fmt.Errorf("%w: el usuario ya tiene asignada la taquilla %d", apierror.ErrConflict, other.Number)
			}
		}
	}

	return repository.RunInTx(ctx, s.db, func(tx *gorm.DB) error {
		if t.AssignedUserID != nil && *t.AssignedUserID != u.ID {
			if err := s.users.UnassignTaquilla(ctx, tx, *t.AssignedUserID, t.ID); err != nil {
				return err
			}
		}
		if err := s.taquillas.AssignUser(ctx, tx, t.ID, u.ID); err != nil {
			return err
		}
		return s.users.AssignTaquilla(ctx, tx, u.ID, t.ID)
	})
}

func (s *taquillaService) UnassignUser(ctx context.Context, caller authz.Principal, id uuid.UUID) error {
	t, err := s.load(ctx, caller, id)
	if err != nil {
		return err
	}
	if t.AssignedUserID == nil {
		return nil
	}
	return repository.RunInTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.taquillas.UnassignUser(ctx, tx, t.ID); err != nil {
			return err
		}
		return s.users.ClearTaquilla(ctx, tx, t.ID)
	})
}

func (s *taquillaService) ChangeStatus(ctx context.Context, caller authz.Principal, id uuid.UUID, status string) error {
	if !model.IsValidTaquillaStatus(status) {
		return apierror.ErrInvalidStatus
	}
	if _, err := s.load(ctx, caller, id); err != nil {
		return err
	}
	if err := s.taquillas.ChangeStatus(ctx, id, status); err != nil {
		return err
	}
	log.Info().Str("actor", caller.ID.String()).Str("taquilla", id.String()).Str("status", status).Msg("taquilla status changed")
	return nil
}

func toTaquillaResponses(list []model.Taquilla) []dto.TaquillaResponse {
	out := make([]dto.TaquillaResponse, len(list))
	for i := range list {
		out[i] = toTaquillaResponse(&list[i])
	}
	return out
}
