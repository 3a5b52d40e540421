package service

import (
	"context"

	"betadmin/internal/authz"
	"betadmin/internal/dto"
	"betadmin/internal/model"
	"betadmin/internal/repository"

	"github.com/google/uuid"
)

type ConfigurationService interface {
	Create(ctx context.Context, caller authz.Principal, centerID uuid.UUID, req dto.ConfigurationRequest) (*dto.ConfigurationResponse, error)
	Get(ctx context.Context, caller authz.Principal, centerID uuid.UUID) (*dto.ConfigurationResponse, error)
	Update(ctx context.Context, caller authz.Principal, centerID uuid.UUID, req dto.ConfigurationRequest) (*dto.ConfigurationResponse, error)
	Delete(ctx context.Context, caller authz.Principal, centerID uuid.UUID) error
}

type configurationService struct {
	configs repository.ConfigurationRepository
	centers repository.BettingCenterRepository
}

func NewConfigurationService(configs repository.ConfigurationRepository, centers repository.BettingCenterRepository) ConfigurationService {
	return &configurationService{configs: configs, centers: centers}
}

func (s *configurationService) authorize(ctx context.Context, caller authz.Principal, centerID uuid.UUID) error {
	center, err := s.centers.FindByID(ctx, centerID)
	if err != nil {
		return err
	}
	return authz.CanManageCenter(caller, center)
}

// Create stores the first configuration of a center; a second one is ErrConflict.
func (s *configurationService) Create(ctx context.Context, caller authz.Principal, centerID uuid.UUID, req dto.ConfigurationRequest) (*dto.ConfigurationResponse, error) {
	if err := s.authorize(ctx, caller, centerID); err != nil {
		return nil, err
	}
	c := &model.Configuration{CenterID: centerID}
	applyConfiguration(c, req)
	if err := s.configs.Create(ctx, c); err != nil {
		return nil, err
	}
	resp := toConfigurationResponse(c)
	return &resp, nil
}

func (s *configurationService) Get(ctx context.Context, caller authz.Principal, centerID uuid.UUID) (*dto.ConfigurationResponse, error) {
	if err := s.authorize(ctx, caller, centerID); err != nil {
		return nil, err
	}
	c, err := s.configs.FindByCenter(ctx, centerID)
	if err != nil {
		return nil, err
	}
	resp := toConfigurationResponse(c)
	return &resp, nil
}

func (s *configurationService) Update(ctx context.Context, caller authz.Principal, centerID uuid.UUID, req dto.ConfigurationRequest) (*dto.ConfigurationResponse, error) {
	if err := s.authorize(ctx, caller, centerID); err != nil {
		return nil, err
	}
	c, err := s.configs.FindByCenter(ctx, centerID)
	if err != nil {
		return nil, err
	}
	applyConfiguration(c, req)
	if err := s.configs.Update(ctx, c); err != nil {
		return nil, err
	}
	resp := toConfigurationResponse(c)
	return &resp, nil
}

func (s *configurationService) Delete(ctx context.Context, caller authz.Principal, centerID uuid.UUID) error {
	if err := authz.RequireSuperAdmin(caller); err != nil {
		return err
	}
	return s.configs.DeleteByCenter(ctx, centerID)
}

// applyConfiguration copies the fields present in req onto c.
func applyConfiguration(c *model.Configuration, req dto.ConfigurationRequest) {
	if req.MinSaleLimit != nil {
		c.MinSaleLimit = req.MinSaleLimit
	}
	if req.MaxSaleLimit != nil {
		c.MaxSaleLimit = req.MaxSaleLimit
	}
	if req.MinHorseLimit != nil {
		c.MinHorseLimit = req.MinHorseLimit
	}
	if req.MaxHorseLimit != nil {
		c.MaxHorseLimit = req.MaxHorseLimit
	}
	if req.MaxTicketsToDelete != nil {
		c.MaxTicketsToDelete = req.MaxTicketsToDelete
	}
	if req.NoLimit != nil {
		c.NoLimit = *req.NoLimit
	}
	if req.MinHorsesPerRace != nil {
		c.MinHorsesPerRace = req.MinHorsesPerRace
	}
	if req.FixedDividend != nil {
		c.FixedDividend = req.FixedDividend
	}
	if req.MaxDividend != nil {
		c.MaxDividend = req.MaxDividend
	}
	if req.MinDividend != nil {
		c.MinDividend = req.MinDividend
	}
}
