package service

import (
	"github.com/sweet-sh/sweet-api/internal/errors"
	"github.com/sweet-sh/sweet-api/internal/model"
	"github.com/sweet-sh/sweet-api/internal/repository/interfaces"
)

// AudienceService 受众列表的增删改查，全部操作限定在所有者自己的列表上
type AudienceService struct {
	audienceRepo interfaces.AudienceRepository
	userRepo     interfaces.UserRepository
}

func NewAudienceService(
	audienceRepo interfaces.AudienceRepository,
	userRepo interfaces.UserRepository,
) *AudienceService {
	return &AudienceService{
		audienceRepo: audienceRepo,
		userRepo:     userRepo,
	}
}

// CreateAudience 创建受众列表
func (s *AudienceService) CreateAudience(owner *model.User, audience *model.Audience) error {
	if audience.Name == "" {
		return errors.New(errors.ErrValidation, "audience name is required")
	}
	audience.OwnerID = owner.ID
	return s.audienceRepo.Create(audience)
}

// UpdateAudience 更新受众列表的名称、成员和能力开关
func (s *AudienceService) UpdateAudience(owner *model.User, audience *model.Audience) error {
	existing, err := s.ownedAudience(owner, audience.ID)
	if err != nil {
		return err
	}
	if audience.Name == "" {
		return errors.New(errors.ErrValidation, "audience name is required")
	}
	existing.Name = audience.Name
	existing.Users = audience.Users
	existing.Capabilities = audience.Capabilities
	return s.audienceRepo.Update(existing)
}

// DeleteAudience 删除受众列表
func (s *AudienceService) DeleteAudience(owner *model.User, audienceID int) error {
	if _, err := s.ownedAudience(owner, audienceID); err != nil {
		return err
	}
	return s.audienceRepo.Delete(audienceID)
}

// ListAudiences 返回用户拥有的全部受众列表
func (s *AudienceService) ListAudiences(owner *model.User) ([]*model.Audience, error) {
	return s.audienceRepo.FindByOwner(owner.ID)
}

// GetAudience 返回单个受众列表及其成员对象
func (s *AudienceService) GetAudience(owner *model.User, audienceID int) (*model.Audience, []*model.User, error) {
	audience, err := s.ownedAudience(owner, audienceID)
	if err != nil {
		return nil, nil, err
	}
	members, err := s.userRepo.FindByIDs(audience.Users)
	if err != nil {
		return nil, nil, err
	}
	return audience, members, nil
}

func (s *AudienceService) ownedAudience(owner *model.User, audienceID int) (*model.Audience, error) {
	audience, err := s.audienceRepo.FindByID(audienceID)
	if err != nil {
		return nil, err
	}
	if audience == nil {
		return nil, errors.New(errors.ErrAudienceNotFound, "audience not found")
	}
	if audience.OwnerID != owner.ID {
		return nil, errors.New(errors.ErrAudienceNotFound, "audience not found")
	}
	return audience, nil
}
