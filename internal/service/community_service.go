package service

import (
	"go.uber.org/zap"

	"github.com/sweet-sh/sweet-api/internal/errors"
	"github.com/sweet-sh/sweet-api/internal/model"
	"github.com/sweet-sh/sweet-api/internal/repository/interfaces"
	"github.com/sweet-sh/sweet-api/internal/util"
)

// CommunityService 处理社区相关的业务逻辑
type CommunityService struct {
	communityRepo interfaces.CommunityRepository
	userRepo      interfaces.UserRepository
}

// NewCommunityService 创建一个新的 CommunityService 实例
func NewCommunityService(
	communityRepo interfaces.CommunityRepository,
	userRepo interfaces.UserRepository,
) *CommunityService {
	return &CommunityService{
		communityRepo: communityRepo,
		userRepo:      userRepo,
	}
}

// CreateCommunity 创建社区，创建者自动成为第一个成员
func (s *CommunityService) CreateCommunity(creator *model.User, community *model.Community) error {
	if community.Name == "" || community.Slug == "" {
		return errors.New(errors.ErrValidation, "community name and slug are required")
	}
	if existing, err := s.communityRepo.FindBySlug(community.Slug); err == nil && existing != nil {
		return errors.New(errors.ErrResourceExists, "community slug already taken")
	}
	if community.Visibility == "" {
		community.Visibility = model.CommunityPublic
	}
	if err := s.communityRepo.Create(community); err != nil {
		return err
	}
	return s.communityRepo.AddMember(community.ID, creator.ID)
}

// GetCommunity 标识符可能是主键ID也可能是slug
func (s *CommunityService) GetCommunity(identifier string) (*model.Community, error) {
	if id, ok := util.ParseIdentifier(identifier); ok {
		community, err := s.communityRepo.FindByID(id)
		if err != nil {
			return nil, err
		}
		if community == nil {
			return nil, errors.New(errors.ErrCommunityNotFound, "community not found")
		}
		return community, nil
	}
	community, err := s.communityRepo.FindBySlug(identifier)
	if err != nil {
		return nil, err
	}
	if community == nil {
		return nil, errors.New(errors.ErrCommunityNotFound, "community not found")
	}
	return community, nil
}

// ListCommunities 返回全部社区
func (s *CommunityService) ListCommunities() ([]*model.Community, error) {
	return s.communityRepo.FindAll()
}

// CommunityView 社区详情页的聚合视图
type CommunityView struct {
	Community *model.Community `json:"community"`
	Members   []*model.User    `json:"members"`
	IsMember  bool             `json:"is_member"`
	IsMuted   bool             `json:"is_muted"`
	IsBanned  bool             `json:"is_banned"`
}

// GetCommunityView 组装社区详情：社区信息、成员列表和查看者的成员状态
func (s *CommunityService) GetCommunityView(viewer *model.User, identifier string) (*CommunityView, error) {
	community, err := s.GetCommunity(identifier)
	if err != nil {
		return nil, err
	}
	members, err := s.userRepo.FindByIDs(community.Members)
	if err != nil {
		return nil, err
	}
	return &CommunityView{
		Community: community,
		Members:   members,
		IsMember:  community.IsMember(viewer.ID),
		IsMuted:   community.IsMuted(viewer.ID),
		IsBanned:  community.IsBanned(viewer.ID),
	}, nil
}

// Join 加入社区。被封禁的用户在响应里看不出封禁的存在
func (s *CommunityService) Join(user *model.User, communityID int) error {
	community, err := s.communityRepo.FindByID(communityID)
	if err != nil {
		return err
	}
	if community == nil {
		return errors.New(errors.ErrCommunityNotFound, "community not found")
	}
	if community.IsBanned(user.ID) {
		return errors.New(errors.ErrCommunityNotFound, "community not found")
	}
	if community.IsMember(user.ID) {
		return errors.New(errors.ErrResourceExists, "already a member of this community")
	}
	if err := s.communityRepo.AddMember(communityID, user.ID); err != nil {
		return err
	}
	s.touch(communityID)
	return nil
}

// Leave 退出社区
func (s *CommunityService) Leave(user *model.User, communityID int) error {
	community, err := s.communityRepo.FindByID(communityID)
	if err != nil {
		return err
	}
	if community == nil {
		return errors.New(errors.ErrCommunityNotFound, "community not found")
	}
	return s.communityRepo.RemoveMember(communityID, user.ID)
}

// MuteMember 禁言成员：其帖子不再出现在社区时间线上，但成员资格保留
func (s *CommunityService) MuteMember(actor *model.User, communityID, userID int) error {
	if err := s.requireModerator(actor, communityID); err != nil {
		return err
	}
	return s.communityRepo.MuteMember(communityID, userID)
}

// UnmuteMember 解除禁言
func (s *CommunityService) UnmuteMember(actor *model.User, communityID, userID int) error {
	if err := s.requireModerator(actor, communityID); err != nil {
		return err
	}
	return s.communityRepo.UnmuteMember(communityID, userID)
}

// BanMember 封禁用户：移除成员资格并阻止再次加入
func (s *CommunityService) BanMember(actor *model.User, communityID, userID int) error {
	if err := s.requireModerator(actor, communityID); err != nil {
		return err
	}
	if actor.ID == userID {
		return errors.New(errors.ErrValidation, "cannot ban yourself")
	}
	return s.communityRepo.BanMember(communityID, userID)
}

// UnbanMember 解除封禁
func (s *CommunityService) UnbanMember(actor *model.User, communityID, userID int) error {
	if err := s.requireModerator(actor, communityID); err != nil {
		return err
	}
	return s.communityRepo.UnbanMember(communityID, userID)
}

// requireModerator 管理操作要求操作者是社区成员且未被禁言
func (s *CommunityService) requireModerator(actor *model.User, communityID int) error {
	community, err := s.communityRepo.FindByID(communityID)
	if err != nil {
		return err
	}
	if community == nil {
		return errors.New(errors.ErrCommunityNotFound, "community not found")
	}
	if !community.IsMember(actor.ID) {
		return errors.New(errors.ErrNotCommunityMember, "must be a community member")
	}
	if community.IsMuted(actor.ID) {
		return errors.New(errors.ErrForbidden, "muted members cannot moderate")
	}
	return nil
}

func (s *CommunityService) touch(communityID int) {
	if err := s.communityRepo.Touch(communityID); err != nil {
		util.Logger.Warn("刷新社区活跃时间失败", zap.Int("community", communityID), zap.Error(err))
	}
}
