package service

import (
	"database/sql"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sweet-sh/sweet-api/internal/errors"
	"github.com/sweet-sh/sweet-api/internal/model"
	"github.com/sweet-sh/sweet-api/internal/repository/interfaces"
	"github.com/sweet-sh/sweet-api/internal/util"
)

// UserService 处理与用户相关的业务逻辑
type UserService struct {
	userRepo            interfaces.UserRepository
	relationshipRepo    interfaces.RelationshipRepository
	communityRepo       interfaces.CommunityRepository
	emailService        *EmailService
	notificationService *NotificationService
	tokenBlacklist      map[string]time.Time
	blacklistMutex      sync.RWMutex
}

// NewUserService 创建一个新的 UserService 实例
func NewUserService(
	userRepo interfaces.UserRepository,
	relationshipRepo interfaces.RelationshipRepository,
	communityRepo interfaces.CommunityRepository,
	notificationService *NotificationService,
) *UserService {
	return &UserService{
		userRepo:            userRepo,
		relationshipRepo:    relationshipRepo,
		communityRepo:       communityRepo,
		emailService:        NewEmailService(userRepo),
		notificationService: notificationService,
		tokenBlacklist:      make(map[string]time.Time),
	}
}

// IsUsernameTaken 检查用户名是否已被使用
func (s *UserService) IsUsernameTaken(username string) (bool, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return user != nil, nil
}

// Register 注册新用户
func (s *UserService) Register(user *model.User) error {
	taken, err := s.IsUsernameTaken(user.Username)
	if err != nil {
		return err
	}
	if taken {
		return errors.New(errors.ErrUserExists, "username already exists")
	}
	if existing, err := s.userRepo.FindByEmail(user.Email); err == nil && existing != nil {
		return errors.New(errors.ErrUserExists, "email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.PasswordHash), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedPassword)

	if err := s.userRepo.Create(user); err != nil {
		return err
	}

	if err := s.emailService.SendVerificationEmail(user.Email, user.Username); err != nil {
		util.Logger.Error("发送验证邮件失败", zap.Error(err))
	}
	return nil
}

// Login 用户登录
func (s *UserService) Login(email, password string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New(errors.ErrInvalidCredentials, "invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errors.New(errors.ErrInvalidCredentials, "invalid email or password")
	}

	util.Logger.Info("用户登录成功", zap.Int("user", user.ID))
	return user, nil
}

// VerifyEmail 校验邮箱验证令牌并标记用户为已验证
func (s *UserService) VerifyEmail(token string) error {
	userID, err := s.emailService.VerifyEmailToken(token)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidToken, "invalid verification token", err)
	}
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return errors.New(errors.ErrUserNotFound, "user not found")
	}
	user.IsVerified = true
	return s.userRepo.Update(user)
}

// RequestPasswordReset 发送密码重置邮件
func (s *UserService) RequestPasswordReset(email string) error {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		// 不暴露邮箱是否注册
		return nil
	}
	return s.emailService.SendPasswordResetEmail(email)
}

// ResetPassword 用重置令牌设置新密码
func (s *UserService) ResetPassword(token, newPassword string) error {
	email, err := s.emailService.VerifyPasswordResetToken(token)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidToken, "invalid reset token", err)
	}
	if len(newPassword) < 8 {
		return errors.New(errors.ErrWeakPassword, "password too short")
	}
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return errors.New(errors.ErrUserNotFound, "user not found")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashed)
	return s.userRepo.Update(user)
}

// GetUserByID 通过ID获取用户信息
func (s *UserService) GetUserByID(id int) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New(errors.ErrUserNotFound, "user not found")
	}
	return user, nil
}

// GetUserByIdentifier 标识符可能是主键ID也可能是用户名
func (s *UserService) GetUserByIdentifier(identifier string) (*model.User, error) {
	if id, ok := util.ParseIdentifier(identifier); ok {
		return s.GetUserByID(id)
	}
	user, err := s.userRepo.FindByUsername(identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New(errors.ErrUserNotFound, "user not found")
	}
	return user, nil
}

// UpdateProfile 更新用户资料，只允许修改展示性字段
func (s *UserService) UpdateProfile(user *model.User) error {
	existing, err := s.userRepo.FindByID(user.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return errors.New(errors.ErrUserNotFound, "user not found")
	}

	existing.DisplayName = user.DisplayName
	existing.Bio = user.Bio
	existing.Image = user.Image
	existing.ImageEnabled = user.ImageEnabled
	return s.userRepo.Update(existing)
}

// UpdateSettings 更新用户设置。空字符串表示该项保持原值
func (s *UserService) UpdateSettings(userID int, settings model.UserSettings) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return errors.New(errors.ErrUserNotFound, "user not found")
	}

	merged := user.Settings
	if settings.HomeTagTimelineSorting != "" {
		if !validSorting(settings.HomeTagTimelineSorting) {
			return errors.New(errors.ErrValidation, "invalid sorting value")
		}
		merged.HomeTagTimelineSorting = settings.HomeTagTimelineSorting
	}
	if settings.UserTimelineSorting != "" {
		if !validSorting(settings.UserTimelineSorting) {
			return errors.New(errors.ErrValidation, "invalid sorting value")
		}
		merged.UserTimelineSorting = settings.UserTimelineSorting
	}
	if settings.CommunityTimelineSorting != "" {
		if !validSorting(settings.CommunityTimelineSorting) {
			return errors.New(errors.ErrValidation, "invalid sorting value")
		}
		merged.CommunityTimelineSorting = settings.CommunityTimelineSorting
	}
	return s.userRepo.UpdateSettings(userID, merged)
}

// SetRelationship 建立一条关系边。follow 和 trust 会通知对方，
// mute 和 flag 是静默的
func (s *UserService) SetRelationship(from *model.User, toIdentifier, value string) error {
	if !validRelationship(value) {
		return errors.New(errors.ErrValidation, "invalid relationship type")
	}
	target, err := s.GetUserByIdentifier(toIdentifier)
	if err != nil {
		return err
	}
	if target.ID == from.ID {
		return errors.New(errors.ErrValidation, "cannot create a relationship with yourself")
	}

	if err := s.relationshipRepo.Create(&model.Relationship{
		FromUserID: from.ID,
		ToUserID:   target.ID,
		Value:      value,
	}); err != nil {
		return err
	}

	if value == model.RelationshipFollow || value == model.RelationshipTrust {
		s.notificationService.RelationshipNotification(from, target.ID, value)
	}
	return nil
}

// RemoveRelationship 移除一条关系边
func (s *UserService) RemoveRelationship(from *model.User, toIdentifier, value string) error {
	if !validRelationship(value) {
		return errors.New(errors.ErrValidation, "invalid relationship type")
	}
	target, err := s.GetUserByIdentifier(toIdentifier)
	if err != nil {
		return err
	}
	return s.relationshipRepo.Delete(from.ID, target.ID, value)
}

// ProfileView 用户主页的聚合视图
type ProfileView struct {
	User           *model.User        `json:"user"`
	Communities    []*model.Community `json:"communities"`
	Followers      []*model.User      `json:"followers"`
	Following      []*model.User      `json:"following"`
	IsOwnProfile   bool               `json:"is_own_profile"`
	UserFollowsYou bool               `json:"user_follows_you"`
	UserTrustsYou  bool               `json:"user_trusts_you"`
	YouFollow      bool               `json:"you_follow"`
	YouTrust       bool               `json:"you_trust"`
	YouMute        bool               `json:"you_mute"`
	YouFlag        bool               `json:"you_flag"`
}

// GetProfile 组装用户主页：基本资料、所属社区、关注关系的双向状态
func (s *UserService) GetProfile(viewer *model.User, identifier string) (*ProfileView, error) {
	user, err := s.GetUserByIdentifier(identifier)
	if err != nil {
		return nil, err
	}

	communities, err := s.communityRepo.FindByIDs(user.Communities)
	if err != nil {
		return nil, err
	}
	followerIDs, err := s.relationshipRepo.FindSources(user.ID, model.RelationshipFollow)
	if err != nil {
		return nil, err
	}
	followers, err := s.userRepo.FindByIDs(followerIDs)
	if err != nil {
		return nil, err
	}
	followingIDs, err := s.relationshipRepo.FindTargets(user.ID, model.RelationshipFollow)
	if err != nil {
		return nil, err
	}
	following, err := s.userRepo.FindByIDs(followingIDs)
	if err != nil {
		return nil, err
	}

	view := &ProfileView{
		User:         user,
		Communities:  communities,
		Followers:    followers,
		Following:    following,
		IsOwnProfile: viewer.ID == user.ID,
	}
	if !view.IsOwnProfile {
		checks := []struct {
			out                  *bool
			from, to             int
			value                string
		}{
			{&view.UserFollowsYou, user.ID, viewer.ID, model.RelationshipFollow},
			{&view.UserTrustsYou, user.ID, viewer.ID, model.RelationshipTrust},
			{&view.YouFollow, viewer.ID, user.ID, model.RelationshipFollow},
			{&view.YouTrust, viewer.ID, user.ID, model.RelationshipTrust},
			{&view.YouMute, viewer.ID, user.ID, model.RelationshipMute},
			{&view.YouFlag, viewer.ID, user.ID, model.RelationshipFlag},
		}
		for _, check := range checks {
			exists, err := s.relationshipRepo.Exists(check.from, check.to, check.value)
			if err != nil {
				return nil, err
			}
			*check.out = exists
		}
	}
	return view, nil
}

// ListRelatedUsers 返回查看者关注或信任的用户
func (s *UserService) ListRelatedUsers(viewer *model.User) ([]*model.User, error) {
	followed, err := s.relationshipRepo.FindTargets(viewer.ID, model.RelationshipFollow)
	if err != nil {
		return nil, err
	}
	trusted, err := s.relationshipRepo.FindTargets(viewer.ID, model.RelationshipTrust)
	if err != nil {
		return nil, err
	}
	ids := append(followed, trusted...)
	seen := map[int]bool{}
	unique := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	return s.userRepo.FindByIDs(unique)
}

// Logout 注销登录：令牌进入黑名单直到自然过期
func (s *UserService) Logout(token string) error {
	s.BlacklistToken(token, time.Now().Add(72*time.Hour))
	return nil
}

// BlacklistToken 注销时将令牌加入黑名单
func (s *UserService) BlacklistToken(token string, expiry time.Time) {
	s.blacklistMutex.Lock()
	defer s.blacklistMutex.Unlock()
	s.tokenBlacklist[token] = expiry
	for t, exp := range s.tokenBlacklist {
		if time.Now().After(exp) {
			delete(s.tokenBlacklist, t)
		}
	}
}

// IsTokenBlacklisted 检查令牌是否已被注销
func (s *UserService) IsTokenBlacklisted(token string) bool {
	s.blacklistMutex.RLock()
	defer s.blacklistMutex.RUnlock()
	expiry, ok := s.tokenBlacklist[token]
	return ok && time.Now().Before(expiry)
}

type UserServiceInterface interface {
	Register(user *model.User) error
	Login(email, password string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	VerifyEmail(token string) error
	RequestPasswordReset(email string) error
	ResetPassword(token, newPassword string) error
	Logout(token string) error
	IsTokenBlacklisted(token string) bool
}

// 确保 UserService 实现了 UserServiceInterface
var _ UserServiceInterface = (*UserService)(nil)

func validSorting(value string) bool {
	return value == model.SortingFluid || value == model.SortingChronological
}

func validRelationship(value string) bool {
	switch value {
	case model.RelationshipFollow, model.RelationshipTrust,
		model.RelationshipMute, model.RelationshipFlag:
		return true
	}
	return false
}
