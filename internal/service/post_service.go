package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/sweet-sh/sweet-api/internal/errors"
	"github.com/sweet-sh/sweet-api/internal/model"
	"github.com/sweet-sh/sweet-api/internal/repository/interfaces"
	"github.com/sweet-sh/sweet-api/internal/storage"
	"github.com/sweet-sh/sweet-api/internal/util"
)

// PostService 帖子的写路径：发帖、编辑、删除、赞同、转发、订阅和收藏
type PostService struct {
	postRepo            interfaces.PostRepository
	userRepo            interfaces.UserRepository
	communityRepo       interfaces.CommunityRepository
	relationshipRepo    interfaces.RelationshipRepository
	audienceRepo        interfaces.AudienceRepository
	libraryRepo         interfaces.LibraryRepository
	notificationService *NotificationService
	fileStorage         storage.FileStorage
}

func NewPostService(
	postRepo interfaces.PostRepository,
	userRepo interfaces.UserRepository,
	communityRepo interfaces.CommunityRepository,
	relationshipRepo interfaces.RelationshipRepository,
	audienceRepo interfaces.AudienceRepository,
	libraryRepo interfaces.LibraryRepository,
	notificationService *NotificationService,
	fileStorage storage.FileStorage,
) *PostService {
	return &PostService{
		postRepo:            postRepo,
		userRepo:            userRepo,
		communityRepo:       communityRepo,
		relationshipRepo:    relationshipRepo,
		audienceRepo:        audienceRepo,
		libraryRepo:         libraryRepo,
		notificationService: notificationService,
		fileStorage:         fileStorage,
	}
}

// CreatePostInput 发帖输入。正文对引擎不透明，提及和标签由调用方解析好
type CreatePostInput struct {
	Content        string
	ContentWarning string
	IsPrivate      bool
	IsDraft        bool
	CommunityID    *int
	Audiences      []int
	Mentions       []string
	Tags           []string
	Images         []string
}

// CreatePost 创建帖子。社区帖恒为公开且不带受众列表，草稿恒为私有。
// 作者自动订阅自己的帖子
func (s *PostService) CreatePost(author *model.User, input *CreatePostInput) (*model.Post, error) {
	if input.Content == "" {
		return nil, errors.New(errors.ErrValidation, "post content empty")
	}

	postType := model.PostTypeOriginal
	privacy := model.PrivacyPublic
	audiences := input.Audiences

	switch {
	case input.CommunityID != nil:
		community, err := s.communityRepo.FindByID(*input.CommunityID)
		if err != nil {
			return nil, err
		}
		if community == nil {
			return nil, errors.New(errors.ErrCommunityNotFound, "community not found")
		}
		if !community.IsMember(author.ID) {
			return nil, errors.New(errors.ErrNotCommunityMember, "must be a community member to post")
		}
		postType = model.PostTypeCommunity
		audiences = nil
	case input.IsDraft:
		postType = model.PostTypeDraft
		privacy = model.PrivacyPrivate
	case input.IsPrivate:
		privacy = model.PrivacyPrivate
	}

	now := time.Now()
	post := &model.Post{
		Type:            postType,
		AuthorID:        author.ID,
		CommunityID:     input.CommunityID,
		URL:             uuid.NewString(),
		Privacy:         privacy,
		Audiences:       audiences,
		Timestamp:       now,
		LastUpdated:     now,
		Content:         input.Content,
		ContentWarning:  input.ContentWarning,
		Mentions:        input.Mentions,
		Tags:            input.Tags,
		SubscribedUsers: []int{author.ID},
	}

	if err := s.postRepo.Create(post); err != nil {
		return nil, err
	}

	if input.CommunityID != nil {
		s.touchCommunity(*input.CommunityID)
	}
	if postType != model.PostTypeDraft {
		post.Author = author
		s.notificationService.PostMentionNotifications(post, author)
	}
	return post, nil
}

// EditPostInput 编辑帖子的输入
type EditPostInput struct {
	Content        string
	ContentWarning string
	Mentions       []string
	Tags           []string
	Audiences      []int
}

// EditPost 编辑帖子。只有作者可以编辑，编辑时间被单独记录
func (s *PostService) EditPost(viewer *model.User, postID int, input *EditPostInput) (*model.Post, error) {
	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, errors.New(errors.ErrPostNotFound, "post not found")
	}
	if post.AuthorID != viewer.ID {
		return nil, errors.New(errors.ErrForbidden, "not allowed to edit this post")
	}
	if input.Content == "" {
		return nil, errors.New(errors.ErrValidation, "post content empty")
	}

	now := time.Now()
	previousMentions := post.Mentions
	post.Content = input.Content
	post.ContentWarning = input.ContentWarning
	post.Mentions = input.Mentions
	post.Tags = input.Tags
	if post.Type != model.PostTypeCommunity {
		post.Audiences = input.Audiences
	}
	post.LastEdited = &now
	post.LastUpdated = now

	if err := s.postRepo.Save(post); err != nil {
		return nil, err
	}

	// 编辑新增的提及补发通知，已有的不重发
	added := lo.Without(input.Mentions, previousMentions...)
	if len(added) > 0 && post.Type != model.PostTypeDraft {
		edited := *post
		edited.Mentions = added
		edited.Author = viewer
		s.notificationService.PostMentionNotifications(&edited, viewer)
	}
	return post, nil
}

// DeletePost 删除帖子。附带清理：指向它的 boost 行、它携带的图片、
// 评论里的图片、以及以它为主题的通知
func (s *PostService) DeletePost(viewer *model.User, postID int) error {
	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		return err
	}
	if post == nil {
		return errors.New(errors.ErrPostNotFound, "post not found")
	}
	if post.AuthorID != viewer.ID {
		return errors.New(errors.ErrForbidden, "not allowed to delete this post")
	}

	// boost 行的删除等价于取消转发
	if post.Type == model.PostTypeBoost && post.BoostTargetID != nil {
		return s.RemoveBoost(viewer, *post.BoostTargetID)
	}

	for _, comment := range post.Comments {
		for _, filename := range collectCommentImages(comment) {
			s.removeImage(filename)
		}
	}

	if err := s.postRepo.DetachBoostsOf(post.ID); err != nil {
		return err
	}
	if err := s.postRepo.Delete(post.ID); err != nil {
		return err
	}
	s.notificationService.DeleteForPost(post.ID)
	if post.CommunityID != nil {
		s.touchCommunity(*post.CommunityID)
	}
	return nil
}

// PlusResult 赞同操作的结果
type PlusResult struct {
	Pluses []model.Plus `json:"pluses"`
	Action string       `json:"plusAction"`
}

// TogglePlus 赞同开关：已赞同则取消，否则添加并通知帖子作者。
// 赞同不刷新帖子的活跃时间
func (s *PostService) TogglePlus(viewer *model.User, postID int) (*PlusResult, error) {
	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, errors.New(errors.ErrPostNotFound, "post not found")
	}

	result := &PlusResult{}
	if post.HasPlusFrom(viewer.ID) {
		kept := post.Pluses[:0]
		for _, plus := range post.Pluses {
			if plus.AuthorID != viewer.ID {
				kept = append(kept, plus)
			}
		}
		post.Pluses = kept
		result.Action = "remove"
	} else {
		post.Pluses = append(post.Pluses, model.Plus{AuthorID: viewer.ID, Timestamp: time.Now()})
		result.Action = "add"
	}

	if err := s.postRepo.Save(post); err != nil {
		return nil, err
	}
	if result.Action == "add" {
		if err := s.hydrateAuthor(post); err == nil {
			s.notificationService.PlusNotification(post, viewer)
		}
	}
	result.Pluses = post.Pluses
	return result, nil
}

// Boost 转发帖子。只有公开帖可以转发；同一用户重复转发时旧的转发
// 被新的替换。转发生成一条独立的 boost 行并登记在目标帖上
func (s *PostService) Boost(viewer *model.User, postID int, communityID *int) (*model.Post, error) {
	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, errors.New(errors.ErrPostNotFound, "post not found")
	}
	if postNonPublic(post) || post.Type == model.PostTypeCommunity {
		return nil, errors.New(errors.ErrPostNotPublic, "not authorised to boost this post")
	}
	if communityID != nil {
		community, err := s.communityRepo.FindByID(*communityID)
		if err != nil {
			return nil, err
		}
		if community == nil {
			return nil, errors.New(errors.ErrCommunityNotFound, "community not found")
		}
		if !community.IsMember(viewer.ID) {
			return nil, errors.New(errors.ErrNotCommunityMember, "must be a community member to boost here")
		}
	}

	// 同一用户的旧转发被替换
	if prior := post.BoostBy(viewer.ID); prior != nil {
		if err := s.postRepo.Delete(prior.BoostID); err != nil {
			util.Logger.Warn("删除旧的转发行失败", zap.Int("boost", prior.BoostID), zap.Error(err))
		}
		post.Boosts = filterBoosts(post.Boosts, viewer.ID)
	}

	now := time.Now()
	boostRow := &model.Post{
		Type:          model.PostTypeBoost,
		AuthorID:      viewer.ID,
		CommunityID:   communityID,
		URL:           uuid.NewString(),
		Privacy:       model.PrivacyPublic,
		Timestamp:     now,
		LastUpdated:   now,
		BoostTargetID: &post.ID,
	}
	if err := s.postRepo.Create(boostRow); err != nil {
		return nil, err
	}

	post.Boosts = append(post.Boosts, model.Boost{
		BoosterID:   viewer.ID,
		CommunityID: communityID,
		BoostID:     boostRow.ID,
		Timestamp:   now,
	})
	if err := s.postRepo.Save(post); err != nil {
		return nil, err
	}

	if err := s.hydrateAuthor(post); err == nil {
		s.notificationService.BoostNotification(post, viewer)
	}
	return boostRow, nil
}

// RemoveBoost 取消转发：删除 boost 行并把转发记录从目标帖上摘除
func (s *PostService) RemoveBoost(viewer *model.User, postID int) error {
	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		return err
	}
	if post == nil {
		return errors.New(errors.ErrPostNotFound, "post not found")
	}
	boost := post.BoostBy(viewer.ID)
	if boost == nil {
		return errors.New(errors.ErrResourceNotFound, "no boost to remove")
	}
	if err := s.postRepo.Delete(boost.BoostID); err != nil {
		return err
	}
	post.Boosts = filterBoosts(post.Boosts, viewer.ID)
	return s.postRepo.Save(post)
}

// Subscribe 订阅帖子的后续评论
func (s *PostService) Subscribe(viewer *model.User, postID int) error {
	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		return err
	}
	if post == nil {
		return errors.New(errors.ErrPostNotFound, "post not found")
	}
	post.UnsubscribedUser = removeID(post.UnsubscribedUser, viewer.ID)
	if !post.IsSubscribed(viewer.ID) {
		post.SubscribedUsers = append(post.SubscribedUsers, viewer.ID)
	}
	return s.postRepo.Save(post)
}

// Unsubscribe 退订帖子。显式退订的用户不再收到任何该帖的评论通知
func (s *PostService) Unsubscribe(viewer *model.User, postID int) error {
	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		return err
	}
	if post == nil {
		return errors.New(errors.ErrPostNotFound, "post not found")
	}
	post.SubscribedUsers = removeID(post.SubscribedUsers, viewer.ID)
	if !post.IsUnsubscribed(viewer.ID) {
		post.UnsubscribedUser = append(post.UnsubscribedUser, viewer.ID)
	}
	return s.postRepo.Save(post)
}

// AddToLibrary 把帖子加入收藏夹
func (s *PostService) AddToLibrary(viewer *model.User, postID int) error {
	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		return err
	}
	if post == nil {
		return errors.New(errors.ErrPostNotFound, "post not found")
	}
	exists, err := s.libraryRepo.Exists(viewer.ID, postID)
	if err != nil {
		return err
	}
	if exists {
		return errors.New(errors.ErrAlreadyInLibrary, "post already in library")
	}
	return s.libraryRepo.Add(&model.LibraryRecord{
		UserID:    viewer.ID,
		PostID:    postID,
		CreatedAt: time.Now(),
	})
}

// RemoveFromLibrary 把帖子移出收藏夹
func (s *PostService) RemoveFromLibrary(viewer *model.User, postID int) error {
	return s.libraryRepo.Remove(viewer.ID, postID)
}

func (s *PostService) hydrateAuthor(post *model.Post) error {
	if post.Author != nil {
		return nil
	}
	author, err := s.userRepo.FindByID(post.AuthorID)
	if err != nil {
		return err
	}
	post.Author = author
	return nil
}

func (s *PostService) touchCommunity(communityID int) {
	if err := s.communityRepo.Touch(communityID); err != nil {
		util.Logger.Warn("刷新社区活跃时间失败", zap.Int("community", communityID), zap.Error(err))
	}
}

func (s *PostService) removeImage(filename string) {
	if err := s.fileStorage.DeleteFile("images/" + filename); err != nil {
		util.Logger.Warn("删除帖子图片失败", zap.String("filename", filename), zap.Error(err))
	}
}

func filterBoosts(boosts []model.Boost, boosterID int) []model.Boost {
	kept := boosts[:0]
	for _, b := range boosts {
		if b.BoosterID != boosterID {
			kept = append(kept, b)
		}
	}
	return kept
}
