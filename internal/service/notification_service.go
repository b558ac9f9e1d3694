package service

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sweet-sh/sweet-api/internal/common"
	"github.com/sweet-sh/sweet-api/internal/model"
	"github.com/sweet-sh/sweet-api/internal/repository/interfaces"
	"github.com/sweet-sh/sweet-api/internal/util"
)

// NotificationService 站内通知服务。评论通知按互斥的原因类别扇出，
// 每个接收者只收到优先级最高的那一类。通知失败只记日志，从不向上传播
type NotificationService struct {
	notificationRepo interfaces.NotificationRepository
	userRepo         interfaces.UserRepository
	relationshipRepo interfaces.RelationshipRepository
}

func NewNotificationService(
	notificationRepo interfaces.NotificationRepository,
	userRepo interfaces.UserRepository,
	relationshipRepo interfaces.RelationshipRepository,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		relationshipRepo: relationshipRepo,
	}
}

func (s *NotificationService) notify(notification *model.Notification) {
	notification.Timestamp = time.Now()
	err := common.WithRetry(func() error {
		return s.notificationRepo.Create(notification)
	}, 3)
	if err != nil {
		util.Logger.Error("创建通知失败",
			zap.String("cause", notification.Cause),
			zap.Int("notifiee", notification.NotifieeID),
			zap.Error(err))
	}
}

// ListNotifications 返回用户的通知列表
func (s *NotificationService) ListNotifications(userID, page, pageSize int) ([]*model.Notification, error) {
	return s.notificationRepo.FindByNotifiee(userID, page, pageSize)
}

// MarkAllSeen 将用户的全部通知标记为已读
func (s *NotificationService) MarkAllSeen(userID int) error {
	return s.notificationRepo.MarkSeen(userID)
}

// PlusNotification 赞同通知。给自己的帖子点赞不通知
func (s *NotificationService) PlusNotification(post *model.Post, plusser *model.User) {
	if post.AuthorID == plusser.ID || post.Author == nil {
		return
	}
	s.notify(&model.Notification{
		Cause:      model.NotificationPlus,
		NotifieeID: post.AuthorID,
		SourceID:   plusser.ID,
		URL:        postURL(post),
		Context:    "post",
	})
}

// BoostNotification 转发通知。转发自己的帖子、或作者已退订时不通知
func (s *NotificationService) BoostNotification(post *model.Post, booster *model.User) {
	if post.AuthorID == booster.ID || post.IsUnsubscribed(post.AuthorID) || post.Author == nil {
		return
	}
	s.notify(&model.Notification{
		Cause:      model.NotificationBoost,
		NotifieeID: post.AuthorID,
		SourceID:   booster.ID,
		URL:        postURL(post),
		Context:    "post",
	})
}

// PostMentionNotifications 帖子正文提及通知，门禁与评论提及一致
func (s *NotificationService) PostMentionNotifications(post *model.Post, author *model.User) {
	for _, username := range post.Mentions {
		if username == author.Username {
			continue
		}
		mentioned, err := s.userRepo.FindByUsername(username)
		if err != nil || mentioned == nil {
			util.Logger.Warn("找不到被提及的用户", zap.String("username", username), zap.Error(err))
			continue
		}
		if !s.mentionAllowed(post, author, mentioned) {
			continue
		}
		s.notify(&model.Notification{
			Cause:      model.NotificationMention,
			NotifieeID: mentioned.ID,
			SourceID:   author.ID,
			SubjectID:  &post.ID,
			URL:        postURL(post),
			Context:    "post",
		})
	}
}

// DeleteForPost 删除指向某帖子的全部通知，帖子删除时调用
func (s *NotificationService) DeleteForPost(postID int) {
	if err := s.notificationRepo.DeleteBySubject(postID); err != nil {
		util.Logger.Warn("清理帖子通知失败", zap.Int("post", postID), zap.Error(err))
	}
}

// RelationshipNotification 关系变更通知（关注/信任）
func (s *NotificationService) RelationshipNotification(from *model.User, toUserID int, value string) {
	s.notify(&model.Notification{
		Cause:      model.NotificationRelationship,
		NotifieeID: toUserID,
		SourceID:   from.ID,
		URL:        "/" + from.Username,
		Context:    value,
	})
}

// CommentNotifications 评论通知扇出。五个类别按优先级处理：被提及者、
// 帖子作者、父评论作者、转发者、其余订阅者。handled 集合保证互斥：
// 一个类别处理过的接收者（无论门禁是否放行）不会再落入后面的类别
func (s *NotificationService) CommentNotifications(
	post *model.Post,
	comment *model.Comment,
	parent *model.Comment,
	commentAuthor *model.User,
) {
	postAuthor := post.Author
	if postAuthor == nil {
		var err error
		postAuthor, err = s.userRepo.FindByID(post.AuthorID)
		if err != nil || postAuthor == nil {
			util.Logger.Error("找不到被评论帖子的作者", zap.Int("post", post.ID), zap.Error(err))
			return
		}
	}

	url := postURL(post) + "#comment-" + comment.ID
	handled := map[int]bool{commentAuthor.ID: true}

	// 被提及的用户
	for _, username := range comment.Mentions {
		if username == commentAuthor.Username {
			continue
		}
		mentioned, err := s.userRepo.FindByUsername(username)
		if err != nil || mentioned == nil {
			util.Logger.Warn("找不到被提及的用户", zap.String("username", username), zap.Error(err))
			continue
		}
		if handled[mentioned.ID] {
			continue
		}
		handled[mentioned.ID] = true
		if !s.mentionAllowed(post, postAuthor, mentioned) {
			continue
		}
		s.notify(&model.Notification{
			Cause:      model.NotificationMention,
			NotifieeID: mentioned.ID,
			SourceID:   commentAuthor.ID,
			SubjectID:  &post.ID,
			URL:        url,
			Context:    "reply",
		})
	}

	// 帖子作者
	if !handled[postAuthor.ID] {
		handled[postAuthor.ID] = true
		if !post.IsUnsubscribed(postAuthor.ID) {
			s.notify(&model.Notification{
				Cause:      model.NotificationReply,
				NotifieeID: postAuthor.ID,
				SourceID:   commentAuthor.ID,
				SubjectID:  &post.ID,
				URL:        url,
				Context:    "post",
			})
		}
	}

	// 父评论作者
	if parent != nil && !handled[parent.AuthorID] {
		handled[parent.AuthorID] = true
		if !post.IsUnsubscribed(parent.AuthorID) {
			s.notify(&model.Notification{
				Cause:      model.NotificationCommentReply,
				NotifieeID: parent.AuthorID,
				SourceID:   commentAuthor.ID,
				SubjectID:  &post.ID,
				URL:        url,
				Context:    "post",
			})
		}
	}

	// 转发过帖子的用户
	for _, boost := range post.Boosts {
		if handled[boost.BoosterID] {
			continue
		}
		handled[boost.BoosterID] = true
		if post.IsUnsubscribed(boost.BoosterID) {
			continue
		}
		s.notify(&model.Notification{
			Cause:      model.NotificationBoostedPostReply,
			NotifieeID: boost.BoosterID,
			SourceID:   commentAuthor.ID,
			SubjectID:  &post.ID,
			URL:        url,
			Context:    "post",
		})
	}

	// 其余订阅者：帖子正文提及过的人收到 mentioningPostReply，其余 subscribedReply
	for _, subscriberID := range post.SubscribedUsers {
		if handled[subscriberID] {
			continue
		}
		handled[subscriberID] = true
		if post.IsUnsubscribed(subscriberID) {
			continue
		}
		subscriber, err := s.userRepo.FindByID(subscriberID)
		if err != nil || subscriber == nil {
			util.Logger.Warn("找不到订阅用户", zap.Int("subscriber", subscriberID), zap.Error(err))
			continue
		}
		// 非公开帖只通知作者信任的订阅者
		if postNonPublic(post) && !s.trusts(postAuthor.ID, subscriberID) {
			continue
		}
		cause := model.NotificationSubscribedReply
		if containsString(post.Mentions, subscriber.Username) {
			cause = model.NotificationMentioningPostReply
		}
		s.notify(&model.Notification{
			Cause:      cause,
			NotifieeID: subscriberID,
			SourceID:   commentAuthor.ID,
			SubjectID:  &post.ID,
			URL:        url,
			Context:    "post",
		})
	}
}

// mentionAllowed 提及通知的可见性门禁：社区帖要求被提及者是社区成员，
// 非公开帖要求帖子作者信任被提及者，公开帖一律放行
func (s *NotificationService) mentionAllowed(post *model.Post, postAuthor, mentioned *model.User) bool {
	if post.Type == model.PostTypeCommunity {
		return post.CommunityID != nil && mentioned.InCommunity(*post.CommunityID)
	}
	if postNonPublic(post) {
		if mentioned.ID == postAuthor.ID {
			return true
		}
		return s.trusts(postAuthor.ID, mentioned.ID)
	}
	return true
}

func (s *NotificationService) trusts(fromUserID, toUserID int) bool {
	ok, err := s.relationshipRepo.Exists(fromUserID, toUserID, model.RelationshipTrust)
	if err != nil {
		util.Logger.Error("查询信任关系失败", zap.Error(err))
		return false
	}
	return ok
}

// postNonPublic 判断帖子是否非公开：旧模型下的私有帖，或声明了受众列表的帖子
func postNonPublic(post *model.Post) bool {
	return post.Privacy == model.PrivacyPrivate || len(post.Audiences) > 0
}

func postURL(post *model.Post) string {
	if post.Author != nil {
		return "/" + post.Author.Username + "/" + post.URL
	}
	return fmt.Sprintf("/post/%d", post.ID)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
