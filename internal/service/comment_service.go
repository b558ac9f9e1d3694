package service

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sweet-sh/sweet-api/internal/errors"
	"github.com/sweet-sh/sweet-api/internal/model"
	"github.com/sweet-sh/sweet-api/internal/repository/interfaces"
	"github.com/sweet-sh/sweet-api/internal/storage"
	"github.com/sweet-sh/sweet-api/internal/util"
)

// CommentService 评论树的写路径：创建和删除。评论树随帖子文档整体写回
type CommentService struct {
	postRepo            interfaces.PostRepository
	userRepo            interfaces.UserRepository
	relationshipRepo    interfaces.RelationshipRepository
	audienceRepo        interfaces.AudienceRepository
	communityRepo       interfaces.CommunityRepository
	notificationService *NotificationService
	fileStorage         storage.FileStorage
}

func NewCommentService(
	postRepo interfaces.PostRepository,
	userRepo interfaces.UserRepository,
	relationshipRepo interfaces.RelationshipRepository,
	audienceRepo interfaces.AudienceRepository,
	communityRepo interfaces.CommunityRepository,
	notificationService *NotificationService,
	fileStorage storage.FileStorage,
) *CommentService {
	return &CommentService{
		postRepo:            postRepo,
		userRepo:            userRepo,
		relationshipRepo:    relationshipRepo,
		audienceRepo:        audienceRepo,
		communityRepo:       communityRepo,
		notificationService: notificationService,
		fileStorage:         fileStorage,
	}
}

// CreateCommentInput 创建评论的输入。ParentID 为空表示顶层评论
type CreateCommentInput struct {
	PostID   int
	ParentID string
	Content  string
	Mentions []string
	Images   []string
}

// CreateComment 在帖子下创建评论。父评论必须存在且未删除，嵌套深度
// 不能超过上限。评论者自动订阅帖子，帖子的活跃时间被刷新
func (s *CommentService) CreateComment(viewer *model.User, input *CreateCommentInput) (*model.Comment, error) {
	post, err := s.postRepo.FindByID(input.PostID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, errors.New(errors.ErrPostNotFound, "post not found")
	}

	vc, err := loadViewerContext(viewer, s.relationshipRepo, s.audienceRepo)
	if err != nil {
		return nil, err
	}
	if err := s.hydrateForWrite(post); err != nil {
		return nil, err
	}
	if !postVisible(vc, post, model.ContextSingle) {
		return nil, errors.New(errors.ErrPostNotFound, "post not found")
	}
	if !canCommentOnPost(vc, post) {
		return nil, errors.New(errors.ErrNotCommunityMember, "must be a community member to comment")
	}

	comment := &model.Comment{
		ID:        uuid.NewString(),
		AuthorID:  viewer.ID,
		Timestamp: time.Now(),
		Content:   input.Content,
		Mentions:  input.Mentions,
		Images:    input.Images,
	}

	var parent *model.Comment
	if input.ParentID != "" {
		node, _, depth := findComment(post.Comments, input.ParentID)
		if node == nil || node.Deleted {
			return nil, errors.New(errors.ErrCommentNotFound, "parent comment not found")
		}
		if depth+1 > model.MaxCommentDepth {
			return nil, errors.New(errors.ErrCommentTooDeep, "comment nested too deep")
		}
		node.Replies = append(node.Replies, comment)
		parent = node
	} else {
		post.Comments = append(post.Comments, comment)
	}

	post.NumberOfComments = countComments(post.Comments)
	post.LastUpdated = time.Now()

	// 不订阅自己的帖子，已订阅的不重复订阅
	if post.AuthorID != viewer.ID && !post.IsSubscribed(viewer.ID) {
		post.SubscribedUsers = append(post.SubscribedUsers, viewer.ID)
	}

	if err := s.postRepo.Save(post); err != nil {
		return nil, err
	}

	s.notificationService.CommentNotifications(post, comment, parent, viewer)
	comment.Author = viewer
	return comment, nil
}

// DeleteComment 删除评论。只有评论作者或帖子作者可以删除。
// 仍有回复的评论软删除为占位节点，否则从树中摘除，并向上清理
// 已无回复的软删除祖先。评论引用的图片从存储中清理
func (s *CommentService) DeleteComment(viewer *model.User, postID int, commentID string) (*model.Post, error) {
	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, errors.New(errors.ErrPostNotFound, "post not found")
	}

	node, parent, _ := findComment(post.Comments, commentID)
	if node == nil || node.Deleted {
		return nil, errors.New(errors.ErrCommentNotFound, "comment not found")
	}
	if node.AuthorID != viewer.ID && post.AuthorID != viewer.ID {
		return nil, errors.New(errors.ErrForbidden, "not allowed to delete this comment")
	}

	authorID := node.AuthorID
	s.removeImages(node.Images)

	if len(node.Replies) > 0 {
		node.Deleted = true
		node.Content = ""
		node.Mentions = nil
		node.Images = nil
	} else {
		if parent == nil {
			removeComment(&post.Comments, node)
		} else {
			removeComment(&parent.Replies, node)
			if parent.Deleted && len(parent.Replies) == 0 {
				pruneDeletedAncestors(post, parent.ID)
			}
		}
	}

	post.NumberOfComments = countComments(post.Comments)

	// 评论作者在帖子上已无任何评论时退出订阅集合
	remaining := map[int]struct{}{}
	collectCommentAuthors(post.Comments, remaining)
	if _, stillCommenting := remaining[authorID]; !stillCommenting {
		post.SubscribedUsers = removeID(post.SubscribedUsers, authorID)
	}

	if err := s.postRepo.Save(post); err != nil {
		return nil, err
	}
	return post, nil
}

// hydrateForWrite 写路径只需要帖子的社区对象来做成员资格检查
func (s *CommentService) hydrateForWrite(post *model.Post) error {
	if post.CommunityID == nil {
		return nil
	}
	community, err := s.communityRepo.FindByID(*post.CommunityID)
	if err != nil {
		return err
	}
	post.Community = community
	return nil
}

func (s *CommentService) removeImages(images []string) {
	for _, filename := range images {
		if err := s.fileStorage.DeleteFile("images/" + filename); err != nil {
			util.Logger.Warn("删除评论图片失败", zap.String("filename", filename), zap.Error(err))
		}
	}
}

func removeID(ids []int, id int) []int {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
