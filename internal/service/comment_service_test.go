package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apperrors "github.com/sweet-sh/sweet-api/internal/errors"
	"github.com/sweet-sh/sweet-api/internal/model"
)

func newCommentServiceForTest(postRepo *MockPostRepository) (*CommentService, *fakeFileStorage) {
	userRepo := new(MockUserRepository)
	relationshipRepo := new(MockRelationshipRepository)
	audienceRepo := new(MockAudienceRepository)
	communityRepo := new(MockCommunityRepository)
	notificationRepo := new(MockNotificationRepository)
	files := &fakeFileStorage{}

	// 查看者没有任何关系边，通知静默落库
	relationshipRepo.On("FindTargets", mock.Anything, mock.Anything).Return(nil, nil)
	relationshipRepo.On("FindSources", mock.Anything, mock.Anything).Return(nil, nil)
	relationshipRepo.On("FindTargetsOfSources", mock.Anything, mock.Anything).Return(nil, nil)
	relationshipRepo.On("Exists", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	audienceRepo.On("FindIDsContainingUser", mock.Anything).Return(nil, nil)
	notificationRepo.On("Create", mock.Anything).Return(nil)
	userRepo.On("FindByID", mock.Anything).Return(&model.User{ID: 1, Username: "author"}, nil)

	svc := NewCommentService(
		postRepo, userRepo, relationshipRepo, audienceRepo, communityRepo,
		NewNotificationService(notificationRepo, userRepo, relationshipRepo),
		files,
	)
	return svc, files
}

func TestCreateCommentSubscribesCommenter(t *testing.T) {
	postRepo := new(MockPostRepository)
	svc, _ := newCommentServiceForTest(postRepo)

	post := &model.Post{
		ID:       10,
		AuthorID: 1,
		Author:   &model.User{ID: 1, Username: "author"},
		URL:      "abc",
		Privacy:  model.PrivacyPublic,
	}
	postRepo.On("FindByID", 10).Return(post, nil)

	var saved *model.Post
	postRepo.On("Save", mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(0).(*model.Post)
	}).Return(nil)

	viewer := &model.User{ID: 2, Username: "commenter"}
	comment, err := svc.CreateComment(viewer, &CreateCommentInput{PostID: 10, Content: "hello"})

	assert.NoError(t, err)
	assert.NotEmpty(t, comment.ID)
	assert.Equal(t, viewer, comment.Author)
	assert.Equal(t, 1, saved.NumberOfComments)
	assert.Contains(t, saved.SubscribedUsers, 2)
}

func TestCreateCommentOwnPostDoesNotSubscribe(t *testing.T) {
	postRepo := new(MockPostRepository)
	svc, _ := newCommentServiceForTest(postRepo)

	post := &model.Post{
		ID:       10,
		AuthorID: 1,
		Author:   &model.User{ID: 1, Username: "author"},
		URL:      "abc",
		Privacy:  model.PrivacyPublic,
	}
	postRepo.On("FindByID", 10).Return(post, nil)
	postRepo.On("Save", mock.Anything).Return(nil)

	author := &model.User{ID: 1, Username: "author"}
	_, err := svc.CreateComment(author, &CreateCommentInput{PostID: 10, Content: "hi"})

	assert.NoError(t, err)
	assert.NotContains(t, post.SubscribedUsers, 1)
}

func TestCreateCommentDepthLimit(t *testing.T) {
	postRepo := new(MockPostRepository)
	svc, _ := newCommentServiceForTest(postRepo)

	post := &model.Post{
		ID:       10,
		AuthorID: 1,
		Author:   &model.User{ID: 1, Username: "author"},
		URL:      "abc",
		Privacy:  model.PrivacyPublic,
		Comments: deepCommentChain(),
	}
	postRepo.On("FindByID", 10).Return(post, nil)
	postRepo.On("Save", mock.Anything).Return(nil)

	viewer := &model.User{ID: 2, Username: "commenter"}

	// 第5层还能回复第4层的评论
	_, err := svc.CreateComment(viewer, &CreateCommentInput{PostID: 10, ParentID: "c4", Content: "ok"})
	assert.NoError(t, err)

	// 回复第5层的评论会越过深度上限
	_, err = svc.CreateComment(viewer, &CreateCommentInput{PostID: 10, ParentID: "c5", Content: "too deep"})
	assert.Error(t, err)
	assert.Equal(t, apperrors.ErrCommentTooDeep, apperrors.CodeOf(err))
}

func TestCreateCommentOnDeletedParent(t *testing.T) {
	postRepo := new(MockPostRepository)
	svc, _ := newCommentServiceForTest(postRepo)

	post := &model.Post{
		ID:       10,
		AuthorID: 1,
		Author:   &model.User{ID: 1, Username: "author"},
		URL:      "abc",
		Privacy:  model.PrivacyPublic,
		Comments: []*model.Comment{
			{ID: "gone", AuthorID: 3, Deleted: true, Replies: []*model.Comment{{ID: "kid"}}},
		},
	}
	postRepo.On("FindByID", 10).Return(post, nil)

	viewer := &model.User{ID: 2, Username: "commenter"}
	_, err := svc.CreateComment(viewer, &CreateCommentInput{PostID: 10, ParentID: "gone", Content: "hi"})

	assert.Error(t, err)
	assert.Equal(t, apperrors.ErrCommentNotFound, apperrors.CodeOf(err))
}

func TestDeleteCommentSoftDeleteWithReplies(t *testing.T) {
	postRepo := new(MockPostRepository)
	svc, files := newCommentServiceForTest(postRepo)

	post := &model.Post{
		ID:       10,
		AuthorID: 1,
		Comments: []*model.Comment{
			{ID: "c1", AuthorID: 2, Content: "parent", Images: []string{"pic.jpg"}, Replies: []*model.Comment{
				{ID: "c2", AuthorID: 3, Content: "child"},
			}},
		},
	}
	postRepo.On("FindByID", 10).Return(post, nil)
	postRepo.On("Save", mock.Anything).Return(nil)

	updated, err := svc.DeleteComment(&model.User{ID: 2}, 10, "c1")
	assert.NoError(t, err)

	// 有回复的评论软删除为占位节点，子树保留
	c1, _, _ := findComment(updated.Comments, "c1")
	assert.True(t, c1.Deleted)
	assert.Empty(t, c1.Content)
	assert.Nil(t, c1.Images)
	assert.Len(t, c1.Replies, 1)
	assert.Equal(t, 1, updated.NumberOfComments)
	assert.Equal(t, []string{"images/pic.jpg"}, files.deleted)
}

func TestDeleteCommentLeafPrunesDeletedAncestors(t *testing.T) {
	postRepo := new(MockPostRepository)
	svc, _ := newCommentServiceForTest(postRepo)

	// c1 已软删除，唯一的回复 c2 是活叶子
	post := &model.Post{
		ID:       10,
		AuthorID: 1,
		Comments: []*model.Comment{
			{ID: "c1", AuthorID: 2, Deleted: true, Replies: []*model.Comment{
				{ID: "c2", AuthorID: 3},
			}},
		},
	}
	postRepo.On("FindByID", 10).Return(post, nil)
	postRepo.On("Save", mock.Anything).Return(nil)

	updated, err := svc.DeleteComment(&model.User{ID: 3}, 10, "c2")
	assert.NoError(t, err)

	// 叶子摘除后空壳祖先一并清理
	assert.Empty(t, updated.Comments)
	assert.Equal(t, 0, updated.NumberOfComments)
}

func TestDeleteCommentAuthorization(t *testing.T) {
	postRepo := new(MockPostRepository)
	svc, _ := newCommentServiceForTest(postRepo)

	post := &model.Post{
		ID:       10,
		AuthorID: 1,
		Comments: []*model.Comment{{ID: "c1", AuthorID: 2}},
	}
	postRepo.On("FindByID", 10).Return(post, nil)
	postRepo.On("Save", mock.Anything).Return(nil)

	// 无关第三方不能删除
	_, err := svc.DeleteComment(&model.User{ID: 9}, 10, "c1")
	assert.Error(t, err)
	assert.Equal(t, apperrors.ErrForbidden, apperrors.CodeOf(err))

	// 帖子作者可以删除别人的评论
	_, err = svc.DeleteComment(&model.User{ID: 1}, 10, "c1")
	assert.NoError(t, err)
}

func TestDeleteCommentSubscriberChurn(t *testing.T) {
	postRepo := new(MockPostRepository)
	svc, _ := newCommentServiceForTest(postRepo)

	post := &model.Post{
		ID:              10,
		AuthorID:        1,
		SubscribedUsers: []int{2, 3},
		Comments: []*model.Comment{
			{ID: "c1", AuthorID: 2},
			{ID: "c2", AuthorID: 3},
			{ID: "c3", AuthorID: 3},
		},
	}
	postRepo.On("FindByID", 10).Return(post, nil)
	postRepo.On("Save", mock.Anything).Return(nil)

	// 用户2的最后一条评论被删除，随之退出订阅
	updated, err := svc.DeleteComment(&model.User{ID: 2}, 10, "c1")
	assert.NoError(t, err)
	assert.NotContains(t, updated.SubscribedUsers, 2)

	// 用户3还有别的评论，订阅保留
	updated, err = svc.DeleteComment(&model.User{ID: 3}, 10, "c2")
	assert.NoError(t, err)
	assert.Contains(t, updated.SubscribedUsers, 3)
}
