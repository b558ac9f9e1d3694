package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sweet-sh/sweet-api/internal/model"
)

// recordingNotificationService 返回一个把所有落库通知收集到切片里的服务
func recordingNotificationService(
	userRepo *MockUserRepository,
	relationshipRepo *MockRelationshipRepository,
) (*NotificationService, *[]*model.Notification) {
	notificationRepo := new(MockNotificationRepository)
	created := &[]*model.Notification{}
	notificationRepo.On("Create", mock.Anything).Run(func(args mock.Arguments) {
		*created = append(*created, args.Get(0).(*model.Notification))
	}).Return(nil)
	return NewNotificationService(notificationRepo, userRepo, relationshipRepo), created
}

func causesByNotifiee(created []*model.Notification) map[int]string {
	out := make(map[int]string, len(created))
	for _, n := range created {
		out[n.NotifieeID] = n.Cause
	}
	return out
}

func TestCommentNotificationFanout(t *testing.T) {
	userRepo := new(MockUserRepository)
	relationshipRepo := new(MockRelationshipRepository)
	svc, created := recordingNotificationService(userRepo, relationshipRepo)

	postAuthor := &model.User{ID: 1, Username: "author"}
	commenter := &model.User{ID: 2, Username: "commenter"}
	mentioned := &model.User{ID: 7, Username: "alice"}
	subscriber := &model.User{ID: 5, Username: "sub"}

	userRepo.On("FindByUsername", "alice").Return(mentioned, nil)
	userRepo.On("FindByID", 5).Return(subscriber, nil)

	post := &model.Post{
		ID:       10,
		AuthorID: 1,
		Author:   postAuthor,
		URL:      "abc",
		Privacy:  model.PrivacyPublic,
		Boosts: []model.Boost{
			{BoosterID: 4},
		},
		SubscribedUsers: []int{1, 2, 3, 4, 5},
	}
	parent := &model.Comment{ID: "p1", AuthorID: 3}
	comment := &model.Comment{ID: "c1", AuthorID: 2, Mentions: []string{"alice"}}

	svc.CommentNotifications(post, comment, parent, commenter)

	causes := causesByNotifiee(*created)
	assert.Equal(t, model.NotificationMention, causes[7])
	assert.Equal(t, model.NotificationReply, causes[1])
	assert.Equal(t, model.NotificationCommentReply, causes[3])
	assert.Equal(t, model.NotificationBoostedPostReply, causes[4])
	assert.Equal(t, model.NotificationSubscribedReply, causes[5])

	// 评论作者自己不收通知，每个接收者恰好一条
	_, notified := causes[2]
	assert.False(t, notified)
	assert.Len(t, *created, 5)

	// 深层链接指向新评论的锚点
	assert.Equal(t, "/author/abc#comment-c1", (*created)[0].URL)
}

func TestMentionBeatsLowerPriorityCauses(t *testing.T) {
	userRepo := new(MockUserRepository)
	relationshipRepo := new(MockRelationshipRepository)
	svc, created := recordingNotificationService(userRepo, relationshipRepo)

	postAuthor := &model.User{ID: 1, Username: "author"}
	commenter := &model.User{ID: 2, Username: "commenter"}

	userRepo.On("FindByUsername", "author").Return(postAuthor, nil)

	// 帖子作者同时被提及、是父评论作者、也是订阅者
	post := &model.Post{
		ID:              10,
		AuthorID:        1,
		Author:          postAuthor,
		URL:             "abc",
		Privacy:         model.PrivacyPublic,
		SubscribedUsers: []int{1},
	}
	parent := &model.Comment{ID: "p1", AuthorID: 1}
	comment := &model.Comment{ID: "c1", AuthorID: 2, Mentions: []string{"author"}}

	svc.CommentNotifications(post, comment, parent, commenter)

	assert.Len(t, *created, 1)
	assert.Equal(t, model.NotificationMention, (*created)[0].Cause)
	assert.Equal(t, 1, (*created)[0].NotifieeID)
}

func TestGateFailureStillMarksHandled(t *testing.T) {
	userRepo := new(MockUserRepository)
	relationshipRepo := new(MockRelationshipRepository)
	svc, created := recordingNotificationService(userRepo, relationshipRepo)

	communityID := 5
	postAuthor := &model.User{ID: 1, Username: "author"}
	commenter := &model.User{ID: 2, Username: "commenter"}
	// 被提及者不是社区成员
	outsider := &model.User{ID: 7, Username: "alice"}

	userRepo.On("FindByUsername", "alice").Return(outsider, nil)

	post := &model.Post{
		ID:          10,
		AuthorID:    1,
		Author:      postAuthor,
		URL:         "abc",
		Type:        model.PostTypeCommunity,
		CommunityID: &communityID,
		// 被提及者也在订阅者里
		SubscribedUsers: []int{1, 7},
	}
	comment := &model.Comment{ID: "c1", AuthorID: 2, Mentions: []string{"alice"}}

	svc.CommentNotifications(post, comment, nil, commenter)

	// 提及门禁失败后不能降级为订阅通知
	causes := causesByNotifiee(*created)
	_, notified := causes[7]
	assert.False(t, notified)
	assert.Equal(t, model.NotificationReply, causes[1])
	assert.Len(t, *created, 1)
}

func TestSubscriberTrustGateOnPrivatePost(t *testing.T) {
	userRepo := new(MockUserRepository)
	relationshipRepo := new(MockRelationshipRepository)
	svc, created := recordingNotificationService(userRepo, relationshipRepo)

	postAuthor := &model.User{ID: 1, Username: "author"}
	commenter := &model.User{ID: 2, Username: "commenter"}
	trusted := &model.User{ID: 5, Username: "trusted"}
	untrusted := &model.User{ID: 6, Username: "untrusted"}

	userRepo.On("FindByID", 5).Return(trusted, nil)
	userRepo.On("FindByID", 6).Return(untrusted, nil)
	relationshipRepo.On("Exists", 1, 5, model.RelationshipTrust).Return(true, nil)
	relationshipRepo.On("Exists", 1, 6, model.RelationshipTrust).Return(false, nil)

	post := &model.Post{
		ID:              10,
		AuthorID:        1,
		Author:          postAuthor,
		URL:             "abc",
		Privacy:         model.PrivacyPrivate,
		SubscribedUsers: []int{5, 6},
	}
	comment := &model.Comment{ID: "c1", AuthorID: 2}

	svc.CommentNotifications(post, comment, nil, commenter)

	causes := causesByNotifiee(*created)
	assert.Equal(t, model.NotificationSubscribedReply, causes[5])
	_, notified := causes[6]
	assert.False(t, notified)
	// 帖子作者不受信任门禁影响
	assert.Equal(t, model.NotificationReply, causes[1])
}

func TestMentioningPostReply(t *testing.T) {
	userRepo := new(MockUserRepository)
	relationshipRepo := new(MockRelationshipRepository)
	svc, created := recordingNotificationService(userRepo, relationshipRepo)

	postAuthor := &model.User{ID: 1, Username: "author"}
	commenter := &model.User{ID: 2, Username: "commenter"}
	subscriber := &model.User{ID: 5, Username: "bob"}

	userRepo.On("FindByID", 5).Return(subscriber, nil)

	// 订阅者在帖子正文里被提及过，收到 mentioningPostReply 而非 subscribedReply
	post := &model.Post{
		ID:              10,
		AuthorID:        1,
		Author:          postAuthor,
		URL:             "abc",
		Privacy:         model.PrivacyPublic,
		Mentions:        []string{"bob"},
		SubscribedUsers: []int{5},
	}
	comment := &model.Comment{ID: "c1", AuthorID: 2}

	svc.CommentNotifications(post, comment, nil, commenter)

	causes := causesByNotifiee(*created)
	assert.Equal(t, model.NotificationMentioningPostReply, causes[5])
}

func TestUnsubscribedPostAuthorNotNotified(t *testing.T) {
	userRepo := new(MockUserRepository)
	relationshipRepo := new(MockRelationshipRepository)
	svc, created := recordingNotificationService(userRepo, relationshipRepo)

	postAuthor := &model.User{ID: 1, Username: "author"}
	commenter := &model.User{ID: 2, Username: "commenter"}

	post := &model.Post{
		ID:               10,
		AuthorID:         1,
		Author:           postAuthor,
		URL:              "abc",
		Privacy:          model.PrivacyPublic,
		UnsubscribedUser: []int{1},
	}
	comment := &model.Comment{ID: "c1", AuthorID: 2}

	svc.CommentNotifications(post, comment, nil, commenter)
	assert.Empty(t, *created)
}

func TestPlusNotificationSkipsSelf(t *testing.T) {
	userRepo := new(MockUserRepository)
	relationshipRepo := new(MockRelationshipRepository)
	svc, created := recordingNotificationService(userRepo, relationshipRepo)

	author := &model.User{ID: 1, Username: "author"}
	post := &model.Post{ID: 10, AuthorID: 1, Author: author, URL: "abc"}

	svc.PlusNotification(post, author)
	assert.Empty(t, *created)

	svc.PlusNotification(post, &model.User{ID: 2, Username: "fan"})
	assert.Len(t, *created, 1)
	assert.Equal(t, model.NotificationPlus, (*created)[0].Cause)
	assert.Equal(t, 1, (*created)[0].NotifieeID)
}

func TestBoostNotificationSkipsUnsubscribedAuthor(t *testing.T) {
	userRepo := new(MockUserRepository)
	relationshipRepo := new(MockRelationshipRepository)
	svc, created := recordingNotificationService(userRepo, relationshipRepo)

	author := &model.User{ID: 1, Username: "author"}
	booster := &model.User{ID: 2, Username: "booster"}
	post := &model.Post{
		ID:               10,
		AuthorID:         1,
		Author:           author,
		URL:              "abc",
		UnsubscribedUser: []int{1},
	}

	svc.BoostNotification(post, booster)
	assert.Empty(t, *created)
}
