package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sweet-sh/sweet-api/internal/model"
)

// MockLibraryRepository 是 LibraryRepository 的模拟实现
type MockLibraryRepository struct {
	mock.Mock
}

func (m *MockLibraryRepository) Add(record *model.LibraryRecord) error {
	args := m.Called(record)
	return args.Error(0)
}

func (m *MockLibraryRepository) Remove(userID, postID int) error {
	args := m.Called(userID, postID)
	return args.Error(0)
}

func (m *MockLibraryRepository) Exists(userID, postID int) (bool, error) {
	args := m.Called(userID, postID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLibraryRepository) FindPostIDs(userID int) ([]int, error) {
	args := m.Called(userID)
	ids, _ := args.Get(0).([]int)
	return ids, args.Error(1)
}

type feedFixture struct {
	svc              *FeedService
	postRepo         *MockPostRepository
	userRepo         *MockUserRepository
	communityRepo    *MockCommunityRepository
	relationshipRepo *MockRelationshipRepository
	libraryRepo      *MockLibraryRepository
}

func newFeedFixture(viewerID int, followed []int, muted []int) *feedFixture {
	f := &feedFixture{
		postRepo:         new(MockPostRepository),
		userRepo:         new(MockUserRepository),
		communityRepo:    new(MockCommunityRepository),
		relationshipRepo: new(MockRelationshipRepository),
		libraryRepo:      new(MockLibraryRepository),
	}
	audienceRepo := new(MockAudienceRepository)

	f.relationshipRepo.On("FindTargets", viewerID, model.RelationshipFollow).Return(followed, nil)
	f.relationshipRepo.On("FindTargets", viewerID, model.RelationshipMute).Return(muted, nil)
	f.relationshipRepo.On("FindTargets", viewerID, model.RelationshipFlag).Return(nil, nil)
	f.relationshipRepo.On("FindTargets", viewerID, model.RelationshipTrust).Return(nil, nil)
	f.relationshipRepo.On("FindTargetsOfSources", mock.Anything, model.RelationshipFlag).Return(nil, nil)
	f.relationshipRepo.On("FindSources", viewerID, model.RelationshipTrust).Return(nil, nil)
	audienceRepo.On("FindIDsContainingUser", viewerID).Return(nil, nil)
	f.libraryRepo.On("FindPostIDs", viewerID).Return(nil, nil)

	f.svc = NewFeedService(
		f.postRepo, f.userRepo, f.communityRepo,
		f.relationshipRepo, audienceRepo, f.libraryRepo,
	)
	return f
}

func TestListFeedBoostDedup(t *testing.T) {
	// 查看者1关注用户2；用户2转发了自己的旧帖，原帖应被转发行取代
	f := newFeedFixture(1, []int{2}, nil)

	t1 := time.Now().Add(-time.Hour)
	t2 := time.Now()
	targetID := 10

	original := &model.Post{
		ID:          10,
		Type:        model.PostTypeOriginal,
		AuthorID:    2,
		URL:         "orig",
		Privacy:     model.PrivacyPublic,
		Timestamp:   t1,
		LastUpdated: t1,
		Boosts:      []model.Boost{{BoosterID: 2, BoostID: 100, Timestamp: t2}},
	}
	boostRow := &model.Post{
		ID:            100,
		Type:          model.PostTypeBoost,
		AuthorID:      2,
		BoostTargetID: &targetID,
		Timestamp:     t2,
		LastUpdated:   t2,
	}

	f.postRepo.On("FindCandidates", mock.Anything).Return([]*model.Post{boostRow, original}, nil)
	f.postRepo.On("FindByIDs", mock.Anything).Return([]*model.Post{original}, nil)
	f.userRepo.On("FindByIDs", mock.Anything).Return([]*model.User{{ID: 2, Username: "friend"}}, nil)

	page, err := f.svc.ListFeed(&model.User{ID: 1}, &FeedRequest{Context: model.ContextHome})
	assert.NoError(t, err)

	// 同一逻辑帖只出现一次，以转发行的身份展示原帖
	assert.Len(t, page.Posts, 1)
	entry := page.Posts[0]
	assert.Equal(t, 10, entry.Post.ID)
	assert.Equal(t, 100, entry.DeleteID)
	assert.NotNil(t, entry.BoostBlame)
	assert.Equal(t, model.BoostReasonFollow, entry.BoostBlame.Reason)
	assert.Equal(t, 2, entry.BoostBlame.Culprit)

	// 游标推进到最旧的候选
	assert.NotNil(t, page.Oldest)
	assert.True(t, page.Oldest.Equal(t1))
}

func TestListFeedFiltersMutedAuthors(t *testing.T) {
	// 查看者1关注2和3，但屏蔽了3
	f := newFeedFixture(1, []int{2, 3}, []int{3})

	now := time.Now()
	posts := []*model.Post{
		{ID: 1, Type: model.PostTypeOriginal, AuthorID: 2, Privacy: model.PrivacyPublic, Timestamp: now, LastUpdated: now},
		{ID: 2, Type: model.PostTypeOriginal, AuthorID: 3, Privacy: model.PrivacyPublic, Timestamp: now, LastUpdated: now},
	}

	f.postRepo.On("FindCandidates", mock.Anything).Return(posts, nil)
	f.userRepo.On("FindByIDs", mock.Anything).Return([]*model.User{
		{ID: 2, Username: "ok"},
		{ID: 3, Username: "blocked"},
	}, nil)

	page, err := f.svc.ListFeed(&model.User{ID: 1}, &FeedRequest{Context: model.ContextHome})
	assert.NoError(t, err)
	assert.Len(t, page.Posts, 1)
	assert.Equal(t, 1, page.Posts[0].Post.ID)
}

func TestListFeedRestrictedCommunityNonMember(t *testing.T) {
	// 受限社区的时间线对非成员不可见：候选查询直接为空，连数据库都不碰
	f := newFeedFixture(99, nil, nil)

	f.communityRepo.On("FindByID", 7).Return(&model.Community{
		ID:         7,
		Name:       "secret",
		Visibility: model.CommunityRestricted,
		Members:    []int{2},
	}, nil)

	page, err := f.svc.ListFeed(&model.User{ID: 99}, &FeedRequest{Context: model.ContextCommunity, Identifier: "7"})
	assert.NoError(t, err)
	assert.Empty(t, page.Posts)
	f.postRepo.AssertNotCalled(t, "FindCandidates", mock.Anything)
}

func TestListFeedRestrictedCommunityMember(t *testing.T) {
	// 成员照常看到受限社区的时间线
	f := newFeedFixture(2, nil, nil)

	communityID := 7
	community := &model.Community{
		ID:         7,
		Name:       "secret",
		Visibility: model.CommunityRestricted,
		Members:    []int{2},
	}
	now := time.Now()
	post := &model.Post{
		ID:          1,
		Type:        model.PostTypeCommunity,
		AuthorID:    2,
		CommunityID: &communityID,
		Timestamp:   now,
		LastUpdated: now,
	}

	f.communityRepo.On("FindByID", 7).Return(community, nil)
	f.communityRepo.On("FindByIDs", []int{7}).Return([]*model.Community{community}, nil)
	f.postRepo.On("FindCandidates", mock.Anything).Return([]*model.Post{post}, nil)
	f.userRepo.On("FindByIDs", mock.Anything).Return([]*model.User{{ID: 2, Username: "member"}}, nil)

	page, err := f.svc.ListFeed(&model.User{ID: 2}, &FeedRequest{Context: model.ContextCommunity, Identifier: "7"})
	assert.NoError(t, err)
	assert.Len(t, page.Posts, 1)
	assert.Equal(t, 1, page.Posts[0].Post.ID)
}

func TestListFeedSingleContextSkipsDedup(t *testing.T) {
	// 单帖页上 boost 行直接解析为目标帖，即使目标帖更活跃也不压制
	f := newFeedFixture(1, nil, nil)

	t1 := time.Now().Add(-time.Hour)
	t2 := time.Now()
	targetID := 10

	target := &model.Post{
		ID:          10,
		Type:        model.PostTypeOriginal,
		AuthorID:    2,
		Privacy:     model.PrivacyPublic,
		Timestamp:   t1,
		LastUpdated: t2, // 目标帖比转发更活跃
	}
	boostRow := &model.Post{
		ID:            100,
		Type:          model.PostTypeBoost,
		AuthorID:      3,
		BoostTargetID: &targetID,
		Timestamp:     t1,
		LastUpdated:   t1,
	}

	f.postRepo.On("FindCandidates", mock.Anything).Return([]*model.Post{boostRow}, nil)
	f.postRepo.On("FindByIDs", mock.Anything).Return([]*model.Post{target}, nil)
	f.userRepo.On("FindByIDs", mock.Anything).Return([]*model.User{
		{ID: 2, Username: "author"},
		{ID: 3, Username: "booster"},
	}, nil)

	page, err := f.svc.ListFeed(&model.User{ID: 1}, &FeedRequest{Context: model.ContextSingle, Identifier: "100"})
	assert.NoError(t, err)
	assert.Len(t, page.Posts, 1)
	assert.Equal(t, 10, page.Posts[0].Post.ID)
	assert.NotNil(t, page.Posts[0].BoostBlame)
}

func TestListFeedEmptyLibraryShortCircuits(t *testing.T) {
	f := newFeedFixture(1, nil, nil)

	page, err := f.svc.ListFeed(&model.User{ID: 1}, &FeedRequest{Context: model.ContextLibrary})
	assert.NoError(t, err)
	assert.Empty(t, page.Posts)
	f.postRepo.AssertNotCalled(t, "FindCandidates", mock.Anything)
}

func TestBuildCandidateQuery(t *testing.T) {
	vc := testViewer(1)
	vc.followedIDs = []int{1, 2}
	vc.communityIDs = []int{5}

	q := buildCandidateQuery(vc, model.ContextHome, feedTarget{}, time.Time{})
	assert.Equal(t, []int{1, 2}, q.FollowedAuthors)
	assert.Equal(t, []int{5}, q.MemberCommunities)
	assert.Equal(t, model.SortByLastUpdated, q.SortBy)

	// chronological 偏好切换排序键
	vc.viewer.Settings.UserTimelineSorting = model.SortingChronological
	q = buildCandidateQuery(vc, model.ContextUser, feedTarget{User: &model.User{ID: 7}}, time.Time{})
	assert.Equal(t, 7, *q.Author)
	assert.Equal(t, model.SortByTimestamp, q.SortBy)

	// 空收藏夹产生恒空查询
	q = buildCandidateQuery(vc, model.ContextLibrary, feedTarget{}, time.Time{})
	assert.True(t, q.Empty)

	q = buildCandidateQuery(vc, model.ContextTag, feedTarget{Tag: "cats"}, time.Time{})
	assert.Equal(t, "cats", q.Tag)

	// 受限社区对非成员产生恒空查询，对成员正常
	restricted := &model.Community{ID: 9, Visibility: model.CommunityRestricted, Members: []int{2}}
	q = buildCandidateQuery(vc, model.ContextCommunity, feedTarget{Community: restricted}, time.Time{})
	assert.True(t, q.Empty)
	assert.Nil(t, q.Community)

	restricted.Members = []int{1, 2}
	q = buildCandidateQuery(vc, model.ContextCommunity, feedTarget{Community: restricted}, time.Time{})
	assert.False(t, q.Empty)
	assert.Equal(t, 9, *q.Community)
}
