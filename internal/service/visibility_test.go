package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sweet-sh/sweet-api/internal/model"
)

func testViewer(id int) *viewerContext {
	return &viewerContext{
		viewer:     &model.User{ID: id},
		mutedIDs:   map[int]bool{},
		flaggedIDs: map[int]bool{},
		trustingMe: map[int]bool{},
	}
}

func TestAudienceGate(t *testing.T) {
	post := &model.Post{AuthorID: 1, Audiences: []int{10, 11}}

	vc := testViewer(2)
	vc.audienceIDs = []int{11}
	assert.True(t, postVisible(vc, post, model.ContextHome))

	vc.audienceIDs = []int{12}
	assert.False(t, postVisible(vc, post, model.ContextHome))

	// 作者总是能看到自己的帖子
	author := testViewer(1)
	assert.True(t, postVisible(author, post, model.ContextHome))
}

func TestLegacyPrivacyGate(t *testing.T) {
	public := &model.Post{AuthorID: 1, Privacy: model.PrivacyPublic}
	private := &model.Post{AuthorID: 1, Privacy: model.PrivacyPrivate}

	vc := testViewer(2)
	assert.True(t, postVisible(vc, public, model.ContextHome))
	assert.False(t, postVisible(vc, private, model.ContextHome))

	// 作者信任查看者后私有帖可见
	vc.trustingMe[1] = true
	assert.True(t, postVisible(vc, private, model.ContextHome))
}

func TestEmptyAudiencesFallsBackToPrivacy(t *testing.T) {
	// Audiences 为 nil 时走旧模型；空切片是显式的空受众集合
	vc := testViewer(2)

	nilAudiences := &model.Post{AuthorID: 1, Privacy: model.PrivacyPublic, Audiences: nil}
	assert.True(t, postVisible(vc, nilAudiences, model.ContextHome))

	emptyAudiences := &model.Post{AuthorID: 1, Privacy: model.PrivacyPublic, Audiences: []int{}}
	assert.False(t, postVisible(vc, emptyAudiences, model.ContextHome))
}

func TestCommunityMembershipGate(t *testing.T) {
	community := &model.Community{
		ID:         5,
		Visibility: model.CommunityRestricted,
		Members:    []int{1, 3},
	}
	post := &model.Post{
		AuthorID:    1,
		Type:        model.PostTypeCommunity,
		CommunityID: &community.ID,
		Community:   community,
	}

	member := testViewer(3)
	outsider := testViewer(2)

	assert.True(t, postVisible(member, post, model.ContextHome))
	assert.False(t, postVisible(outsider, post, model.ContextHome))

	// 社区自己的页面不再重复检查成员资格
	assert.True(t, postVisible(outsider, post, model.ContextCommunity))
}

func TestCommunitySinglePostExceptions(t *testing.T) {
	community := &model.Community{ID: 5, Visibility: model.CommunityPublic, Members: []int{1}}
	post := &model.Post{
		AuthorID:    1,
		Type:        model.PostTypeCommunity,
		CommunityID: &community.ID,
		Community:   community,
	}

	// 公开社区的帖子在单帖页上对非成员可见
	outsider := testViewer(2)
	assert.True(t, postVisible(outsider, post, model.ContextSingle))

	// 受限社区则不然
	community.Visibility = model.CommunityRestricted
	assert.False(t, postVisible(outsider, post, model.ContextSingle))

	// 但作者自己总是可见
	author := testViewer(1)
	assert.True(t, postVisible(author, post, model.ContextSingle))
}

func TestCommunityMutedAuthorHidden(t *testing.T) {
	community := &model.Community{
		ID:           5,
		Visibility:   model.CommunityPublic,
		Members:      []int{1, 2},
		MutedMembers: []int{1},
	}
	post := &model.Post{
		AuthorID:    1,
		Type:        model.PostTypeCommunity,
		CommunityID: &community.ID,
		Community:   community,
	}

	// 被社区禁言的成员的帖子对所有人隐藏，包括在社区页面上
	member := testViewer(2)
	assert.False(t, postVisible(member, post, model.ContextCommunity))
}

func TestMuteOverridesEverything(t *testing.T) {
	post := &model.Post{AuthorID: 1, Privacy: model.PrivacyPublic}

	vc := testViewer(2)
	vc.mutedIDs[1] = true
	assert.False(t, postVisible(vc, post, model.ContextHome))

	// 即使作者信任查看者，屏蔽依旧生效
	private := &model.Post{AuthorID: 1, Privacy: model.PrivacyPrivate}
	vc.trustingMe[1] = true
	assert.False(t, postVisible(vc, private, model.ContextHome))
}

func TestCanCommentOnPost(t *testing.T) {
	communityID := 5
	communityPost := &model.Post{AuthorID: 1, CommunityID: &communityID}
	plainPost := &model.Post{AuthorID: 1}

	vc := testViewer(2)
	assert.True(t, canCommentOnPost(vc, plainPost))
	assert.False(t, canCommentOnPost(vc, communityPost))

	vc.communityIDs = []int{5}
	assert.True(t, canCommentOnPost(vc, communityPost))
}
