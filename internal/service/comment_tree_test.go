package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sweet-sh/sweet-api/internal/model"
)

// 构造一棵五层深的评论链：c1 -> c2 -> c3 -> c4 -> c5
func deepCommentChain() []*model.Comment {
	c5 := &model.Comment{ID: "c5", AuthorID: 5}
	c4 := &model.Comment{ID: "c4", AuthorID: 4, Replies: []*model.Comment{c5}}
	c3 := &model.Comment{ID: "c3", AuthorID: 3, Replies: []*model.Comment{c4}}
	c2 := &model.Comment{ID: "c2", AuthorID: 2, Replies: []*model.Comment{c3}}
	c1 := &model.Comment{ID: "c1", AuthorID: 1, Replies: []*model.Comment{c2}}
	return []*model.Comment{c1}
}

func TestFindComment(t *testing.T) {
	comments := deepCommentChain()

	node, parent, depth := findComment(comments, "c1")
	assert.NotNil(t, node)
	assert.Nil(t, parent)
	assert.Equal(t, 1, depth)

	node, parent, depth = findComment(comments, "c5")
	assert.NotNil(t, node)
	assert.Equal(t, "c4", parent.ID)
	assert.Equal(t, 5, depth)

	node, _, _ = findComment(comments, "missing")
	assert.Nil(t, node)
}

func TestCountCommentsSkipsDeleted(t *testing.T) {
	comments := []*model.Comment{
		{ID: "a", Deleted: true, Replies: []*model.Comment{
			{ID: "b"},
			{ID: "c", Deleted: true},
		}},
		{ID: "d"},
	}
	assert.Equal(t, 2, countComments(comments))
}

func TestRemoveComment(t *testing.T) {
	comments := deepCommentChain()
	node, parent, _ := findComment(comments, "c5")

	assert.True(t, removeComment(&parent.Replies, node))
	assert.Empty(t, parent.Replies)

	// 再次摘除同一节点失败
	assert.False(t, removeComment(&comments, node))
}

func TestPruneDeletedAncestors(t *testing.T) {
	// c1(已删除) -> c2(已删除) -> c3(已删除，无回复)
	c3 := &model.Comment{ID: "c3", Deleted: true}
	c2 := &model.Comment{ID: "c2", Deleted: true, Replies: []*model.Comment{c3}}
	c1 := &model.Comment{ID: "c1", Deleted: true, Replies: []*model.Comment{c2}}
	post := &model.Post{Comments: []*model.Comment{c1}}

	pruneDeletedAncestors(post, "c3")
	assert.Empty(t, post.Comments)
}

func TestPruneStopsAtLiveAncestor(t *testing.T) {
	// c1 存活，c2 已删除且唯一的回复是 c3
	c3 := &model.Comment{ID: "c3", Deleted: true}
	c2 := &model.Comment{ID: "c2", Deleted: true, Replies: []*model.Comment{c3}}
	c1 := &model.Comment{ID: "c1", Replies: []*model.Comment{c2}}
	post := &model.Post{Comments: []*model.Comment{c1}}

	pruneDeletedAncestors(post, "c3")
	assert.Len(t, post.Comments, 1)
	assert.Equal(t, "c1", post.Comments[0].ID)
	assert.Empty(t, post.Comments[0].Replies)
}

func TestPruneStopsAtAncestorWithOtherReplies(t *testing.T) {
	// c2 已删除但还有另一条回复 c4，不能被清理
	c3 := &model.Comment{ID: "c3", Deleted: true}
	c4 := &model.Comment{ID: "c4"}
	c2 := &model.Comment{ID: "c2", Deleted: true, Replies: []*model.Comment{c3, c4}}
	post := &model.Post{Comments: []*model.Comment{c2}}

	pruneDeletedAncestors(post, "c3")
	assert.Len(t, post.Comments, 1)
	assert.Len(t, post.Comments[0].Replies, 1)
	assert.Equal(t, "c4", post.Comments[0].Replies[0].ID)
}

func TestCollectCommentImages(t *testing.T) {
	c := &model.Comment{
		Images: []string{"a.jpg"},
		Replies: []*model.Comment{
			{Images: []string{"b.jpg", "c.jpg"}},
		},
	}
	assert.ElementsMatch(t, []string{"a.jpg", "b.jpg", "c.jpg"}, collectCommentImages(c))
}

func TestAnnotateComments(t *testing.T) {
	post := &model.Post{AuthorID: 10, Comments: deepCommentChain()}
	vc := &viewerContext{
		viewer:     &model.User{ID: 1},
		mutedIDs:   map[int]bool{3: true},
		flaggedIDs: map[int]bool{},
	}

	annotateComments(post.Comments, 1, post, vc)

	c1, _, _ := findComment(post.Comments, "c1")
	assert.Equal(t, 1, c1.Level)
	assert.True(t, c1.CanReply)
	assert.True(t, c1.CanDelete) // 查看者是评论作者
	assert.True(t, c1.CanDisplay)

	// 被查看者静音的作者：保留占位但不展示
	c3, _, _ := findComment(post.Comments, "c3")
	assert.True(t, c3.Muted)
	assert.False(t, c3.CanDisplay)

	// 最大层级的评论不能再回复
	c5, _, _ := findComment(post.Comments, "c5")
	assert.Equal(t, model.MaxCommentDepth, c5.Level)
	assert.False(t, c5.CanReply)
	assert.False(t, c5.CanDelete) // 查看者既不是评论作者也不是帖子作者
}
