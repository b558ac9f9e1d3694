package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sweet-sh/sweet-api/internal/model"
)

func TestRelevantBoosters(t *testing.T) {
	vc := testViewer(1)
	vc.followedIDs = []int{1, 2, 3}
	community := &model.Community{ID: 5, Members: []int{7, 8}}

	assert.Equal(t, []int{42}, relevantBoosters(model.ContextUser, vc, 42, nil))
	assert.Equal(t, []int{7, 8}, relevantBoosters(model.ContextCommunity, vc, 0, community))
	assert.Equal(t, []int{1, 2, 3}, relevantBoosters(model.ContextHome, vc, 0, nil))
	assert.Equal(t, []int{1, 2, 3}, relevantBoosters(model.ContextTag, vc, 0, nil))
	assert.Nil(t, relevantBoosters(model.ContextSingle, vc, 0, nil))
}

func TestOriginalSuppressedByNewerRelevantBoost(t *testing.T) {
	now := time.Now()
	post := &model.Post{
		ID:          1,
		Type:        model.PostTypeOriginal,
		LastUpdated: now,
		Boosts: []model.Boost{
			{BoosterID: 2, Timestamp: now.Add(time.Hour)},
		},
	}
	vc := testViewer(9)

	// 相关转发者的更新转发压制原帖
	res := resolveBoostDedup(post, nil, []int{2}, vc, model.ContextHome)
	assert.True(t, res.suppressed)

	// 不相关转发者的转发不影响原帖
	res = resolveBoostDedup(post, nil, []int{3}, vc, model.ContextHome)
	assert.False(t, res.suppressed)
	assert.Equal(t, post, res.display)

	// 比原帖活跃时间更早的转发也不压制
	post.Boosts[0].Timestamp = now.Add(-time.Hour)
	res = resolveBoostDedup(post, nil, []int{2}, vc, model.ContextHome)
	assert.False(t, res.suppressed)
}

func TestBoostRowSuppression(t *testing.T) {
	now := time.Now()
	targetID := 1
	boostRow := &model.Post{
		ID:            100,
		Type:          model.PostTypeBoost,
		AuthorID:      2,
		BoostTargetID: &targetID,
		Timestamp:     now,
		LastUpdated:   now,
	}
	vc := testViewer(9)

	// 目标无法解析（已删除）的 boost 行永远压制
	res := resolveBoostDedup(boostRow, nil, []int{2}, vc, model.ContextHome)
	assert.True(t, res.suppressed)

	// 目标帖比转发更活跃时压制 boost 行
	target := &model.Post{ID: 1, AuthorID: 5, LastUpdated: now.Add(time.Hour)}
	res = resolveBoostDedup(boostRow, target, []int{2}, vc, model.ContextHome)
	assert.True(t, res.suppressed)

	// 存在更新的相关转发时压制旧的 boost 行
	target.LastUpdated = now.Add(-time.Hour)
	target.Boosts = []model.Boost{
		{BoosterID: 3, Timestamp: now.Add(time.Minute)},
	}
	res = resolveBoostDedup(boostRow, target, []int{2, 3}, vc, model.ContextHome)
	assert.True(t, res.suppressed)

	// 更新的转发来自不相关用户则不压制，boost 行以目标帖展示
	res = resolveBoostDedup(boostRow, target, []int{2}, vc, model.ContextHome)
	assert.False(t, res.suppressed)
	assert.Equal(t, target, res.display)
	assert.NotNil(t, res.blame)
	assert.Equal(t, 2, res.blame.Culprit)
}

func TestBoostBlamePriority(t *testing.T) {
	vc := testViewer(1)

	// 查看者自己的转发优先于上下文归因
	blame := boostBlame(1, vc, model.ContextUser)
	assert.Equal(t, model.BoostReasonOwn, blame.Reason)

	blame = boostBlame(2, vc, model.ContextUser)
	assert.Equal(t, model.BoostReasonUser, blame.Reason)
	assert.Equal(t, 2, blame.Culprit)

	blame = boostBlame(2, vc, model.ContextCommunity)
	assert.Equal(t, model.BoostReasonCommunity, blame.Reason)

	blame = boostBlame(2, vc, model.ContextHome)
	assert.Equal(t, model.BoostReasonFollow, blame.Reason)

	blame = boostBlame(2, vc, model.ContextTag)
	assert.Equal(t, model.BoostReasonFollow, blame.Reason)
}
