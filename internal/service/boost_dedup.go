package service

import (
	"github.com/samber/lo"

	"github.com/sweet-sh/sweet-api/internal/model"
)

// boostResolution 转发去重的结果：要么这一行被压制，要么给出要展示的
// 帖子（boost 行的展示对象是它的目标帖）和对应的转发归因
type boostResolution struct {
	suppressed bool
	display    *model.Post
	blame      *model.BoostBlame
}

// relevantBoosters 返回当前上下文里"算数"的转发者集合：
// 用户时间线上只有该用户自己的转发算数；社区时间线上是任何社区成员；
// home 是查看者关注的人。tag 上下文沿用 home 的口径
func relevantBoosters(viewingContext string, vc *viewerContext, targetUserID int, community *model.Community) []int {
	switch viewingContext {
	case model.ContextUser:
		return []int{targetUserID}
	case model.ContextCommunity:
		if community != nil {
			return community.Members
		}
		return nil
	case model.ContextHome, model.ContextTag:
		return vc.followedIDs
	default:
		return nil
	}
}

// resolveBoostDedup 判断候选行是否被更新的同一逻辑帖实例取代。
// 原帖：任何相关转发者的更新转发都会压制它（它会以那条转发的身份出现）；
// boost 行：目标帖自身更活跃、或存在更新的相关转发时压制；
// 目标无法解析（已删除）的 boost 行永远压制
func resolveBoostDedup(post *model.Post, target *model.Post, relevant []int, vc *viewerContext, viewingContext string) boostResolution {
	switch post.Type {
	case model.PostTypeBoost:
		if target == nil {
			return boostResolution{suppressed: true}
		}
		if target.LastUpdated.After(post.Timestamp) {
			return boostResolution{suppressed: true}
		}
		for _, boost := range target.Boosts {
			if boost.Timestamp.After(post.LastUpdated) && lo.Contains(relevant, boost.BoosterID) {
				return boostResolution{suppressed: true}
			}
		}
		return boostResolution{
			display: target,
			blame:   boostBlame(post.AuthorID, vc, viewingContext),
		}
	default:
		for _, boost := range post.Boosts {
			if boost.Timestamp.After(post.LastUpdated) && lo.Contains(relevant, boost.BoosterID) {
				return boostResolution{suppressed: true}
			}
		}
		return boostResolution{display: post}
	}
}

// boostBlame 构造转发归因：解释这条转发为什么出现在当前信息流里。
// 查看者自己的转发优先于一切其他原因
func boostBlame(boosterID int, vc *viewerContext, viewingContext string) *model.BoostBlame {
	if boosterID == vc.viewer.ID {
		return &model.BoostBlame{Reason: model.BoostReasonOwn, Culprit: boosterID}
	}
	switch viewingContext {
	case model.ContextUser:
		return &model.BoostBlame{Reason: model.BoostReasonUser, Culprit: boosterID}
	case model.ContextCommunity:
		return &model.BoostBlame{Reason: model.BoostReasonCommunity, Culprit: boosterID}
	default:
		// home 和 tag
		return &model.BoostBlame{Reason: model.BoostReasonFollow, Culprit: boosterID}
	}
}
