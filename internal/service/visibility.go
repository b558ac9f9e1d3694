package service

import (
	"github.com/samber/lo"

	"github.com/sweet-sh/sweet-api/internal/model"
)

// effectiveAudience 统一新旧两套可见性模型的抽象：一个帖子要么解析为
// 一个显式的受众集合（受众列表模型），要么解析为一条基于信任关系的
// 谓词（旧的 public/private 模型）。可见性解析器只面向这个抽象
type effectiveAudience interface {
	allows(vc *viewerContext) bool
}

// audienceListGate 受众列表模型：查看者至少属于帖子声明的一个受众
type audienceListGate struct {
	post *model.Post
}

func (g audienceListGate) allows(vc *viewerContext) bool {
	if g.post.AuthorID == vc.viewer.ID {
		return true
	}
	return len(lo.Intersect(g.post.Audiences, vc.audienceIDs)) > 0
}

// legacyPrivacyGate 旧模型：公开帖直接通过，私有帖要求帖子作者信任查看者
type legacyPrivacyGate struct {
	post *model.Post
}

func (g legacyPrivacyGate) allows(vc *viewerContext) bool {
	if g.post.Privacy != model.PrivacyPrivate {
		return true
	}
	return vc.trustingMe[g.post.AuthorID]
}

// effectiveAudienceFor 按帖子声明的模型选择可见性后端。
// 社区帖的受众恒为空，由社区门槛单独处理
func effectiveAudienceFor(post *model.Post) effectiveAudience {
	if post.Audiences != nil {
		return audienceListGate{post}
	}
	return legacyPrivacyGate{post}
}

// postVisible 判断查看者是否有权看到该帖子。规则按顺序全部满足：
// 受众/隐私门槛、社区门槛，最后是无条件覆盖一切的屏蔽门槛
func postVisible(vc *viewerContext, post *model.Post, viewingContext string) bool {
	canDisplay := effectiveAudienceFor(post).allows(vc)

	if post.Type == model.PostTypeCommunity && post.Community != nil {
		// 在社区自己的页面上、或单帖页上社区公开/查看者是作者时不再检查成员资格，
		// 其余情况必须是社区成员
		onCommunityPage := viewingContext == model.ContextCommunity
		singleException := viewingContext == model.ContextSingle &&
			(post.AuthorID == vc.viewer.ID || post.Community.Visibility == model.CommunityPublic)
		if !onCommunityPage && !singleException {
			canDisplay = post.Community.IsMember(vc.viewer.ID)
		}
		// 被禁言成员的帖子对所有人隐藏
		if post.Community.IsMuted(post.AuthorID) {
			canDisplay = false
		}
	}

	// 屏蔽门槛永远最后应用，覆盖前面所有规则
	if vc.mutedIDs[post.AuthorID] {
		canDisplay = false
	}

	return canDisplay
}

// canCommentOnPost 判断查看者是否可以在帖子下评论：
// 社区帖要求查看者是该社区成员，其余帖子不限
func canCommentOnPost(vc *viewerContext, post *model.Post) bool {
	if vc.viewer == nil {
		return false
	}
	if post.CommunityID != nil {
		return lo.Contains(vc.communityIDs, *post.CommunityID)
	}
	return true
}
