package service

import (
	"github.com/sweet-sh/sweet-api/internal/model"
	"github.com/sweet-sh/sweet-api/internal/repository/interfaces"
)

// viewerContext 一次信息流请求内的查看者关系上下文。
// 请求开始时一次性加载，之后作为显式参数在流水线各阶段之间传递
type viewerContext struct {
	viewer *model.User

	// 查看者关注的用户ID，恒包含查看者自己
	followedIDs []int
	mutedIDs    map[int]bool
	flaggedIDs  map[int]bool
	// 信任查看者的用户（即其私有帖对查看者可见的作者）
	trustingMe map[int]bool
	// 包含查看者的受众ID集合
	audienceIDs []int
	// 查看者所属社区的ID集合
	communityIDs []int
}

func (vc *viewerContext) isFollowing(userID int) bool {
	for _, id := range vc.followedIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// loadViewerContext 加载查看者的全部关系数据
func loadViewerContext(
	viewer *model.User,
	relationshipRepo interfaces.RelationshipRepository,
	audienceRepo interfaces.AudienceRepository,
) (*viewerContext, error) {
	followed, err := relationshipRepo.FindTargets(viewer.ID, model.RelationshipFollow)
	if err != nil {
		return nil, err
	}
	muted, err := relationshipRepo.FindTargets(viewer.ID, model.RelationshipMute)
	if err != nil {
		return nil, err
	}
	flagged, err := relationshipRepo.FindTargets(viewer.ID, model.RelationshipFlag)
	if err != nil {
		return nil, err
	}
	trusted, err := relationshipRepo.FindTargets(viewer.ID, model.RelationshipTrust)
	if err != nil {
		return nil, err
	}
	// 旗标沿信任边传播：查看者信任的用户打的旗标对查看者同样生效
	trustedFlags, err := relationshipRepo.FindTargetsOfSources(trusted, model.RelationshipFlag)
	if err != nil {
		return nil, err
	}
	trusting, err := relationshipRepo.FindSources(viewer.ID, model.RelationshipTrust)
	if err != nil {
		return nil, err
	}
	audienceIDs, err := audienceRepo.FindIDsContainingUser(viewer.ID)
	if err != nil {
		return nil, err
	}

	flaggedIDs := idSet(append(flagged, trustedFlags...))
	delete(flaggedIDs, viewer.ID)

	vc := &viewerContext{
		viewer:       viewer,
		followedIDs:  append(followed, viewer.ID),
		mutedIDs:     idSet(muted),
		flaggedIDs:   flaggedIDs,
		trustingMe:   idSet(append(trusting, viewer.ID)),
		audienceIDs:  audienceIDs,
		communityIDs: viewer.Communities,
	}
	return vc, nil
}

func idSet(ids []int) map[int]bool {
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
