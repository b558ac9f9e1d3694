package service

import (
	"time"

	"github.com/sweet-sh/sweet-api/internal/model"
)

// feedTarget 描述一次信息流请求的目标：不同上下文只用到其中一部分字段
type feedTarget struct {
	User      *model.User
	Community *model.Community
	Tag       string
	PostID    int
	URL       string
	PostIDs   []int
}

// buildCandidateQuery 把查看者上下文和请求目标翻译成候选查询。
// 候选集合故意偏宽：可见性门禁和转发去重在内存里做最终裁剪
func buildCandidateQuery(vc *viewerContext, viewingContext string, target feedTarget, before time.Time) model.CandidateQuery {
	q := model.CandidateQuery{
		ViewerID:        vc.viewer.ID,
		ViewerAudiences: vc.audienceIDs,
		SortBy:          model.SortByLastUpdated,
		Before:          before,
		Limit:           model.PostsPerPage,
	}

	switch viewingContext {
	case model.ContextHome:
		q.FollowedAuthors = vc.followedIDs
		q.MemberCommunities = vc.communityIDs
		q.SortBy = sortColumn(vc.viewer.TimelineSorting(viewingContext))
	case model.ContextUser:
		authorID := target.User.ID
		q.Author = &authorID
		q.VisibleCommunities = vc.communityIDs
		q.SortBy = sortColumn(vc.viewer.TimelineSorting(viewingContext))
	case model.ContextCommunity:
		// 受限社区的信息流只对成员开放，其他人得到空候选集
		if target.Community.Visibility != model.CommunityPublic && !target.Community.IsMember(vc.viewer.ID) {
			q.Empty = true
			break
		}
		communityID := target.Community.ID
		q.Community = &communityID
		q.SortBy = sortColumn(vc.viewer.TimelineSorting(viewingContext))
	case model.ContextTag:
		q.Tag = target.Tag
		q.SortBy = sortColumn(vc.viewer.TimelineSorting(model.ContextHome))
	case model.ContextSingle:
		postID := target.PostID
		q.PostID = &postID
	case model.ContextURL:
		q.URL = target.URL
	case model.ContextLibrary:
		q.PostIDs = target.PostIDs
		if len(target.PostIDs) == 0 {
			q.Empty = true
		}
	}
	return q
}

func sortColumn(sorting string) model.SortKey {
	if sorting == model.SortingChronological {
		return model.SortByTimestamp
	}
	return model.SortByLastUpdated
}

// sortKey 取帖子在指定排序键下的游标值
func sortKey(post *model.Post, by model.SortKey) time.Time {
	if by == model.SortByTimestamp {
		return post.Timestamp
	}
	return post.LastUpdated
}
