package model

import "time"

// SortKey 信息流排序键
type SortKey string

const (
	SortByLastUpdated SortKey = "last_updated" // fluid：最近活跃优先
	SortByTimestamp   SortKey = "timestamp"    // chronological：创建时间优先
)

// 信息流浏览上下文
const (
	ContextHome      = "home"
	ContextUser      = "user"
	ContextCommunity = "community"
	ContextTag       = "tag"
	ContextSingle    = "single"
	ContextURL       = "url"
	ContextLibrary   = "library"
)

// 每页帖子数固定为20
const PostsPerPage = 20

// CandidateQuery 候选集谓词，由候选查询构建器产出、帖子存储层解释执行。
// 各字段按上下文互斥填充，具体含义见各上下文的构建逻辑
type CandidateQuery struct {
	// home：作者在 FollowedAuthors 中，或为 MemberCommunities 中社区的社区帖（OR 关系）
	FollowedAuthors   []int
	MemberCommunities []int

	// user：指定作者，且帖子无社区或其社区在 VisibleCommunities 中
	Author             *int
	VisibleCommunities []int

	// community
	Community *int

	// tag
	Tag string

	// single / url
	PostID *int
	URL    string

	// library
	PostIDs []int

	// 受众门槛：帖子未声明受众列表（旧模型）、或与 ViewerAudiences 相交、
	// 或作者就是查看者本人
	ViewerID        int
	ViewerAudiences []int

	SortBy SortKey
	Before time.Time // 游标，排序键的开区间上界
	Limit  int

	// 私有社区且查看者不是成员时置位：候选集恒为空
	Empty bool
}
