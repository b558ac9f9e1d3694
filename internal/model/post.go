package model

import "time"

// 帖子类型
const (
	PostTypeOriginal  = "original"
	PostTypeCommunity = "community"
	PostTypeBoost     = "boost"
	PostTypeDraft     = "draft"
)

// 旧的二元可见性模型，与受众列表模型并存。
// Audiences 为空时回退到 Privacy + trust 关系判断
const (
	PrivacyPublic  = "public"
	PrivacyPrivate = "private"
)

// 评论树的最大嵌套深度，第6层的插入会被拒绝
const MaxCommentDepth = 5

// Boost 转发记录：谁、在哪个社区（可选）、什么时候转发了这个帖子。
// BoostID 指向 boost 类型的帖子行本身
type Boost struct {
	BoosterID   int       `json:"booster_id"`
	CommunityID *int      `json:"community_id,omitempty"`
	BoostID     int       `json:"boost_id"`
	Timestamp   time.Time `json:"timestamp"`
}

// Plus 轻量级赞同，每个用户至多一条，重复操作为取消
type Plus struct {
	AuthorID  int       `json:"author_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Comment 递归的评论树节点。软删除的节点保留位置和子树，正文被清空
type Comment struct {
	ID        string     `json:"id"`
	AuthorID  int        `json:"author_id"`
	Author    *User      `json:"author,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	Content   string     `json:"content"`
	Mentions  []string   `json:"mentions"`
	Images    []string   `json:"images"`
	Deleted   bool       `json:"deleted"`
	Replies   []*Comment `json:"replies"`

	// 以下为读取路径上按请求者标注的字段，不持久化
	Level         int  `json:"level,omitempty"`
	CanDisplay    bool `json:"can_display"`
	CanReply      bool `json:"can_reply"`
	CanDelete     bool `json:"can_delete"`
	Muted         bool `json:"muted"`
	AuthorFlagged bool `json:"author_flagged"`
}

// Post 逻辑帖子。评论树、转发记录、赞同、订阅集合等作为文档的一部分
// 整体读写，并发修改由存储层对单个文档的最后写入胜出语义兜底
type Post struct {
	ID               int        `json:"id"`
	Type             string     `json:"type"`
	AuthorID         int        `json:"author_id"`
	Author           *User      `json:"author,omitempty"`
	CommunityID      *int       `json:"community_id,omitempty"`
	Community        *Community `json:"community,omitempty"`
	URL              string     `json:"url"` // 永久链接
	Privacy          string     `json:"privacy"`
	Audiences        []int      `json:"audiences"` // 社区帖子恒为 nil，可见性由社区决定
	Timestamp        time.Time  `json:"timestamp"`
	LastUpdated      time.Time  `json:"last_updated"`
	LastEdited       *time.Time `json:"last_edited,omitempty"`
	Content          string     `json:"content"` // 正文对本引擎不透明
	ContentWarning   string     `json:"content_warning"`
	Mentions         []string   `json:"mentions"`
	Tags             []string   `json:"tags"`
	Boosts           []Boost    `json:"boosts"`
	BoostTargetID    *int       `json:"boost_target_id,omitempty"` // boost 类型帖子必有
	Pluses           []Plus     `json:"pluses"`
	NumberOfComments int        `json:"number_of_comments"`
	SubscribedUsers  []int      `json:"subscribed_users"`
	UnsubscribedUser []int      `json:"unsubscribed_users"`
	Comments         []*Comment `json:"comments"`
}

// HasPlusFrom 判断用户是否已经赞同过该帖子
func (p *Post) HasPlusFrom(userID int) bool {
	for _, plus := range p.Pluses {
		if plus.AuthorID == userID {
			return true
		}
	}
	return false
}

// BoostBy 返回指定用户的转发记录
func (p *Post) BoostBy(userID int) *Boost {
	for i := range p.Boosts {
		if p.Boosts[i].BoosterID == userID {
			return &p.Boosts[i]
		}
	}
	return nil
}

// IsSubscribed 判断用户是否在订阅集合中
func (p *Post) IsSubscribed(userID int) bool {
	return containsID(p.SubscribedUsers, userID)
}

// IsUnsubscribed 判断用户是否显式退订过该帖子
func (p *Post) IsUnsubscribed(userID int) bool {
	return containsID(p.UnsubscribedUser, userID)
}

// 转发归因的原因码，按优先级 ownBoost > userBoost/communityBoost/followBoost
const (
	BoostReasonOwn       = "ownBoost"
	BoostReasonUser      = "userBoost"
	BoostReasonCommunity = "communityBoost"
	BoostReasonFollow    = "followBoost"
)

// BoostBlame 解释一条转发帖为什么出现在当前的信息流里
type BoostBlame struct {
	Reason  string `json:"reason"`
	Culprit int    `json:"culprit"` // 被归因的转发者
}

// AnnotatedPost 信息流响应中的一条帖子，携带按请求者计算的标注
type AnnotatedPost struct {
	*Post
	DeleteID       int         `json:"deleteid"`
	IsYourPost     bool        `json:"is_your_post"`
	HavePlused     bool        `json:"have_plused"`
	InLibrary      bool        `json:"in_library"`
	AuthorFlagged  bool        `json:"author_flagged"`
	CanReply       bool        `json:"can_reply"`
	ViewingContext string      `json:"viewing_context"`
	BoostBlame     *BoostBlame `json:"boost_blame,omitempty"`
}

// LibraryRecord 用户收藏的帖子
type LibraryRecord struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	PostID    int       `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
