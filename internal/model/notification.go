package model

import "time"

// 通知原因码。评论扇出的五类接收者按优先级互斥：
// mention > reply（帖子作者）> commentReply（父评论作者）>
// boostedPostReply（转发者）> mentioningPostReply/subscribedReply（订阅者）
const (
	NotificationMention             = "mention"
	NotificationReply               = "reply"
	NotificationCommentReply        = "commentReply"
	NotificationBoostedPostReply    = "boostedPostReply"
	NotificationMentioningPostReply = "mentioningPostReply"
	NotificationSubscribedReply     = "subscribedReply"
	NotificationPlus                = "plus"
	NotificationBoost               = "boost"
	NotificationRelationship        = "relationship"
)

// Notification 站内通知
type Notification struct {
	ID         int       `json:"id"`
	Cause      string    `json:"cause"`
	NotifieeID int       `json:"notifiee_id"`
	SourceID   int       `json:"source_id"`
	SubjectID  *int      `json:"subject_id,omitempty"` // 相关帖子
	URL        string    `json:"url"`                  // 指向新评论锚点的深层链接
	Context    string    `json:"context"`
	Seen       bool      `json:"seen"`
	Timestamp  time.Time `json:"timestamp"`
}
