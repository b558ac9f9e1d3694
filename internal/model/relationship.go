package model

import "time"

// 关系类型。flag 和 mute 属于单向的负面关系，不会向对方发送通知
const (
	RelationshipFollow = "follow"
	RelationshipTrust  = "trust"
	RelationshipMute   = "mute"
	RelationshipFlag   = "flag"
)

// Relationship 用户之间的有向关系边
type Relationship struct {
	ID         int       `json:"id"`
	FromUserID int       `json:"from_user_id"`
	ToUserID   int       `json:"to_user_id"`
	Value      string    `json:"value"`
	CreatedAt  time.Time `json:"created_at"`
}
