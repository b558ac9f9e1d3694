package model

import "time"

// 社区可见性
const (
	CommunityPublic     = "public"
	CommunityRestricted = "restricted"
)

// Community 社区模型。被封禁的用户不可能同时是成员；
// 被禁言的成员仍然是成员，但其帖子不会出现在社区时间线上
type Community struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	Visibility    string    `json:"visibility"`
	ImageEnabled  bool      `json:"image_enabled"`
	Image         string    `json:"image"`
	Members       []int     `json:"members"`
	MutedMembers  []int     `json:"muted_members"`
	BannedMembers []int     `json:"banned_members"`
	CreatedAt     time.Time `json:"created_at"`
	LastUpdated   time.Time `json:"last_updated"`
}

// IsMember 判断用户是否为社区成员
func (c *Community) IsMember(userID int) bool {
	return containsID(c.Members, userID)
}

// IsMuted 判断用户是否被社区禁言
func (c *Community) IsMuted(userID int) bool {
	return containsID(c.MutedMembers, userID)
}

// IsBanned 判断用户是否被社区封禁
func (c *Community) IsBanned(userID int) bool {
	return containsID(c.BannedMembers, userID)
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
