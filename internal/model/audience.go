package model

import "time"

// AudienceCapabilities 受众列表的能力开关
type AudienceCapabilities struct {
	CanSeeFlags bool `json:"canSeeFlags"`
}

// Audience 由用户自行维护的命名接收者列表，是新的可见性模型。
// 所有者永远隐含地属于自己的受众，但在查询结果中不会作为成员出现
type Audience struct {
	ID           int                  `json:"id"`
	OwnerID      int                  `json:"owner_id"`
	Name         string               `json:"name"`
	Users        []int                `json:"users"`
	Capabilities AudienceCapabilities `json:"capabilities"`
	CreatedAt    time.Time            `json:"created_at"`
}

// HasUser 判断用户是否属于该受众（所有者隐含属于）
func (a *Audience) HasUser(userID int) bool {
	if a.OwnerID == userID {
		return true
	}
	return containsID(a.Users, userID)
}
