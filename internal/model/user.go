package model

import "time"

// 时间线排序方式：fluid 按最近活跃排序，chronological 按创建时间排序
const (
	SortingFluid         = "fluid"
	SortingChronological = "chronological"
)

// UserSettings 用户个人设置，三个时间线的排序偏好相互独立
type UserSettings struct {
	HomeTagTimelineSorting   string `json:"homeTagTimelineSorting" binding:"omitempty,sorting"`
	UserTimelineSorting      string `json:"userTimelineSorting" binding:"omitempty,sorting"`
	CommunityTimelineSorting string `json:"communityTimelineSorting" binding:"omitempty,sorting"`
}

// User 结构体表示用户模型
type User struct {
	ID           int          `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // 密码哈希不应在JSON中暴露
	DisplayName  string       `json:"display_name"`
	ImageEnabled bool         `json:"image_enabled"`
	Image        string       `json:"image"`
	Bio          string       `json:"bio"`
	IsVerified   bool         `json:"is_verified"`
	Communities  []int        `json:"communities"` // 用户所属社区的ID集合
	Settings     UserSettings `json:"settings"`
	LastOnline   time.Time    `json:"last_online"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	DeletedAt    *time.Time   `json:"deleted_at,omitempty"`
}

// InCommunity 判断用户是否属于指定社区
func (u *User) InCommunity(communityID int) bool {
	for _, id := range u.Communities {
		if id == communityID {
			return true
		}
	}
	return false
}

// TimelineSorting 返回指定浏览上下文对应的排序偏好
func (u *User) TimelineSorting(context string) string {
	var sorting string
	switch context {
	case "user":
		sorting = u.Settings.UserTimelineSorting
	case "community":
		sorting = u.Settings.CommunityTimelineSorting
	default:
		// home、tag 等共用同一个偏好
		sorting = u.Settings.HomeTagTimelineSorting
	}
	if sorting == "" {
		sorting = SortingFluid
	}
	return sorting
}
