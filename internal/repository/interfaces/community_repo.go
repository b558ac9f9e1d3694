package interfaces

import "github.com/sweet-sh/sweet-api/internal/model"

// CommunityRepository 定义了社区相关的数据库操作接口
type CommunityRepository interface {
	Create(community *model.Community) error
	FindByID(id int) (*model.Community, error)
	FindBySlug(slug string) (*model.Community, error)
	FindByIDs(ids []int) ([]*model.Community, error)
	FindAll() ([]*model.Community, error)
	AddMember(communityID, userID int) error
	RemoveMember(communityID, userID int) error
	MuteMember(communityID, userID int) error
	UnmuteMember(communityID, userID int) error
	BanMember(communityID, userID int) error
	UnbanMember(communityID, userID int) error
	// Touch 更新社区的最近活跃时间
	Touch(communityID int) error
}
