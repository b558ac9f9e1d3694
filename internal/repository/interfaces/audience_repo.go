package interfaces

import "github.com/sweet-sh/sweet-api/internal/model"

// AudienceRepository 受众列表的读写接口
type AudienceRepository interface {
	Create(audience *model.Audience) error
	Update(audience *model.Audience) error
	Delete(id int) error
	FindByID(id int) (*model.Audience, error)
	FindByIDs(ids []int) ([]*model.Audience, error)
	FindByOwner(ownerID int) ([]*model.Audience, error)
	// FindIDsContainingUser 返回包含该用户（含所有者身份）的受众ID集合
	FindIDsContainingUser(userID int) ([]int, error)
}
