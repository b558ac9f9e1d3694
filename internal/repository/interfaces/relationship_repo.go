package interfaces

import "github.com/sweet-sh/sweet-api/internal/model"

// RelationshipRepository 用户关系边的读写接口
type RelationshipRepository interface {
	Create(rel *model.Relationship) error
	Delete(fromUserID, toUserID int, value string) error
	Exists(fromUserID, toUserID int, value string) (bool, error)
	// FindTargets 返回 fromUserID 发出的指定类型关系的目标用户ID
	FindTargets(fromUserID int, value string) ([]int, error)
	// FindSources 返回指向 toUserID 的指定类型关系的来源用户ID
	FindSources(toUserID int, value string) ([]int, error)
	// FindTargetsOfSources 返回任一给定来源用户发出的指定类型关系的目标用户ID
	FindTargetsOfSources(fromUserIDs []int, value string) ([]int, error)
}
