package interfaces

import "github.com/sweet-sh/sweet-api/internal/model"

// LibraryRepository 用户收藏夹的读写接口
type LibraryRepository interface {
	Add(record *model.LibraryRecord) error
	Remove(userID, postID int) error
	Exists(userID, postID int) (bool, error)
	FindPostIDs(userID int) ([]int, error)
}
