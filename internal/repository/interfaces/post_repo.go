package interfaces

import "github.com/sweet-sh/sweet-api/internal/model"

// PostRepository 帖子文档的读写接口。评论树、转发、赞同和订阅集合
// 都是帖子文档的一部分，Save 将整个文档原子地写回
type PostRepository interface {
	Create(post *model.Post) error
	FindByID(id int) (*model.Post, error)
	FindByIDs(ids []int) ([]*model.Post, error)
	FindByURL(url string) (*model.Post, error)
	// FindCandidates 按候选集谓词取一页候选帖子
	FindCandidates(query *model.CandidateQuery) ([]*model.Post, error)
	// Save 整体写回帖子文档，并发写入遵循最后写入胜出
	Save(post *model.Post) error
	Delete(id int) error
	// DetachBoostsOf 在目标帖被删除时清理所有指向它的 boost 行
	DetachBoostsOf(targetID int) error
}
