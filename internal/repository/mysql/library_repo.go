package mysql

import (
	"database/sql"

	"github.com/sweet-sh/sweet-api/internal/model"
)

// libraryRepository 实现了 LibraryRepository 接口
type libraryRepository struct {
	db *sql.DB
}

// NewLibraryRepository 创建一个新的 libraryRepository 实例
func NewLibraryRepository(db *sql.DB) *libraryRepository {
	return &libraryRepository{db}
}

// Add 收藏帖子
func (r *libraryRepository) Add(record *model.LibraryRecord) error {
	result, err := r.db.Exec(`INSERT INTO library_records (user_id, post_id) VALUES (?, ?)`,
		record.UserID, record.PostID)
	if err != nil {
		return err
	}
	if id, err := result.LastInsertId(); err == nil {
		record.ID = int(id)
	}
	return nil
}

// Remove 取消收藏
func (r *libraryRepository) Remove(userID, postID int) error {
	_, err := r.db.Exec(`DELETE FROM library_records WHERE user_id = ? AND post_id = ?`, userID, postID)
	return err
}

// Exists 判断帖子是否已在收藏夹中
func (r *libraryRepository) Exists(userID, postID int) (bool, error) {
	var one int
	err := r.db.QueryRow(`SELECT 1 FROM library_records WHERE user_id = ? AND post_id = ?`,
		userID, postID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// FindPostIDs 返回用户收藏的所有帖子ID
func (r *libraryRepository) FindPostIDs(userID int) ([]int, error) {
	rows, err := r.db.Query(`SELECT post_id FROM library_records WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
