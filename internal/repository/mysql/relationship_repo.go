package mysql

import (
	"database/sql"

	"github.com/sweet-sh/sweet-api/internal/model"
	"github.com/sweet-sh/sweet-api/internal/util"
	"go.uber.org/zap"
)

// relationshipRepository 实现了 RelationshipRepository 接口
type relationshipRepository struct {
	db *sql.DB
}

// NewRelationshipRepository 创建一个新的 relationshipRepository 实例
func NewRelationshipRepository(db *sql.DB) *relationshipRepository {
	return &relationshipRepository{db}
}

// Create 建立一条关系边，同类重复建立是幂等的
func (r *relationshipRepository) Create(rel *model.Relationship) error {
	result, err := r.db.Exec(`
		INSERT INTO relationships (from_user_id, to_user_id, value)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE value = value`,
		rel.FromUserID, rel.ToUserID, rel.Value)
	if err != nil {
		util.Logger.Error("建立关系失败", zap.Error(err),
			zap.Int("from", rel.FromUserID), zap.Int("to", rel.ToUserID),
			zap.String("value", rel.Value))
		return err
	}
	if id, err := result.LastInsertId(); err == nil {
		rel.ID = int(id)
	}
	return nil
}

// Delete 解除一条关系边
func (r *relationshipRepository) Delete(fromUserID, toUserID int, value string) error {
	_, err := r.db.Exec(`
		DELETE FROM relationships
		WHERE from_user_id = ? AND to_user_id = ? AND value = ?`,
		fromUserID, toUserID, value)
	return err
}

// Exists 判断某条关系边是否存在
func (r *relationshipRepository) Exists(fromUserID, toUserID int, value string) (bool, error) {
	var one int
	err := r.db.QueryRow(`
		SELECT 1 FROM relationships
		WHERE from_user_id = ? AND to_user_id = ? AND value = ?`,
		fromUserID, toUserID, value).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// FindTargets 返回 fromUserID 发出的指定类型关系的目标用户ID
func (r *relationshipRepository) FindTargets(fromUserID int, value string) ([]int, error) {
	return r.findIDs(`SELECT to_user_id FROM relationships WHERE from_user_id = ? AND value = ?`,
		fromUserID, value)
}

// FindSources 返回指向 toUserID 的指定类型关系的来源用户ID
func (r *relationshipRepository) FindSources(toUserID int, value string) ([]int, error) {
	return r.findIDs(`SELECT from_user_id FROM relationships WHERE to_user_id = ? AND value = ?`,
		toUserID, value)
}

// FindTargetsOfSources 返回任一给定来源用户发出的指定类型关系的目标用户ID
func (r *relationshipRepository) FindTargetsOfSources(fromUserIDs []int, value string) ([]int, error) {
	if len(fromUserIDs) == 0 {
		return nil, nil
	}
	args := append(intArgs(fromUserIDs), value)
	rows, err := r.db.Query(`
		SELECT DISTINCT to_user_id FROM relationships
		WHERE from_user_id IN (`+placeholders(len(fromUserIDs))+`) AND value = ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *relationshipRepository) findIDs(query string, userID int, value string) ([]int, error) {
	rows, err := r.db.Query(query, userID, value)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
