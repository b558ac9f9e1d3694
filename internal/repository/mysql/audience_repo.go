package mysql

import (
	"database/sql"

	"github.com/sweet-sh/sweet-api/internal/model"
	"github.com/sweet-sh/sweet-api/internal/util"
	"go.uber.org/zap"
)

// audienceRepository 实现了 AudienceRepository 接口。
// 成员集合放在 audience_members 表中；所有者隐含属于自己的受众，
// 不在成员表中存储
type audienceRepository struct {
	db *sql.DB
}

// NewAudienceRepository 创建一个新的 audienceRepository 实例
func NewAudienceRepository(db *sql.DB) *audienceRepository {
	return &audienceRepository{db}
}

// Create 创建受众列表
func (r *audienceRepository) Create(audience *model.Audience) error {
	capabilities, err := marshalJSON(audience.Capabilities)
	if err != nil {
		return err
	}
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(`INSERT INTO audiences (owner_id, name, capabilities) VALUES (?, ?, ?)`,
		audience.OwnerID, audience.Name, capabilities)
	if err != nil {
		util.Logger.Error("创建受众失败", zap.Error(err), zap.Int("owner_id", audience.OwnerID))
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	audience.ID = int(id)

	if err := r.insertMembers(tx, audience.ID, audience.Users); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *audienceRepository) insertMembers(tx *sql.Tx, audienceID int, users []int) error {
	for _, userID := range users {
		if _, err := tx.Exec(`
			INSERT INTO audience_members (audience_id, user_id) VALUES (?, ?)
			ON DUPLICATE KEY UPDATE audience_id = audience_id`,
			audienceID, userID); err != nil {
			return err
		}
	}
	return nil
}

// Update 整体替换受众的名称、能力和成员集合
func (r *audienceRepository) Update(audience *model.Audience) error {
	capabilities, err := marshalJSON(audience.Capabilities)
	if err != nil {
		return err
	}
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE audiences SET name = ?, capabilities = ? WHERE id = ?`,
		audience.Name, capabilities, audience.ID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM audience_members WHERE audience_id = ?`, audience.ID); err != nil {
		return err
	}
	if err := r.insertMembers(tx, audience.ID, audience.Users); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete 删除受众列表
func (r *audienceRepository) Delete(id int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM audience_members WHERE audience_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM audiences WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *audienceRepository) scanAudience(row *sql.Row) (*model.Audience, error) {
	var a model.Audience
	var capabilities []byte
	if err := row.Scan(&a.ID, &a.OwnerID, &a.Name, &capabilities, &a.CreatedAt); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(capabilities, &a.Capabilities); err != nil {
		return nil, err
	}
	if err := r.loadMembers(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *audienceRepository) loadMembers(a *model.Audience) error {
	rows, err := r.db.Query(`SELECT user_id FROM audience_members WHERE audience_id = ?`, a.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var userID int
		if err := rows.Scan(&userID); err != nil {
			return err
		}
		a.Users = append(a.Users, userID)
	}
	return rows.Err()
}

// FindByID 通过ID查找受众
func (r *audienceRepository) FindByID(id int) (*model.Audience, error) {
	return r.scanAudience(r.db.QueryRow(
		`SELECT id, owner_id, name, capabilities, created_at FROM audiences WHERE id = ?`, id))
}

// FindByIDs 批量查找受众
func (r *audienceRepository) FindByIDs(ids []int) ([]*model.Audience, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(`SELECT id, owner_id, name, capabilities, created_at FROM audiences
                             WHERE id IN (`+placeholders(len(ids))+`)`, intArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	audiences, err := scanAudienceRows(rows)
	if err != nil {
		return nil, err
	}
	for _, a := range audiences {
		if err := r.loadMembers(a); err != nil {
			return nil, err
		}
	}
	return audiences, nil
}

// FindByOwner 列出用户拥有的所有受众
func (r *audienceRepository) FindByOwner(ownerID int) ([]*model.Audience, error) {
	rows, err := r.db.Query(
		`SELECT id, owner_id, name, capabilities, created_at FROM audiences WHERE owner_id = ?`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	audiences, err := scanAudienceRows(rows)
	if err != nil {
		return nil, err
	}
	for _, a := range audiences {
		if err := r.loadMembers(a); err != nil {
			return nil, err
		}
	}
	return audiences, nil
}

func scanAudienceRows(rows *sql.Rows) ([]*model.Audience, error) {
	var audiences []*model.Audience
	for rows.Next() {
		var a model.Audience
		var capabilities []byte
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Name, &capabilities, &a.CreatedAt); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(capabilities, &a.Capabilities); err != nil {
			return nil, err
		}
		audiences = append(audiences, &a)
	}
	return audiences, rows.Err()
}

// FindIDsContainingUser 返回包含该用户的受众ID集合，所有者身份也算
func (r *audienceRepository) FindIDsContainingUser(userID int) ([]int, error) {
	rows, err := r.db.Query(`
		SELECT id FROM audiences WHERE owner_id = ?
		UNION
		SELECT audience_id FROM audience_members WHERE user_id = ?`,
		userID, userID)
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
