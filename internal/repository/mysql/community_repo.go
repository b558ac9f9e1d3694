package mysql

import (
	"database/sql"

	"github.com/sweet-sh/sweet-api/internal/model"
	"github.com/sweet-sh/sweet-api/internal/util"
	"go.uber.org/zap"
)

// communityRepository 实现了 CommunityRepository 接口。
// 成员、禁言和封禁集合放在 community_members / community_bans 表中，
// 封禁一个成员会同时移除其成员资格（被封禁者不可能同时是成员）
type communityRepository struct {
	db *sql.DB
}

// NewCommunityRepository 创建一个新的 communityRepository 实例
func NewCommunityRepository(db *sql.DB) *communityRepository {
	return &communityRepository{db}
}

const communityColumns = `id, name, slug, description, visibility, image_enabled, image, created_at, last_updated`

// Create 创建社区
func (r *communityRepository) Create(community *model.Community) error {
	result, err := r.db.Exec(`
		INSERT INTO communities (name, slug, description, visibility, image_enabled, image, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, NOW())`,
		community.Name, community.Slug, community.Description,
		community.Visibility, community.ImageEnabled, community.Image)
	if err != nil {
		util.Logger.Error("创建社区失败", zap.Error(err), zap.String("slug", community.Slug))
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	community.ID = int(id)
	return nil
}

func (r *communityRepository) scanCommunity(row *sql.Row) (*model.Community, error) {
	var c model.Community
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Visibility,
		&c.ImageEnabled, &c.Image, &c.CreatedAt, &c.LastUpdated)
	if err != nil {
		return nil, err
	}
	if err := r.loadMemberSets(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// loadMemberSets 加载成员、禁言和封禁集合
func (r *communityRepository) loadMemberSets(c *model.Community) error {
	rows, err := r.db.Query(`SELECT user_id, muted FROM community_members WHERE community_id = ?`, c.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var userID int
		var muted bool
		if err := rows.Scan(&userID, &muted); err != nil {
			return err
		}
		c.Members = append(c.Members, userID)
		if muted {
			c.MutedMembers = append(c.MutedMembers, userID)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	banRows, err := r.db.Query(`SELECT user_id FROM community_bans WHERE community_id = ?`, c.ID)
	if err != nil {
		return err
	}
	defer banRows.Close()
	for banRows.Next() {
		var userID int
		if err := banRows.Scan(&userID); err != nil {
			return err
		}
		c.BannedMembers = append(c.BannedMembers, userID)
	}
	return banRows.Err()
}

// FindByID 通过ID查找社区
func (r *communityRepository) FindByID(id int) (*model.Community, error) {
	return r.scanCommunity(r.db.QueryRow(`SELECT `+communityColumns+` FROM communities WHERE id = ?`, id))
}

// FindBySlug 通过slug查找社区
func (r *communityRepository) FindBySlug(slug string) (*model.Community, error) {
	return r.scanCommunity(r.db.QueryRow(`SELECT `+communityColumns+` FROM communities WHERE slug = ?`, slug))
}

// FindByIDs 批量查找社区，用于填充帖子的社区信息
func (r *communityRepository) FindByIDs(ids []int) ([]*model.Community, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(`SELECT `+communityColumns+` FROM communities WHERE id IN (`+placeholders(len(ids))+`)`,
		intArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var communities []*model.Community
	for rows.Next() {
		var c model.Community
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Visibility,
			&c.ImageEnabled, &c.Image, &c.CreatedAt, &c.LastUpdated); err != nil {
			return nil, err
		}
		communities = append(communities, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, c := range communities {
		if err := r.loadMemberSets(c); err != nil {
			return nil, err
		}
	}
	return communities, nil
}

// FindAll 按名称排序列出所有社区
func (r *communityRepository) FindAll() ([]*model.Community, error) {
	rows, err := r.db.Query(`SELECT ` + communityColumns + ` FROM communities ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var communities []*model.Community
	for rows.Next() {
		var c model.Community
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Visibility,
			&c.ImageEnabled, &c.Image, &c.CreatedAt, &c.LastUpdated); err != nil {
			return nil, err
		}
		communities = append(communities, &c)
	}
	return communities, rows.Err()
}

// AddMember 添加成员
func (r *communityRepository) AddMember(communityID, userID int) error {
	_, err := r.db.Exec(`
		INSERT INTO community_members (community_id, user_id, muted) VALUES (?, ?, FALSE)
		ON DUPLICATE KEY UPDATE community_id = community_id`,
		communityID, userID)
	return err
}

// RemoveMember 移除成员
func (r *communityRepository) RemoveMember(communityID, userID int) error {
	_, err := r.db.Exec(`DELETE FROM community_members WHERE community_id = ? AND user_id = ?`,
		communityID, userID)
	return err
}

// MuteMember 禁言成员，成员资格保留
func (r *communityRepository) MuteMember(communityID, userID int) error {
	_, err := r.db.Exec(`UPDATE community_members SET muted = TRUE WHERE community_id = ? AND user_id = ?`,
		communityID, userID)
	return err
}

// UnmuteMember 解除禁言
func (r *communityRepository) UnmuteMember(communityID, userID int) error {
	_, err := r.db.Exec(`UPDATE community_members SET muted = FALSE WHERE community_id = ? AND user_id = ?`,
		communityID, userID)
	return err
}

// BanMember 封禁用户并移除其成员资格
func (r *communityRepository) BanMember(communityID, userID int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM community_members WHERE community_id = ? AND user_id = ?`,
		communityID, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(`
		INSERT INTO community_bans (community_id, user_id) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE community_id = community_id`,
		communityID, userID); err != nil {
		return err
	}
	return tx.Commit()
}

// UnbanMember 解除封禁
func (r *communityRepository) UnbanMember(communityID, userID int) error {
	_, err := r.db.Exec(`DELETE FROM community_bans WHERE community_id = ? AND user_id = ?`,
		communityID, userID)
	return err
}

// Touch 更新社区的最近活跃时间
func (r *communityRepository) Touch(communityID int) error {
	_, err := r.db.Exec(`UPDATE communities SET last_updated = NOW() WHERE id = ?`, communityID)
	return err
}
