package mysql

import (
	"database/sql"
	"log"
	"time"

	"github.com/sweet-sh/sweet-api/internal/model"
	"github.com/sweet-sh/sweet-api/internal/util"
	"go.uber.org/zap"
)

// userRepository 实现了 UserRepository 接口
type userRepository struct {
	db *sql.DB
}

// NewUserRepository 创建一个新的 userRepository 实例
func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db}
}

const userColumns = `id, username, email, password_hash, display_name, image_enabled, image, bio,
	is_verified, settings, last_online, created_at, updated_at`

// Create 创建一个新用户
func (r *userRepository) Create(user *model.User) error {
	log.Printf("尝试创建新用户：%s", user.Email)
	settings, err := marshalJSON(user.Settings)
	if err != nil {
		return err
	}
	query := `INSERT INTO users (username, email, password_hash, display_name, image_enabled, image, bio, is_verified, settings, last_online)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NOW())`
	result, err := r.db.Exec(query, user.Username, user.Email, user.PasswordHash,
		user.DisplayName, user.ImageEnabled, user.Image, user.Bio, user.IsVerified, settings)
	if err != nil {
		log.Printf("创建用户失败：%v", err)
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = int(id)
	log.Printf("用户创建成功：ID=%d", user.ID)
	return nil
}

func (r *userRepository) scanUser(row *sql.Row) (*model.User, error) {
	var user model.User
	var settings []byte
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.DisplayName,
		&user.ImageEnabled, &user.Image, &user.Bio, &user.IsVerified, &settings,
		&user.LastOnline, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalJSON(settings, &user.Settings); err != nil {
		return nil, err
	}
	communities, err := r.findCommunityIDs(user.ID)
	if err != nil {
		return nil, err
	}
	user.Communities = communities
	return &user, nil
}

// findCommunityIDs 加载用户所属社区的ID集合
func (r *userRepository) findCommunityIDs(userID int) ([]int, error) {
	rows, err := r.db.Query(`SELECT community_id FROM community_members WHERE user_id = ?`, userID)
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

// FindByID 通过ID查找用户
func (r *userRepository) FindByID(id int) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ? AND deleted_at IS NULL`
	return r.scanUser(r.db.QueryRow(query, id))
}

// FindByEmail 通过邮箱查找用户
func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ? AND deleted_at IS NULL`
	return r.scanUser(r.db.QueryRow(query, email))
}

// FindByUsername 通过用户名查找用户
func (r *userRepository) FindByUsername(username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ? AND deleted_at IS NULL`
	return r.scanUser(r.db.QueryRow(query, username))
}

// FindByIDs 批量查找用户，用于填充帖子和评论的作者信息
func (r *userRepository) FindByIDs(ids []int) ([]*model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT id, username, email, display_name, image_enabled, image FROM users
              WHERE id IN (` + placeholders(len(ids)) + `) AND deleted_at IS NULL`
	rows, err := r.db.Query(query, intArgs(ids)...)
	if err != nil {
		util.Logger.Error("批量查找用户失败", zap.Error(err))
		return nil, err
	}
	defer rows.Close()
	var users []*model.User
	for rows.Next() {
		var user model.User
		if err := rows.Scan(&user.ID, &user.Username, &user.Email,
			&user.DisplayName, &user.ImageEnabled, &user.Image); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}

// Update 更新用户信息
func (r *userRepository) Update(user *model.User) error {
	settings, err := marshalJSON(user.Settings)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`
		UPDATE users
		SET username = ?, email = ?, display_name = ?, image_enabled = ?, image = ?,
		    bio = ?, is_verified = ?, settings = ?, updated_at = ?
		WHERE id = ?`,
		user.Username, user.Email, user.DisplayName, user.ImageEnabled, user.Image,
		user.Bio, user.IsVerified, settings, time.Now(), user.ID)
	return err
}

// UpdateSettings 只更新用户设置
func (r *userRepository) UpdateSettings(userID int, settings model.UserSettings) error {
	data, err := marshalJSON(settings)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`UPDATE users SET settings = ?, updated_at = NOW() WHERE id = ?`, data, userID)
	return err
}

// Delete 软删除用户
func (r *userRepository) Delete(id int) error {
	_, err := r.db.Exec(`UPDATE users SET deleted_at = NOW() WHERE id = ?`, id)
	if err != nil {
		util.Logger.Error("删除用户失败", zap.Error(err), zap.Int("user_id", id))
	}
	return err
}
