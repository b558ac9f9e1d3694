package mysql

import (
	"database/sql"

	"github.com/sweet-sh/sweet-api/internal/model"
	"github.com/sweet-sh/sweet-api/internal/util"
	"go.uber.org/zap"
)

// notificationRepository 实现了 NotificationRepository 接口
type notificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository 创建一个新的 notificationRepository 实例
func NewNotificationRepository(db *sql.DB) *notificationRepository {
	return &notificationRepository{db}
}

// Create 写入一条通知
func (r *notificationRepository) Create(n *model.Notification) error {
	result, err := r.db.Exec(`
		INSERT INTO notifications (cause, notifiee_id, source_id, subject_id, url, context, seen, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, FALSE, NOW())`,
		n.Cause, n.NotifieeID, n.SourceID, n.SubjectID, n.URL, n.Context)
	if err != nil {
		util.Logger.Error("写入通知失败", zap.Error(err),
			zap.String("cause", n.Cause), zap.Int("notifiee_id", n.NotifieeID))
		return err
	}
	if id, err := result.LastInsertId(); err == nil {
		n.ID = int(id)
	}
	return nil
}

// FindByNotifiee 分页列出用户的通知，新的在前
func (r *notificationRepository) FindByNotifiee(notifieeID, page, pageSize int) ([]*model.Notification, error) {
	offset := (page - 1) * pageSize
	rows, err := r.db.Query(`
		SELECT id, cause, notifiee_id, source_id, subject_id, url, context, seen, timestamp
		FROM notifications WHERE notifiee_id = ?
		ORDER BY timestamp DESC LIMIT ? OFFSET ?`,
		notifieeID, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var notifications []*model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.Cause, &n.NotifieeID, &n.SourceID, &n.SubjectID,
			&n.URL, &n.Context, &n.Seen, &n.Timestamp); err != nil {
			return nil, err
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

// MarkSeen 把用户的所有通知标记为已读
func (r *notificationRepository) MarkSeen(notifieeID int) error {
	_, err := r.db.Exec(`UPDATE notifications SET seen = TRUE WHERE notifiee_id = ?`, notifieeID)
	return err
}

// DeleteBySubject 删除关联某个帖子的所有通知，帖子删除时调用
func (r *notificationRepository) DeleteBySubject(subjectID int) error {
	_, err := r.db.Exec(`DELETE FROM notifications WHERE subject_id = ?`, subjectID)
	return err
}
