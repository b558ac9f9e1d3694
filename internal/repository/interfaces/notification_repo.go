package interfaces

import "github.com/sweet-sh/sweet-api/internal/model"

// NotificationRepository 站内通知的读写接口
type NotificationRepository interface {
	Create(notification *model.Notification) error
	FindByNotifiee(notifieeID, page, pageSize int) ([]*model.Notification, error)
	MarkSeen(notifieeID int) error
	DeleteBySubject(subjectID int) error
}
