package repositories

import (
	"context"

	"davetli.app/configs"
	"davetli.app/models"

	"gorm.io/gorm"
)

// INotificationRepository uygulama içi bildirimler.
type INotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	CreateBulk(ctx context.Context, list []models.Notification) error
	FindForUser(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID uint) error
	MarkAllRead(ctx context.Context, userID uint) error
}

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository() INotificationRepository {
	return &NotificationRepository{db: configs.GetDB()}
}

func NewNotificationRepositoryTx(tx *gorm.DB) INotificationRepository {
	return &NotificationRepository{db: tx}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return getDBFromContext(ctx, r.db).Create(n).Error
}

func (r *NotificationRepository) CreateBulk(ctx context.Context, list []models.Notification) error {
	if len(list) == 0 {
		return nil
	}
	return getDBFromContext(ctx, r.db).Create(&list).Error
}

func (r *NotificationRepository) FindForUser(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	query := getDBFromContext(ctx, r.db).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	var list []models.Notification
	err := query.Order("created_at desc").Limit(limit).Find(&list).Error
	return list, err
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := getDBFromContext(ctx, r.db).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID, notificationID uint) error {
	result := getDBFromContext(ctx, r.db).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uint) error {
	return getDBFromContext(ctx, r.db).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

var _ INotificationRepository = (*NotificationRepository)(nil)
