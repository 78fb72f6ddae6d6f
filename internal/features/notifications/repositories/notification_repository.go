package notifications_repositories

import (
	"context"
	"errors"
	"time"

	notifications_enums "untitledone/internal/features/notifications/enums"
	notifications_models "untitledone/internal/features/notifications/models"
	"untitledone/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListQuery struct {
	UserID       uuid.UUID
	Filter       notifications_enums.NotificationFilter
	ExcludeTypes []notifications_enums.NotificationType
	Cursor       *notifications_models.NotificationCursor
	Limit        int
}

type NotificationRepository struct{}

func (r *NotificationRepository) CreateNotifications(
	ctx context.Context,
	notifications []*notifications_models.Notification,
) error {
	if len(notifications) == 0 {
		return nil
	}

	now := time.Now().UTC()
	for _, notification := range notifications {
		if notification.ID == uuid.Nil {
			notification.ID = uuid.New()
		}
		if notification.CreatedAt.IsZero() {
			notification.CreatedAt = now
		}
		notification.UpdatedAt = notification.CreatedAt
	}

	return storage.GetDb().WithContext(ctx).Create(&notifications).Error
}

func (r *NotificationRepository) ListNotifications(
	ctx context.Context,
	query ListQuery,
) ([]*notifications_models.Notification, error) {
	notifications := make([]*notifications_models.Notification, 0)

	db := r.scope(ctx, query.UserID, query.ExcludeTypes)

	switch query.Filter {
	case notifications_enums.NotificationFilterUnread:
		db = db.Where("is_read = ?", false)
	case notifications_enums.NotificationFilterRead:
		db = db.Where("is_read = ?", true)
	}

	if query.Cursor != nil {
		db = db.Where("(created_at, id) < (?, ?)", query.Cursor.CreatedAt, query.Cursor.ID)
	}

	if err := db.
		Order("created_at DESC, id DESC").
		Limit(query.Limit).
		Find(&notifications).Error; err != nil {
		return nil, err
	}

	return notifications, nil
}

func (r *NotificationRepository) CountUnread(
	ctx context.Context,
	userID uuid.UUID,
	excludeTypes []notifications_enums.NotificationType,
) (int64, error) {
	var count int64

	err := r.scope(ctx, userID, excludeTypes).
		Where("is_read = ?", false).
		Count(&count).Error

	return count, err
}

// MarkRead returns nil when the notification does not exist or belongs to someone else.
func (r *NotificationRepository) MarkRead(
	ctx context.Context,
	notificationID uuid.UUID,
	userID uuid.UUID,
	isRead bool,
) (*notifications_models.Notification, error) {
	result := storage.GetDb().
		WithContext(ctx).
		Model(&notifications_models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Updates(map[string]any{"is_read": isRead, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	var notification notifications_models.Notification
	if err := storage.GetDb().WithContext(ctx).Where("id = ?", notificationID).First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &notification, nil
}

func (r *NotificationRepository) MarkAllRead(
	ctx context.Context,
	userID uuid.UUID,
	excludeTypes []notifications_enums.NotificationType,
) (int64, error) {
	result := r.scope(ctx, userID, excludeTypes).
		Where("is_read = ?", false).
		Updates(map[string]any{"is_read": true, "updated_at": time.Now().UTC()})

	return result.RowsAffected, result.Error
}

// FilterUnread keeps the ids of notifications that are still unread.
func (r *NotificationRepository) FilterUnread(ctx context.Context, notificationIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(notificationIDs) == 0 {
		return []uuid.UUID{}, nil
	}

	var unread []uuid.UUID
	err := storage.GetDb().
		WithContext(ctx).
		Model(&notifications_models.Notification{}).
		Where("id IN ? AND is_read = ?", notificationIDs, false).
		Pluck("id", &unread).Error

	return unread, err
}

func (r *NotificationRepository) scope(
	ctx context.Context,
	userID uuid.UUID,
	excludeTypes []notifications_enums.NotificationType,
) *gorm.DB {
	db := storage.GetDb().
		WithContext(ctx).
		Model(&notifications_models.Notification{}).
		Where("user_id = ?", userID)

	if len(excludeTypes) > 0 {
		db = db.Where("type NOT IN ?", excludeTypes)
	}

	return db
}

// DeleteReadBefore removes read notifications created before cutoff. Unread rows are kept.
func (r *NotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := storage.GetDb().
		WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&notifications_models.Notification{})

	return result.RowsAffected, result.Error
}
