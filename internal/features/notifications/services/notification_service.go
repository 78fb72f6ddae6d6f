package notifications_services

import (
	"context"
	"errors"
	"fmt"

	notifications_dto "untitledone/internal/features/notifications/dto"
	notifications_enums "untitledone/internal/features/notifications/enums"
	notifications_models "untitledone/internal/features/notifications/models"
	notifications_repositories "untitledone/internal/features/notifications/repositories"

	"github.com/google/uuid"
)

var ErrNotificationNotFound = errors.New("notification not found")

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type NotificationPage struct {
	Notifications []*notifications_models.Notification
	NextCursor    string
}

type NotificationService struct {
	notificationStore NotificationStore
	preferencesStore  PreferencesStore
}

func NewNotificationService(
	notificationStore NotificationStore,
	preferencesStore PreferencesStore,
) *NotificationService {
	return &NotificationService{
		notificationStore: notificationStore,
		preferencesStore:  preferencesStore,
	}
}

// ListNotifications returns one page, newest first. NextCursor is empty on the last page.
func (s *NotificationService) ListNotifications(
	ctx context.Context,
	userID uuid.UUID,
	request *notifications_dto.ListNotificationsRequestDTO,
) (*NotificationPage, error) {
	limit := request.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	filter := request.Filter
	if filter == "" {
		filter = notifications_enums.NotificationFilterAll
	}

	var cursor *notifications_models.NotificationCursor
	if request.Cursor != "" {
		decoded, err := DecodeCursor(request.Cursor)
		if err != nil {
			return nil, err
		}

		cursor = decoded
	}

	excludeTypes, err := s.hiddenTypes(ctx, userID)
	if err != nil {
		return nil, err
	}

	notifications, err := s.notificationStore.ListNotifications(ctx, notifications_repositories.ListQuery{
		UserID:       userID,
		Filter:       filter,
		ExcludeTypes: excludeTypes,
		Cursor:       cursor,
		Limit:        limit + 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	page := &NotificationPage{Notifications: notifications}
	if len(notifications) > limit {
		page.Notifications = notifications[:limit]
		page.NextCursor = EncodeCursor(page.Notifications[limit-1])
	}

	return page, nil
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	excludeTypes, err := s.hiddenTypes(ctx, userID)
	if err != nil {
		return 0, err
	}

	count, err := s.notificationStore.CountUnread(ctx, userID, excludeTypes)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}

// MarkRead reports ErrNotificationNotFound for rows owned by other users too.
func (s *NotificationService) MarkRead(
	ctx context.Context,
	userID uuid.UUID,
	notificationID uuid.UUID,
	isRead bool,
) (*notifications_models.Notification, error) {
	notification, err := s.notificationStore.MarkRead(ctx, notificationID, userID, isRead)
	if err != nil {
		return nil, fmt.Errorf("failed to update notification: %w", err)
	}
	if notification == nil {
		return nil, ErrNotificationNotFound
	}

	return notification, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	excludeTypes, err := s.hiddenTypes(ctx, userID)
	if err != nil {
		return 0, err
	}

	count, err := s.notificationStore.MarkAllRead(ctx, userID, excludeTypes)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	return count, nil
}

// GetPreferences falls back to defaults without storing them.
func (s *NotificationService) GetPreferences(
	ctx context.Context,
	userID uuid.UUID,
) (*notifications_models.NotificationPreferences, error) {
	preferences, err := s.preferencesStore.GetPreferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get notification preferences: %w", err)
	}
	if preferences == nil {
		return notifications_models.DefaultPreferences(userID), nil
	}

	return preferences, nil
}

func (s *NotificationService) UpdatePreferences(
	ctx context.Context,
	userID uuid.UUID,
	request *notifications_dto.UpdatePreferencesRequestDTO,
) (*notifications_models.NotificationPreferences, error) {
	preferences, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	if request.EmailMentionsEnabled != nil {
		preferences.EmailMentionsEnabled = *request.EmailMentionsEnabled
	}
	if request.InAppMentionsEnabled != nil {
		preferences.InAppMentionsEnabled = *request.InAppMentionsEnabled
	}
	if request.EmailFrequency != nil {
		preferences.EmailFrequency = *request.EmailFrequency
	}

	if err := s.preferencesStore.UpsertPreferences(ctx, preferences); err != nil {
		return nil, fmt.Errorf("failed to save notification preferences: %w", err)
	}

	return preferences, nil
}

// hiddenTypes lists notification types the user muted in the app. Muted rows
// still exist but are left out of lists, counts and bulk updates.
func (s *NotificationService) hiddenTypes(
	ctx context.Context,
	userID uuid.UUID,
) ([]notifications_enums.NotificationType, error) {
	preferences, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !preferences.InAppMentionsEnabled {
		return []notifications_enums.NotificationType{notifications_enums.NotificationTypeMention}, nil
	}

	return nil, nil
}
