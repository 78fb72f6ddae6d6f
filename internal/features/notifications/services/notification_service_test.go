package notifications_services_test

import (
	"context"
	"testing"
	"time"

	notifications_dto "untitledone/internal/features/notifications/dto"
	notifications_enums "untitledone/internal/features/notifications/enums"
	notifications_models "untitledone/internal/features/notifications/models"
	notifications_services "untitledone/internal/features/notifications/services"
	notifications_testing "untitledone/internal/features/notifications/testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedNotifications(
	t *testing.T,
	fixture *notifications_testing.Fixture,
	userID uuid.UUID,
	count int,
) []*notifications_models.Notification {
	t.Helper()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	notifications := make([]*notifications_models.Notification, 0, count)
	for i := 0; i < count; i++ {
		notifications = append(notifications, &notifications_models.Notification{
			ID:        uuid.New(),
			UserID:    userID,
			Type:      notifications_enums.NotificationTypeMention,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	require.NoError(t, fixture.Notifications.CreateNotifications(context.Background(), notifications))
	return notifications
}

func Test_ListNotifications_WhenPaging_ReturnsEveryRowOnceNewestFirst(t *testing.T) {
	fixture := notifications_testing.NewFixture()
	userID := uuid.New()
	seeded := seedNotifications(t, fixture, userID, 5)
	seedNotifications(t, fixture, uuid.New(), 3)

	var collected []*notifications_models.Notification
	cursor := ""
	pages := 0
	for {
		page, err := fixture.Service.ListNotifications(context.Background(), userID,
			&notifications_dto.ListNotificationsRequestDTO{Limit: 2, Cursor: cursor})
		require.NoError(t, err)

		collected = append(collected, page.Notifications...)
		pages++
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	assert.Equal(t, 3, pages)
	require.Len(t, collected, 5)
	for i, notification := range collected {
		assert.Equal(t, seeded[4-i].ID, notification.ID)
	}
}

func Test_ListNotifications_WithExactPageSize_ReturnsNoCursor(t *testing.T) {
	fixture := notifications_testing.NewFixture()
	userID := uuid.New()
	seedNotifications(t, fixture, userID, 2)

	page, err := fixture.Service.ListNotifications(context.Background(), userID,
		&notifications_dto.ListNotificationsRequestDTO{Limit: 2})
	require.NoError(t, err)

	assert.Len(t, page.Notifications, 2)
	assert.Empty(t, page.NextCursor)
}

func Test_ListNotifications_WithUnreadFilter_ReturnsOnlyUnread(t *testing.T) {
	fixture := notifications_testing.NewFixture()
	userID := uuid.New()
	seeded := seedNotifications(t, fixture, userID, 3)

	_, err := fixture.Service.MarkRead(context.Background(), userID, seeded[0].ID, true)
	require.NoError(t, err)

	page, err := fixture.Service.ListNotifications(context.Background(), userID,
		&notifications_dto.ListNotificationsRequestDTO{Filter: notifications_enums.NotificationFilterUnread})
	require.NoError(t, err)
	assert.Len(t, page.Notifications, 2)

	page, err = fixture.Service.ListNotifications(context.Background(), userID,
		&notifications_dto.ListNotificationsRequestDTO{Filter: notifications_enums.NotificationFilterRead})
	require.NoError(t, err)
	require.Len(t, page.Notifications, 1)
	assert.Equal(t, seeded[0].ID, page.Notifications[0].ID)
}

func Test_ListNotifications_WithInvalidCursor_ReturnsError(t *testing.T) {
	fixture := notifications_testing.NewFixture()

	_, err := fixture.Service.ListNotifications(context.Background(), uuid.New(),
		&notifications_dto.ListNotificationsRequestDTO{Cursor: "%%%"})
	assert.ErrorIs(t, err, notifications_services.ErrInvalidCursor)
}

func Test_MarkRead_WhenNotificationBelongsToAnotherUser_ReturnsNotFound(t *testing.T) {
	fixture := notifications_testing.NewFixture()
	owner := uuid.New()
	seeded := seedNotifications(t, fixture, owner, 1)

	_, err := fixture.Service.MarkRead(context.Background(), uuid.New(), seeded[0].ID, true)
	assert.ErrorIs(t, err, notifications_services.ErrNotificationNotFound)

	count, err := fixture.Service.GetUnreadCount(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func Test_MarkRead_WhenToggledBack_MarksUnread(t *testing.T) {
	fixture := notifications_testing.NewFixture()
	userID := uuid.New()
	seeded := seedNotifications(t, fixture, userID, 1)

	notification, err := fixture.Service.MarkRead(context.Background(), userID, seeded[0].ID, true)
	require.NoError(t, err)
	assert.True(t, notification.IsRead)

	notification, err = fixture.Service.MarkRead(context.Background(), userID, seeded[0].ID, false)
	require.NoError(t, err)
	assert.False(t, notification.IsRead)
}

func Test_MarkAllRead_WithUnreadRows_ReturnsUpdatedCount(t *testing.T) {
	fixture := notifications_testing.NewFixture()
	userID := uuid.New()
	seeded := seedNotifications(t, fixture, userID, 4)
	_, err := fixture.Service.MarkRead(context.Background(), userID, seeded[1].ID, true)
	require.NoError(t, err)

	count, err := fixture.Service.MarkAllRead(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	unread, err := fixture.Service.GetUnreadCount(context.Background(), userID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func Test_GetPreferences_WithoutStoredRow_ReturnsDefaultsWithoutWriting(t *testing.T) {
	fixture := notifications_testing.NewFixture()
	userID := uuid.New()

	preferences, err := fixture.Service.GetPreferences(context.Background(), userID)
	require.NoError(t, err)

	assert.True(t, preferences.EmailMentionsEnabled)
	assert.True(t, preferences.InAppMentionsEnabled)
	assert.Equal(t, notifications_enums.EmailFrequencyDaily, preferences.EmailFrequency)
	assert.Zero(t, fixture.Preferences.Count())
}

func Test_UpdatePreferences_WithPartialBody_KeepsOtherFields(t *testing.T) {
	fixture := notifications_testing.NewFixture()
	userID := uuid.New()
	instant := notifications_enums.EmailFrequencyInstant

	preferences, err := fixture.Service.UpdatePreferences(context.Background(), userID,
		&notifications_dto.UpdatePreferencesRequestDTO{EmailFrequency: &instant})
	require.NoError(t, err)

	assert.True(t, preferences.EmailMentionsEnabled)
	assert.True(t, preferences.InAppMentionsEnabled)
	assert.Equal(t, instant, preferences.EmailFrequency)

	stored, err := fixture.Service.GetPreferences(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, instant, stored.EmailFrequency)
}

func Test_UnreadCount_WhenInAppMentionsDisabled_HidesMentions(t *testing.T) {
	fixture := notifications_testing.NewFixture()
	userID := uuid.New()
	seedNotifications(t, fixture, userID, 2)
	disabled := false

	_, err := fixture.Service.UpdatePreferences(context.Background(), userID,
		&notifications_dto.UpdatePreferencesRequestDTO{InAppMentionsEnabled: &disabled})
	require.NoError(t, err)

	count, err := fixture.Service.GetUnreadCount(context.Background(), userID)
	require.NoError(t, err)
	assert.Zero(t, count)

	page, err := fixture.Service.ListNotifications(context.Background(), userID,
		&notifications_dto.ListNotificationsRequestDTO{})
	require.NoError(t, err)
	assert.Empty(t, page.Notifications)
	assert.Len(t, fixture.Notifications.ForUser(userID), 2)
}
