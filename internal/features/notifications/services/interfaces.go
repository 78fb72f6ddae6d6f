package notifications_services

import (
	"context"

	"untitledone/internal/features/email"
	notifications_enums "untitledone/internal/features/notifications/enums"
	notifications_models "untitledone/internal/features/notifications/models"
	notifications_repositories "untitledone/internal/features/notifications/repositories"
	projects_models "untitledone/internal/features/projects/models"
	users_models "untitledone/internal/features/users/models"

	"github.com/google/uuid"
)

type MentionStore interface {
	InsertMentions(ctx context.Context, commentID uuid.UUID, userIDs []uuid.UUID) ([]uuid.UUID, error)
}

type NotificationStore interface {
	CreateNotifications(ctx context.Context, notifications []*notifications_models.Notification) error
	ListNotifications(
		ctx context.Context,
		query notifications_repositories.ListQuery,
	) ([]*notifications_models.Notification, error)
	CountUnread(
		ctx context.Context,
		userID uuid.UUID,
		excludeTypes []notifications_enums.NotificationType,
	) (int64, error)
	MarkRead(
		ctx context.Context,
		notificationID uuid.UUID,
		userID uuid.UUID,
		isRead bool,
	) (*notifications_models.Notification, error)
	MarkAllRead(
		ctx context.Context,
		userID uuid.UUID,
		excludeTypes []notifications_enums.NotificationType,
	) (int64, error)
	FilterUnread(ctx context.Context, notificationIDs []uuid.UUID) ([]uuid.UUID, error)
}

type PreferencesStore interface {
	GetPreferences(ctx context.Context, userID uuid.UUID) (*notifications_models.NotificationPreferences, error)
	UpsertPreferences(ctx context.Context, preferences *notifications_models.NotificationPreferences) error
}

type UserDirectory interface {
	GetUsersByIDs(userIDs []uuid.UUID) ([]*users_models.User, error)
}

type ProjectLookup interface {
	GetProjectWithCache(projectID uuid.UUID) (*projects_models.Project, error)
}

type MentionEmailSender interface {
	SendMentionEmail(ctx context.Context, to string, data *email.MentionEmailData) error
}

type DigestEmailSender interface {
	SendDigestEmail(ctx context.Context, to string, data *email.DigestEmailData) error
}

type RealtimePublisher interface {
	PublishNotification(ctx context.Context, userID uuid.UUID, notification any) error
}

type DigestQueue interface {
	Enqueue(ctx context.Context, entries []DigestEntry) error
}
