package notifications_services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"untitledone/internal/features/email"
	notifications_enums "untitledone/internal/features/notifications/enums"
	notifications_models "untitledone/internal/features/notifications/models"
	users_models "untitledone/internal/features/users/models"
	"untitledone/internal/util/background"

	"github.com/google/uuid"
)

const instantEmailTimeout = 5 * time.Second

// MentionEvent describes the mentions a comment save produced.
type MentionEvent struct {
	CommentID        uuid.UUID
	ProjectID        uuid.UUID
	AuthorID         uuid.UUID
	MentionedUserIDs []uuid.UUID
	Body             string

	FileID           *uuid.UUID
	VersionID        *uuid.UUID
	TimestampSeconds *float64
}

// NotificationWriter records mentions and their notifications and hands each
// new notification to delivery. It never returns an error: comment saves must
// not fail because of notifications.
type NotificationWriter struct {
	mentionStore      MentionStore
	notificationStore NotificationStore
	preferencesStore  PreferencesStore
	userDirectory     UserDirectory
	projectLookup     ProjectLookup
	emailSender       MentionEmailSender
	publisher         RealtimePublisher
	digestQueue       DigestQueue
	taskRunner        background.TaskRunner
	siteOrigin        string
	logger            *slog.Logger
}

func NewNotificationWriter(
	mentionStore MentionStore,
	notificationStore NotificationStore,
	preferencesStore PreferencesStore,
	userDirectory UserDirectory,
	projectLookup ProjectLookup,
	emailSender MentionEmailSender,
	publisher RealtimePublisher,
	digestQueue DigestQueue,
	taskRunner background.TaskRunner,
	siteOrigin string,
	logger *slog.Logger,
) *NotificationWriter {
	return &NotificationWriter{
		mentionStore:      mentionStore,
		notificationStore: notificationStore,
		preferencesStore:  preferencesStore,
		userDirectory:     userDirectory,
		projectLookup:     projectLookup,
		emailSender:       emailSender,
		publisher:         publisher,
		digestQueue:       digestQueue,
		taskRunner:        taskRunner,
		siteOrigin:        siteOrigin,
		logger:            logger,
	}
}

// WriteMentionNotifications creates one mention and one notification per new
// mentioned user and schedules their delivery. The author is never notified.
func (w *NotificationWriter) WriteMentionNotifications(ctx context.Context, event *MentionEvent) {
	recipients := excludeAndDedupe(event.MentionedUserIDs, event.AuthorID)
	if len(recipients) == 0 {
		return
	}

	inserted, err := w.mentionStore.InsertMentions(ctx, event.CommentID, recipients)
	if err != nil {
		w.logger.ErrorContext(ctx, "failed to insert mentions, notifying requested users anyway",
			"error", err,
			"commentId", event.CommentID,
		)
	} else {
		recipients = inserted
	}

	if len(recipients) == 0 {
		return
	}

	metadata := notifications_models.NotificationMetadata{
		Excerpt:          BuildExcerpt(event.Body),
		FileID:           event.FileID,
		VersionID:        event.VersionID,
		TimestampSeconds: event.TimestampSeconds,
	}

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		w.logger.ErrorContext(ctx, "failed to encode notification metadata", "error", err)
		return
	}

	now := time.Now().UTC()
	notifications := make([]*notifications_models.Notification, 0, len(recipients))
	for _, recipientID := range recipients {
		notifications = append(notifications, &notifications_models.Notification{
			ID:        uuid.New(),
			UserID:    recipientID,
			ActorID:   &event.AuthorID,
			Type:      notifications_enums.NotificationTypeMention,
			CommentID: &event.CommentID,
			ProjectID: &event.ProjectID,
			IsRead:    false,
			Metadata:  metadataJSON,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if err := w.notificationStore.CreateNotifications(ctx, notifications); err != nil {
		w.logger.ErrorContext(ctx, "failed to create mention notifications",
			"error", err,
			"commentId", event.CommentID,
			"recipients", len(notifications),
		)
		return
	}

	for _, notification := range notifications {
		notification := notification
		if !w.taskRunner.Submit("deliver-notification", func(taskCtx context.Context) error {
			return w.deliver(taskCtx, notification, metadata)
		}) {
			w.logger.Warn("notification delivery dropped, task queue is full", "notificationId", notification.ID)
		}
	}
}

func (w *NotificationWriter) deliver(
	ctx context.Context,
	notification *notifications_models.Notification,
	metadata notifications_models.NotificationMetadata,
) error {
	preferences, err := w.preferencesStore.GetPreferences(ctx, notification.UserID)
	if err != nil {
		return fmt.Errorf("failed to load notification preferences: %w", err)
	}
	if preferences == nil {
		preferences = notifications_models.DefaultPreferences(notification.UserID)
	}

	if preferences.InAppMentionsEnabled {
		if err := w.publisher.PublishNotification(ctx, notification.UserID, notification); err != nil {
			w.logger.Warn("failed to publish realtime notification", "error", err, "notificationId", notification.ID)
		}
	}

	switch DecideDelivery(preferences) {
	case notifications_enums.DeliveryInstant:
		return w.sendInstantEmail(ctx, notification, metadata)
	case notifications_enums.DeliveryDigest:
		return w.digestQueue.Enqueue(ctx, []DigestEntry{newDigestEntry(notification, metadata)})
	default:
		return nil
	}
}

func (w *NotificationWriter) sendInstantEmail(
	ctx context.Context,
	notification *notifications_models.Notification,
	metadata notifications_models.NotificationMetadata,
) error {
	ctx, cancel := context.WithTimeout(ctx, instantEmailTimeout)
	defer cancel()

	recipient, actor, err := w.loadParticipants(notification)
	if err != nil {
		return err
	}
	if recipient == nil {
		return nil
	}

	projectName := ""
	if project, err := w.projectLookup.GetProjectWithCache(*notification.ProjectID); err == nil {
		projectName = project.Name
	}

	data := &email.MentionEmailData{
		RecipientName: recipient.DisplayName(),
		ProjectName:   projectName,
		CommenterName: displayNameOrSomeone(actor),
		Excerpt:       metadata.Excerpt,
		DeepLink:      BuildDeepLink(w.siteOrigin, *notification.ProjectID, *notification.CommentID),
		Context:       BuildAnchorContext(metadata),
	}

	return w.emailSender.SendMentionEmail(ctx, recipient.Email, data)
}

func (w *NotificationWriter) loadParticipants(
	notification *notifications_models.Notification,
) (*users_models.User, *users_models.User, error) {
	userIDs := []uuid.UUID{notification.UserID}
	if notification.ActorID != nil {
		userIDs = append(userIDs, *notification.ActorID)
	}

	users, err := w.userDirectory.GetUsersByIDs(userIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load notification participants: %w", err)
	}

	var recipient, actor *users_models.User
	for _, user := range users {
		if user.ID == notification.UserID {
			recipient = user
		}
		if notification.ActorID != nil && user.ID == *notification.ActorID {
			actor = user
		}
	}

	return recipient, actor, nil
}

func displayNameOrSomeone(user *users_models.User) string {
	if user == nil {
		return "Someone"
	}

	return user.DisplayName()
}

func excludeAndDedupe(userIDs []uuid.UUID, excluded uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(userIDs))
	result := make([]uuid.UUID, 0, len(userIDs))

	for _, userID := range userIDs {
		if userID == excluded {
			continue
		}
		if _, ok := seen[userID]; ok {
			continue
		}

		seen[userID] = struct{}{}
		result = append(result, userID)
	}

	return result
}
