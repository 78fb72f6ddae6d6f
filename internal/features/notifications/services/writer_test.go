package notifications_services_test

import (
	"context"
	"errors"
	"testing"

	notifications_enums "untitledone/internal/features/notifications/enums"
	notifications_models "untitledone/internal/features/notifications/models"
	notifications_services "untitledone/internal/features/notifications/services"
	notifications_testing "untitledone/internal/features/notifications/testing"
	users_models "untitledone/internal/features/users/models"
	users_testing "untitledone/internal/features/users/testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMentionEvent(
	projectID uuid.UUID,
	author *users_models.User,
	body string,
	mentioned ...*users_models.User,
) *notifications_services.MentionEvent {
	userIDs := make([]uuid.UUID, 0, len(mentioned))
	for _, user := range mentioned {
		userIDs = append(userIDs, user.ID)
	}

	return &notifications_services.MentionEvent{
		CommentID:        uuid.New(),
		ProjectID:        projectID,
		AuthorID:         author.ID,
		MentionedUserIDs: userIDs,
		Body:             body,
	}
}

func Test_WriteMentionNotifications_WhenAuthorMentionsSelf_SkipsAuthor(t *testing.T) {
	author := users_testing.NewTestUser("author")
	alice := users_testing.NewTestUser("alice")
	fixture := notifications_testing.NewFixture(author, alice)
	project := fixture.AddProject("Album", author)

	fixture.Writer.WriteMentionNotifications(context.Background(),
		newMentionEvent(project.ID, author, "@author @alice listen", author, alice))

	assert.Empty(t, fixture.Notifications.ForUser(author.ID))
	require.Len(t, fixture.Notifications.ForUser(alice.ID), 1)

	notification := fixture.Notifications.ForUser(alice.ID)[0]
	assert.Equal(t, notifications_enums.NotificationTypeMention, notification.Type)
	assert.Equal(t, author.ID, *notification.ActorID)
	assert.Equal(t, project.ID, *notification.ProjectID)
	assert.False(t, notification.IsRead)
	assert.Equal(t, "@author @alice listen", notification.GetMetadata().Excerpt)
}

func Test_WriteMentionNotifications_WithDuplicateIDs_CreatesOneNotification(t *testing.T) {
	author := users_testing.NewTestUser("author")
	alice := users_testing.NewTestUser("alice")
	fixture := notifications_testing.NewFixture(author, alice)
	project := fixture.AddProject("Album", author)

	fixture.Writer.WriteMentionNotifications(context.Background(),
		newMentionEvent(project.ID, author, "hi", alice, alice))

	assert.Len(t, fixture.Notifications.ForUser(alice.ID), 1)
}

func Test_WriteMentionNotifications_WhenMentionAlreadyStored_DoesNotNotifyAgain(t *testing.T) {
	author := users_testing.NewTestUser("author")
	alice := users_testing.NewTestUser("alice")
	fixture := notifications_testing.NewFixture(author, alice)
	project := fixture.AddProject("Album", author)
	event := newMentionEvent(project.ID, author, "hi @alice", alice)

	fixture.Writer.WriteMentionNotifications(context.Background(), event)
	fixture.Writer.WriteMentionNotifications(context.Background(), event)

	assert.Len(t, fixture.Notifications.ForUser(alice.ID), 1)
}

func Test_WriteMentionNotifications_WhenMentionInsertFails_StillNotifies(t *testing.T) {
	author := users_testing.NewTestUser("author")
	alice := users_testing.NewTestUser("alice")
	fixture := notifications_testing.NewFixture(author, alice)
	project := fixture.AddProject("Album", author)
	fixture.Mentions.FailWith = errors.New("connection reset")

	fixture.Writer.WriteMentionNotifications(context.Background(),
		newMentionEvent(project.ID, author, "hi", alice))

	assert.Len(t, fixture.Notifications.ForUser(alice.ID), 1)
}

func Test_WriteMentionNotifications_WhenNotificationInsertFails_DoesNotPanicOrDeliver(t *testing.T) {
	author := users_testing.NewTestUser("author")
	alice := users_testing.NewTestUser("alice")
	fixture := notifications_testing.NewFixture(author, alice)
	project := fixture.AddProject("Album", author)
	fixture.Notifications.FailCreate = errors.New("disk full")

	assert.NotPanics(t, func() {
		fixture.Writer.WriteMentionNotifications(context.Background(),
			newMentionEvent(project.ID, author, "hi", alice))
	})

	assert.Zero(t, fixture.Publisher.Count())
	assert.Zero(t, fixture.DigestQueue.Len())
}

func Test_WriteMentionNotifications_WithDefaultPreferences_PublishesAndQueuesDigest(t *testing.T) {
	author := users_testing.NewTestUser("author")
	alice := users_testing.NewTestUser("alice")
	fixture := notifications_testing.NewFixture(author, alice)
	project := fixture.AddProject("Album", author)

	fixture.Writer.WriteMentionNotifications(context.Background(),
		newMentionEvent(project.ID, author, "hi", alice))

	assert.Equal(t, 1, fixture.Publisher.Count())
	assert.Equal(t, alice.ID, fixture.Publisher.Published[0].UserID)
	assert.Equal(t, 1, fixture.DigestQueue.Len())
	assert.Empty(t, fixture.Emails.MentionEmails)
}

func Test_WriteMentionNotifications_WithInstantFrequency_SendsEmail(t *testing.T) {
	author := users_testing.NewTestUser("author")
	alice := users_testing.NewTestUser("alice")
	fixture := notifications_testing.NewFixture(author, alice)
	project := fixture.AddProject("Album", author)
	setPreferences(t, fixture, alice.ID, true, true, notifications_enums.EmailFrequencyInstant)

	timestamp := 65.0
	event := newMentionEvent(project.ID, author, "<b>check</b> the   bridge", alice)
	event.TimestampSeconds = &timestamp

	fixture.Writer.WriteMentionNotifications(context.Background(), event)

	require.Len(t, fixture.Emails.MentionEmails, 1)
	sent := fixture.Emails.MentionEmails[0]
	assert.Equal(t, alice.Email, sent.To)
	assert.Equal(t, "Album", sent.Data.ProjectName)
	assert.Equal(t, author.DisplayName(), sent.Data.CommenterName)
	assert.Equal(t, "check the bridge", sent.Data.Excerpt)
	assert.Equal(t,
		notifications_testing.SiteOrigin+"/projects/"+project.ID.String()+"?comment="+event.CommentID.String(),
		sent.Data.DeepLink)
	assert.Contains(t, sent.Data.Context, "1:05")
	assert.Zero(t, fixture.DigestQueue.Len())
}

func Test_WriteMentionNotifications_WithEmailDisabled_SendsNoEmail(t *testing.T) {
	author := users_testing.NewTestUser("author")
	alice := users_testing.NewTestUser("alice")
	fixture := notifications_testing.NewFixture(author, alice)
	project := fixture.AddProject("Album", author)
	setPreferences(t, fixture, alice.ID, false, true, notifications_enums.EmailFrequencyInstant)

	fixture.Writer.WriteMentionNotifications(context.Background(),
		newMentionEvent(project.ID, author, "hi", alice))

	assert.Empty(t, fixture.Emails.MentionEmails)
	assert.Zero(t, fixture.DigestQueue.Len())
	assert.Equal(t, 1, fixture.Publisher.Count())
}

func Test_WriteMentionNotifications_WithInAppDisabled_StoresButDoesNotPublish(t *testing.T) {
	author := users_testing.NewTestUser("author")
	alice := users_testing.NewTestUser("alice")
	fixture := notifications_testing.NewFixture(author, alice)
	project := fixture.AddProject("Album", author)
	setPreferences(t, fixture, alice.ID, true, false, notifications_enums.EmailFrequencyDaily)

	fixture.Writer.WriteMentionNotifications(context.Background(),
		newMentionEvent(project.ID, author, "hi", alice))

	assert.Len(t, fixture.Notifications.ForUser(alice.ID), 1)
	assert.Zero(t, fixture.Publisher.Count())
	assert.Equal(t, 1, fixture.DigestQueue.Len())
}

func setPreferences(
	t *testing.T,
	fixture *notifications_testing.Fixture,
	userID uuid.UUID,
	emailEnabled bool,
	inAppEnabled bool,
	frequency notifications_enums.EmailFrequency,
) {
	t.Helper()

	require.NoError(t, fixture.Preferences.UpsertPreferences(context.Background(),
		&notifications_models.NotificationPreferences{
			UserID:               userID,
			EmailMentionsEnabled: emailEnabled,
			InAppMentionsEnabled: inAppEnabled,
			EmailFrequency:       frequency,
		}))
}
