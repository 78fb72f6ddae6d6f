package notifications_services_test

import (
	"context"
	"errors"
	"testing"

	notifications_enums "untitledone/internal/features/notifications/enums"
	notifications_testing "untitledone/internal/features/notifications/testing"
	users_testing "untitledone/internal/features/users/testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_RunDigest_WithQueuedMentions_SendsOneEmailPerUser(t *testing.T) {
	author := users_testing.NewTestUser("author")
	alice := users_testing.NewTestUser("alice")
	bob := users_testing.NewTestUser("bob")
	fixture := notifications_testing.NewFixture(author, alice, bob)
	project := fixture.AddProject("Album", author)

	fixture.Writer.WriteMentionNotifications(context.Background(), newMentionEvent(project.ID, author, "first", alice, bob))
	fixture.Writer.WriteMentionNotifications(context.Background(), newMentionEvent(project.ID, author, "second", alice))
	require.Equal(t, 3, fixture.DigestQueue.Len())

	require.NoError(t, fixture.Digest.RunDigest(context.Background()))

	require.Len(t, fixture.Emails.DigestEmails, 2)
	byRecipient := map[string]int{}
	for _, sent := range fixture.Emails.DigestEmails {
		byRecipient[sent.To] = len(sent.Data.Items)
		assert.Equal(t, "Album", sent.Data.Items[0].ProjectName)
		assert.Equal(t, "Author", sent.Data.Items[0].CommenterName)
	}
	assert.Equal(t, 2, byRecipient[alice.Email])
	assert.Equal(t, 1, byRecipient[bob.Email])
	assert.Zero(t, fixture.DigestQueue.Len())
}

func Test_RunDigest_WhenMentionAlreadyRead_SkipsIt(t *testing.T) {
	author := users_testing.NewTestUser("author")
	alice := users_testing.NewTestUser("alice")
	fixture := notifications_testing.NewFixture(author, alice)
	project := fixture.AddProject("Album", author)

	fixture.Writer.WriteMentionNotifications(context.Background(), newMentionEvent(project.ID, author, "hi", alice))
	_, err := fixture.Service.MarkAllRead(context.Background(), alice.ID)
	require.NoError(t, err)

	require.NoError(t, fixture.Digest.RunDigest(context.Background()))

	assert.Empty(t, fixture.Emails.DigestEmails)
	assert.Zero(t, fixture.Emails.DigestCalls)
}

func Test_RunDigest_WhenSendFailsOnce_RetriesAndSends(t *testing.T) {
	author := users_testing.NewTestUser("author")
	alice := users_testing.NewTestUser("alice")
	fixture := notifications_testing.NewFixture(author, alice)
	project := fixture.AddProject("Album", author)
	fixture.Emails.FailTimes = 1

	fixture.Writer.WriteMentionNotifications(context.Background(), newMentionEvent(project.ID, author, "hi", alice))
	require.NoError(t, fixture.Digest.RunDigest(context.Background()))

	assert.Equal(t, 2, fixture.Emails.DigestCalls)
	assert.Len(t, fixture.Emails.DigestEmails, 1)
	assert.Zero(t, fixture.DigestQueue.Len())
}

func Test_RunDigest_WhenEverySendFails_RequeuesEntries(t *testing.T) {
	author := users_testing.NewTestUser("author")
	alice := users_testing.NewTestUser("alice")
	fixture := notifications_testing.NewFixture(author, alice)
	project := fixture.AddProject("Album", author)
	fixture.Emails.FailTimes = 10

	fixture.Writer.WriteMentionNotifications(context.Background(), newMentionEvent(project.ID, author, "hi", alice))
	require.NoError(t, fixture.Digest.RunDigest(context.Background()))

	assert.Equal(t, 3, fixture.Emails.DigestCalls)
	assert.Empty(t, fixture.Emails.DigestEmails)
	assert.Equal(t, 1, fixture.DigestQueue.Len())
}

func Test_RunDigest_WhenUserSwitchedToInstant_DropsQueuedEntries(t *testing.T) {
	author := users_testing.NewTestUser("author")
	alice := users_testing.NewTestUser("alice")
	fixture := notifications_testing.NewFixture(author, alice)
	project := fixture.AddProject("Album", author)

	fixture.Writer.WriteMentionNotifications(context.Background(), newMentionEvent(project.ID, author, "hi", alice))
	setPreferences(t, fixture, alice.ID, true, true, notifications_enums.EmailFrequencyInstant)

	require.NoError(t, fixture.Digest.RunDigest(context.Background()))

	assert.Empty(t, fixture.Emails.DigestEmails)
	assert.Zero(t, fixture.DigestQueue.Len())
}

func Test_RunDigest_WhenProjectDeleted_SkipsItsMentions(t *testing.T) {
	author := users_testing.NewTestUser("author")
	alice := users_testing.NewTestUser("alice")
	fixture := notifications_testing.NewFixture(author, alice)
	project := fixture.AddProject("Album", author)

	fixture.Writer.WriteMentionNotifications(context.Background(), newMentionEvent(project.ID, author, "hi", alice))
	delete(fixture.Projects, project.ID)

	require.NoError(t, fixture.Digest.RunDigest(context.Background()))

	assert.Empty(t, fixture.Emails.DigestEmails)
}

func Test_RunDigest_WhenAnotherInstanceHoldsLock_LeavesQueueForThatInstance(t *testing.T) {
	author := users_testing.NewTestUser("author")
	alice := users_testing.NewTestUser("alice")
	fixture := notifications_testing.NewFixture(author, alice)
	project := fixture.AddProject("Album", author)
	fixture.RunLock.HeldByOther = true

	fixture.Writer.WriteMentionNotifications(context.Background(), newMentionEvent(project.ID, author, "hi", alice))
	require.NoError(t, fixture.Digest.RunDigest(context.Background()))

	assert.Zero(t, fixture.Emails.DigestCalls)
	assert.Equal(t, 1, fixture.DigestQueue.Len())

	fixture.RunLock.HeldByOther = false
	require.NoError(t, fixture.Digest.RunDigest(context.Background()))

	assert.Len(t, fixture.Emails.DigestEmails, 1)
	assert.Zero(t, fixture.DigestQueue.Len())
}

func Test_RunDigest_AfterRun_ReleasesLock(t *testing.T) {
	author := users_testing.NewTestUser("author")
	alice := users_testing.NewTestUser("alice")
	fixture := notifications_testing.NewFixture(author, alice)
	project := fixture.AddProject("Album", author)

	fixture.Writer.WriteMentionNotifications(context.Background(), newMentionEvent(project.ID, author, "hi", alice))
	require.NoError(t, fixture.Digest.RunDigest(context.Background()))
	require.NoError(t, fixture.Digest.RunDigest(context.Background()))

	assert.Equal(t, 2, fixture.RunLock.Acquired)
	assert.False(t, fixture.RunLock.IsHeld())
}

func Test_RunDigest_WhenLockUnavailable_ReturnsErrorAndKeepsQueue(t *testing.T) {
	author := users_testing.NewTestUser("author")
	alice := users_testing.NewTestUser("alice")
	fixture := notifications_testing.NewFixture(author, alice)
	project := fixture.AddProject("Album", author)
	fixture.RunLock.Err = errors.New("valkey unavailable")

	fixture.Writer.WriteMentionNotifications(context.Background(), newMentionEvent(project.ID, author, "hi", alice))

	assert.ErrorContains(t, fixture.Digest.RunDigest(context.Background()), "valkey unavailable")
	assert.Equal(t, 1, fixture.DigestQueue.Len())
	assert.Zero(t, fixture.Emails.DigestCalls)
}
