package comments_services_test

import (
	"context"
	"testing"

	comments_dto "untitledone/internal/features/comments/dto"
	comments_services "untitledone/internal/features/comments/services"
	comments_testing "untitledone/internal/features/comments/testing"
	users_enums "untitledone/internal/features/users/enums"
	users_models "untitledone/internal/features/users/models"
	users_testing "untitledone/internal/features/users/testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CreateComment_WithMentions_NotifiesMembersOnly(t *testing.T) {
	owner := users_testing.NewTestUser("owner")
	alice := users_testing.NewTestUser("alice")
	bob := users_testing.NewTestUser("bob")
	fixture := comments_testing.NewFixture(owner, alice, bob)
	project := fixture.CreateProject("Album", owner, users_enums.ProjectRoleMember, alice)

	response, err := fixture.CommentService.CreateComment(context.Background(), project.ID,
		&comments_dto.CreateCommentRequestDTO{Body: "Hey @Alice and @bob and @owner and @ghost"}, owner)
	require.NoError(t, err)

	require.Len(t, response.Mentions, 1)
	assert.Equal(t, "alice", response.Mentions[0].Username)
	assert.Len(t, fixture.Notifications.Notifications.ForUser(alice.ID), 1)
	assert.Empty(t, fixture.Notifications.Notifications.ForUser(bob.ID))
	assert.Empty(t, fixture.Notifications.Notifications.ForUser(owner.ID))
}

func Test_CreateComment_WhenNotMember_ReturnsAccessDenied(t *testing.T) {
	owner := users_testing.NewTestUser("owner")
	stranger := users_testing.NewTestUser("stranger")
	fixture := comments_testing.NewFixture(owner, stranger)
	project := fixture.CreateProject("Album", owner, users_enums.ProjectRoleMember)

	_, err := fixture.CommentService.CreateComment(context.Background(), project.ID,
		&comments_dto.CreateCommentRequestDTO{Body: "hello"}, stranger)
	assert.ErrorIs(t, err, comments_services.ErrCommentAccessDenied)
	assert.Zero(t, fixture.Comments.Count())
}

func Test_CreateComment_WhenProjectMissing_ReturnsAccessDenied(t *testing.T) {
	owner := users_testing.NewTestUser("owner")
	fixture := comments_testing.NewFixture(owner)

	_, err := fixture.CommentService.CreateComment(context.Background(), uuid.New(),
		&comments_dto.CreateCommentRequestDTO{Body: "hello"}, owner)
	assert.ErrorIs(t, err, comments_services.ErrCommentAccessDenied)
}

func Test_CreateComment_WithParentFromOtherProject_ReturnsParentNotFound(t *testing.T) {
	owner := users_testing.NewTestUser("owner")
	fixture := comments_testing.NewFixture(owner)
	first := fixture.CreateProject("First", owner, users_enums.ProjectRoleMember)
	second := fixture.CreateProject("Second", owner, users_enums.ProjectRoleMember)

	parent, err := fixture.CommentService.CreateComment(context.Background(), first.ID,
		&comments_dto.CreateCommentRequestDTO{Body: "root"}, owner)
	require.NoError(t, err)

	_, err = fixture.CommentService.CreateComment(context.Background(), second.ID,
		&comments_dto.CreateCommentRequestDTO{Body: "reply", ParentID: &parent.ID}, owner)
	assert.ErrorIs(t, err, comments_services.ErrParentCommentNotFound)

	reply, err := fixture.CommentService.CreateComment(context.Background(), first.ID,
		&comments_dto.CreateCommentRequestDTO{Body: "reply", ParentID: &parent.ID}, owner)
	require.NoError(t, err)
	assert.Equal(t, parent.ID, *reply.ParentID)
}

func Test_UpdateComment_WhenMentionAdded_NotifiesOnlyNewUser(t *testing.T) {
	owner := users_testing.NewTestUser("owner")
	alice := users_testing.NewTestUser("alice")
	bob := users_testing.NewTestUser("bob")
	fixture := comments_testing.NewFixture(owner, alice, bob)
	project := fixture.CreateProject("Album", owner, users_enums.ProjectRoleMember, alice, bob)

	created, err := fixture.CommentService.CreateComment(context.Background(), project.ID,
		&comments_dto.CreateCommentRequestDTO{Body: "@alice first pass"}, owner)
	require.NoError(t, err)

	updated, err := fixture.CommentService.UpdateComment(context.Background(), created.ID,
		&comments_dto.UpdateCommentRequestDTO{Body: "@alice first pass, @bob too"}, owner)
	require.NoError(t, err)

	assert.Equal(t, "@alice first pass, @bob too", updated.Body)
	require.Len(t, updated.Mentions, 1)
	assert.Equal(t, bob.ID, updated.Mentions[0].ID)
	assert.Len(t, fixture.Notifications.Notifications.ForUser(alice.ID), 1)
	assert.Len(t, fixture.Notifications.Notifications.ForUser(bob.ID), 1)
}

func Test_UpdateComment_WhenMentionRemovedAndReadded_DoesNotNotifyAgain(t *testing.T) {
	owner := users_testing.NewTestUser("owner")
	alice := users_testing.NewTestUser("alice")
	fixture := comments_testing.NewFixture(owner, alice)
	project := fixture.CreateProject("Album", owner, users_enums.ProjectRoleMember, alice)

	created, err := fixture.CommentService.CreateComment(context.Background(), project.ID,
		&comments_dto.CreateCommentRequestDTO{Body: "@alice"}, owner)
	require.NoError(t, err)

	for _, body := range []string{"nobody", "@alice again"} {
		_, err = fixture.CommentService.UpdateComment(context.Background(), created.ID,
			&comments_dto.UpdateCommentRequestDTO{Body: body}, owner)
		require.NoError(t, err)
	}

	assert.Len(t, fixture.Notifications.Notifications.ForUser(alice.ID), 1)
}

func Test_UpdateComment_ByNonAuthor_ReturnsNotAuthor(t *testing.T) {
	owner := users_testing.NewTestUser("owner")
	alice := users_testing.NewTestUser("alice")
	fixture := comments_testing.NewFixture(owner, alice)
	project := fixture.CreateProject("Album", owner, users_enums.ProjectRoleMember, alice)

	created, err := fixture.CommentService.CreateComment(context.Background(), project.ID,
		&comments_dto.CreateCommentRequestDTO{Body: "mine"}, alice)
	require.NoError(t, err)

	_, err = fixture.CommentService.UpdateComment(context.Background(), created.ID,
		&comments_dto.UpdateCommentRequestDTO{Body: "owner edit"}, owner)
	assert.ErrorIs(t, err, comments_services.ErrNotCommentAuthor)
}

func Test_ResolveComment_ByViewer_ReturnsResolveDenied(t *testing.T) {
	owner := users_testing.NewTestUser("owner")
	viewer := users_testing.NewTestUser("viewer")
	fixture := comments_testing.NewFixture(owner, viewer)
	project := fixture.CreateProject("Album", owner, users_enums.ProjectRoleViewer, viewer)

	created, err := fixture.CommentService.CreateComment(context.Background(), project.ID,
		&comments_dto.CreateCommentRequestDTO{Body: "fix the intro"}, owner)
	require.NoError(t, err)

	_, err = fixture.CommentService.ResolveComment(context.Background(), created.ID, true, viewer)
	assert.ErrorIs(t, err, comments_services.ErrResolveDenied)

	resolved, err := fixture.CommentService.ResolveComment(context.Background(), created.ID, true, owner)
	require.NoError(t, err)
	assert.True(t, resolved.Resolved)
}

func Test_DeleteComment_ByOwnerOrAuthor_Succeeds(t *testing.T) {
	owner := users_testing.NewTestUser("owner")
	alice := users_testing.NewTestUser("alice")
	bob := users_testing.NewTestUser("bob")
	fixture := comments_testing.NewFixture(owner, alice, bob)
	project := fixture.CreateProject("Album", owner, users_enums.ProjectRoleMember, alice, bob)

	first, err := fixture.CommentService.CreateComment(context.Background(), project.ID,
		&comments_dto.CreateCommentRequestDTO{Body: "first"}, alice)
	require.NoError(t, err)
	second, err := fixture.CommentService.CreateComment(context.Background(), project.ID,
		&comments_dto.CreateCommentRequestDTO{Body: "second"}, alice)
	require.NoError(t, err)

	assert.ErrorIs(t, fixture.CommentService.DeleteComment(context.Background(), first.ID, bob),
		comments_services.ErrDeleteDenied)
	require.NoError(t, fixture.CommentService.DeleteComment(context.Background(), first.ID, alice))
	require.NoError(t, fixture.CommentService.DeleteComment(context.Background(), second.ID, owner))

	assert.ErrorIs(t, fixture.CommentService.DeleteComment(context.Background(), first.ID, alice),
		comments_services.ErrCommentNotFound)
	assert.Zero(t, fixture.Comments.Count())
}

func Test_GetProjectComments_ReturnsAuthorUsernamesInOrder(t *testing.T) {
	owner := users_testing.NewTestUser("owner")
	alice := users_testing.NewTestUser("alice")
	fixture := comments_testing.NewFixture(owner, alice)
	project := fixture.CreateProject("Album", owner, users_enums.ProjectRoleMember, alice)

	for _, author := range []*users_models.User{owner, alice} {
		_, err := fixture.CommentService.CreateComment(context.Background(), project.ID,
			&comments_dto.CreateCommentRequestDTO{Body: "by " + author.Username}, author)
		require.NoError(t, err)
	}

	response, err := fixture.CommentService.GetProjectComments(context.Background(), project.ID, alice)
	require.NoError(t, err)
	require.Len(t, response.Comments, 2)

	usernames := []string{response.Comments[0].AuthorUsername, response.Comments[1].AuthorUsername}
	assert.ElementsMatch(t, []string{"owner", "alice"}, usernames)
}
