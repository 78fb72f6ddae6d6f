package comments_services

import (
	"context"

	comments_models "untitledone/internal/features/comments/models"
	"untitledone/internal/features/mentions"
	notifications_services "untitledone/internal/features/notifications/services"
	users_enums "untitledone/internal/features/users/enums"
	users_models "untitledone/internal/features/users/models"

	"github.com/google/uuid"
)

type CommentStore interface {
	CreateComment(ctx context.Context, comment *comments_models.Comment) error
	GetCommentByID(ctx context.Context, commentID uuid.UUID) (*comments_models.Comment, error)
	GetProjectComments(ctx context.Context, projectID uuid.UUID) ([]*comments_models.Comment, error)
	UpdateCommentBody(ctx context.Context, commentID uuid.UUID, body string) error
	SetResolved(ctx context.Context, commentID uuid.UUID, resolved bool) error
	DeleteComment(ctx context.Context, commentID uuid.UUID) error
}

type ProjectAccess interface {
	CanUserAccessProject(projectID uuid.UUID, user *users_models.User) (bool, *users_enums.ProjectRole, error)
}

type MentionResolver interface {
	ValidateMentions(ctx context.Context, candidates []string, projectID uuid.UUID) []mentions.MentionedUser
}

type MentionNotifier interface {
	WriteMentionNotifications(ctx context.Context, event *notifications_services.MentionEvent)
}

type UserDirectory interface {
	GetUsersByIDs(userIDs []uuid.UUID) ([]*users_models.User, error)
}
