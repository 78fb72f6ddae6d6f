package comments_services

import (
	"sync"

	comments_repositories "untitledone/internal/features/comments/repositories"
	"untitledone/internal/features/mentions"
	notifications_services "untitledone/internal/features/notifications/services"
	projects_services "untitledone/internal/features/projects/services"
	users_services "untitledone/internal/features/users/services"
)

var (
	commentRepository = &comments_repositories.CommentRepository{}

	commentService     *CommentService
	commentServiceOnce sync.Once
)

func GetCommentService() *CommentService {
	commentServiceOnce.Do(func() {
		commentService = NewCommentService(
			commentRepository,
			projects_services.GetProjectService(),
			mentions.GetMentionValidator(),
			notifications_services.GetNotificationWriter(),
			users_services.GetUserRepository(),
		)
	})

	return commentService
}
