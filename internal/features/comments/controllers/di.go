package comments_controllers

import (
	"sync"

	comments_services "untitledone/internal/features/comments/services"
)

var (
	commentController     *CommentController
	commentControllerOnce sync.Once
)

func GetCommentController() *CommentController {
	commentControllerOnce.Do(func() {
		commentController = NewCommentController(comments_services.GetCommentService())
	})

	return commentController
}
