package comments_repositories

import (
	"context"
	"errors"
	"time"

	comments_models "untitledone/internal/features/comments/models"
	"untitledone/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentRepository struct{}

func (r *CommentRepository) CreateComment(ctx context.Context, comment *comments_models.Comment) error {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}

	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	return storage.GetDb().WithContext(ctx).Create(comment).Error
}

// GetCommentByID returns nil when the comment does not exist.
func (r *CommentRepository) GetCommentByID(ctx context.Context, commentID uuid.UUID) (*comments_models.Comment, error) {
	var comment comments_models.Comment

	if err := storage.GetDb().WithContext(ctx).Where("id = ?", commentID).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &comment, nil
}

// GetProjectComments returns the comments of a project oldest first, so
// replies always follow their parent.
func (r *CommentRepository) GetProjectComments(
	ctx context.Context,
	projectID uuid.UUID,
) ([]*comments_models.Comment, error) {
	comments := make([]*comments_models.Comment, 0)

	err := storage.GetDb().
		WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error

	return comments, err
}

func (r *CommentRepository) UpdateCommentBody(ctx context.Context, commentID uuid.UUID, body string) error {
	return storage.GetDb().
		WithContext(ctx).
		Model(&comments_models.Comment{}).
		Where("id = ?", commentID).
		Updates(map[string]any{"body": body, "updated_at": time.Now().UTC()}).Error
}

func (r *CommentRepository) SetResolved(ctx context.Context, commentID uuid.UUID, resolved bool) error {
	return storage.GetDb().
		WithContext(ctx).
		Model(&comments_models.Comment{}).
		Where("id = ?", commentID).
		Updates(map[string]any{"resolved": resolved, "updated_at": time.Now().UTC()}).Error
}

// DeleteComment removes the comment. Replies, mentions and notifications go
// with it through ON DELETE CASCADE.
func (r *CommentRepository) DeleteComment(ctx context.Context, commentID uuid.UUID) error {
	return storage.GetDb().WithContext(ctx).Delete(&comments_models.Comment{}, "id = ?", commentID).Error
}
