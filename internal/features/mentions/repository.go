package mentions

import (
	"context"
	"time"

	"untitledone/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

type MentionRepository struct{}

// InsertMentions stores one mention per user and returns the users whose row
// did not exist yet. Existing (comment_id, mentioned_user_id) pairs are skipped.
func (r *MentionRepository) InsertMentions(
	ctx context.Context,
	commentID uuid.UUID,
	userIDs []uuid.UUID,
) ([]uuid.UUID, error) {
	inserted := make([]uuid.UUID, 0, len(userIDs))

	for _, userID := range userIDs {
		mention := &Mention{
			ID:              uuid.New(),
			CommentID:       commentID,
			MentionedUserID: userID,
			CreatedAt:       time.Now().UTC(),
		}

		result := storage.GetDb().
			WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "comment_id"}, {Name: "mentioned_user_id"}},
				DoNothing: true,
			}).
			Create(mention)
		if result.Error != nil {
			return inserted, result.Error
		}

		if result.RowsAffected == 1 {
			inserted = append(inserted, userID)
		}
	}

	return inserted, nil
}

func (r *MentionRepository) GetMentionedUserIDs(ctx context.Context, commentID uuid.UUID) ([]uuid.UUID, error) {
	var userIDs []uuid.UUID

	if err := storage.GetDb().
		WithContext(ctx).
		Model(&Mention{}).
		Where("comment_id = ?", commentID).
		Order("created_at ASC").
		Pluck("mentioned_user_id", &userIDs).Error; err != nil {
		return nil, err
	}

	return userIDs, nil
}
