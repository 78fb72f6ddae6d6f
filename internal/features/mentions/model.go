package mentions

import (
	"time"

	"github.com/google/uuid"
)

type Mention struct {
	ID              uuid.UUID `json:"id"              gorm:"column:id"`
	CommentID       uuid.UUID `json:"commentId"       gorm:"column:comment_id"`
	MentionedUserID uuid.UUID `json:"mentionedUserId" gorm:"column:mentioned_user_id"`
	CreatedAt       time.Time `json:"createdAt"       gorm:"column:created_at"`
}

func (Mention) TableName() string {
	return "mentions"
}

type MentionedUser struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}
