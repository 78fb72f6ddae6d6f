package comments_models

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID        uuid.UUID  `json:"id"         gorm:"column:id"`
	ProjectID uuid.UUID  `json:"project_id" gorm:"column:project_id"`
	AuthorID  uuid.UUID  `json:"author_id"  gorm:"column:author_id"`
	ParentID  *uuid.UUID `json:"parent_id"  gorm:"column:parent_id"`
	Body      string     `json:"body"       gorm:"column:body"`

	// Anchor. All nil for a project level comment.
	FileID           *uuid.UUID `json:"file_id"           gorm:"column:file_id"`
	VersionID        *uuid.UUID `json:"version_id"        gorm:"column:version_id"`
	TimestampSeconds *float64   `json:"timestamp_seconds" gorm:"column:timestamp_seconds"`

	Resolved  bool      `json:"resolved"   gorm:"column:resolved"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Comment) TableName() string {
	return "comments"
}

func (c *Comment) IsAuthoredBy(userID uuid.UUID) bool {
	return c.AuthorID == userID
}
