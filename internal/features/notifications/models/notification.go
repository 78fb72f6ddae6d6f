package notifications_models

import (
	"encoding/json"
	"time"

	notifications_enums "untitledone/internal/features/notifications/enums"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Notification struct {
	ID        uuid.UUID                            `json:"id"         gorm:"column:id"`
	UserID    uuid.UUID                            `json:"user_id"    gorm:"column:user_id"`
	ActorID   *uuid.UUID                           `json:"actor_id"   gorm:"column:actor_id"`
	Type      notifications_enums.NotificationType `json:"type"       gorm:"column:type"`
	CommentID *uuid.UUID                           `json:"comment_id" gorm:"column:comment_id"`
	ProjectID *uuid.UUID                           `json:"project_id" gorm:"column:project_id"`
	IsRead    bool                                 `json:"is_read"    gorm:"column:is_read"`
	Metadata  datatypes.JSON                       `json:"metadata"   gorm:"column:metadata"`
	CreatedAt time.Time                            `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time                            `json:"updated_at" gorm:"column:updated_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// NotificationMetadata is stored in Notification.Metadata. The anchor fields
// point at the part of the project the comment refers to.
type NotificationMetadata struct {
	Excerpt          string     `json:"excerpt"`
	FileID           *uuid.UUID `json:"file_id,omitempty"`
	VersionID        *uuid.UUID `json:"version_id,omitempty"`
	TimestampSeconds *float64   `json:"timestamp_seconds,omitempty"`
}

func (n *Notification) GetMetadata() NotificationMetadata {
	var metadata NotificationMetadata
	if len(n.Metadata) > 0 {
		_ = json.Unmarshal(n.Metadata, &metadata)
	}

	return metadata
}

// NotificationCursor marks the last row of a page ordered by (created_at, id) descending.
type NotificationCursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}
