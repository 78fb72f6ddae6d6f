package notifications_models

import (
	"time"

	notifications_enums "untitledone/internal/features/notifications/enums"

	"github.com/google/uuid"
)

type NotificationPreferences struct {
	UserID               uuid.UUID                          `json:"user_id"                 gorm:"column:user_id;primaryKey"`
	EmailMentionsEnabled bool                               `json:"email_mentions_enabled"  gorm:"column:email_mentions_enabled"`
	InAppMentionsEnabled bool                               `json:"in_app_mentions_enabled" gorm:"column:in_app_mentions_enabled"`
	EmailFrequency       notifications_enums.EmailFrequency `json:"email_frequency"         gorm:"column:email_frequency"`
	UpdatedAt            time.Time                          `json:"updated_at"              gorm:"column:updated_at"`
}

func (NotificationPreferences) TableName() string {
	return "notification_preferences"
}

// DefaultPreferences is what a user without a stored row gets.
func DefaultPreferences(userID uuid.UUID) *NotificationPreferences {
	return &NotificationPreferences{
		UserID:               userID,
		EmailMentionsEnabled: true,
		InAppMentionsEnabled: true,
		EmailFrequency:       notifications_enums.EmailFrequencyDaily,
	}
}
