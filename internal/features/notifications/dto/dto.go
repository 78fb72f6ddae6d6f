package notifications_dto

import (
	notifications_enums "untitledone/internal/features/notifications/enums"
)

type ListNotificationsRequestDTO struct {
	Filter notifications_enums.NotificationFilter `form:"filter" binding:"omitempty,oneof=all unread read"`
	Limit  int                                    `form:"limit"  binding:"omitempty,min=1,max=100"`
	Cursor string                                 `form:"cursor"`
}

type MarkReadRequestDTO struct {
	IsRead *bool `json:"is_read" binding:"required"`
}

type MarkAllReadResponseDTO struct {
	Success bool  `json:"success"`
	Count   int64 `json:"count"`
}

type UnreadCountResponseDTO struct {
	Count int64 `json:"count"`
}

// UpdatePreferencesRequestDTO applies only the fields that are present.
type UpdatePreferencesRequestDTO struct {
	EmailMentionsEnabled *bool                               `json:"email_mentions_enabled"`
	InAppMentionsEnabled *bool                               `json:"in_app_mentions_enabled"`
	EmailFrequency       *notifications_enums.EmailFrequency `json:"email_frequency" binding:"omitempty,oneof=instant daily"`
}
