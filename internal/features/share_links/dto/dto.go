package share_links_dto

import (
	"time"

	share_links_enums "untitledone/internal/features/share_links/enums"

	"github.com/google/uuid"
)

type IssueShareLinkResponseDTO struct {
	ID        uuid.UUID `json:"id"`
	URL       string    `json:"url"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type ShareLinkDTO struct {
	ID        uuid.UUID                         `json:"id"`
	ProjectID uuid.UUID                         `json:"project_id"`
	URL       string                            `json:"url"`
	CreatedBy uuid.UUID                         `json:"created_by"`
	ExpiresAt time.Time                         `json:"expires_at"`
	UsedBy    *uuid.UUID                        `json:"used_by"`
	UsedAt    *time.Time                        `json:"used_at"`
	Revoked   bool                              `json:"revoked"`
	Status    share_links_enums.ShareLinkStatus `json:"status"`
	CreatedAt time.Time                         `json:"created_at"`
}

type RevokeShareLinkResponseDTO struct {
	Success bool `json:"success"`
}
