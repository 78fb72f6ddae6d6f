package share_links_models

import (
	"time"

	share_links_enums "untitledone/internal/features/share_links/enums"

	"github.com/google/uuid"
)

// ShareLink is a single-use invitation granting VIEWER access to a project.
//
// UsedBy is set by an atomic claim before access is granted. Once the grant
// succeeds UsedBy is never cleared. The one exception is a failed grant: the
// redeemer releases its own claim (ReleaseShareLink) so the link stays usable,
// and no access was ever given under that claim.
type ShareLink struct {
	ID        uuid.UUID  `json:"id"         gorm:"column:id"`
	ProjectID uuid.UUID  `json:"project_id" gorm:"column:project_id"`
	Token     string     `json:"token"      gorm:"column:token"`
	CreatedBy uuid.UUID  `json:"created_by" gorm:"column:created_by"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"column:expires_at"`
	UsedBy    *uuid.UUID `json:"used_by"    gorm:"column:used_by"`
	UsedAt    *time.Time `json:"used_at"    gorm:"column:used_at"`
	Revoked   bool       `json:"revoked"    gorm:"column:revoked"`
	CreatedAt time.Time  `json:"created_at" gorm:"column:created_at"`
}

func (ShareLink) TableName() string {
	return "share_links"
}

// Status derives the link state. Revoked wins over used, used over expired.
func (l *ShareLink) Status(now time.Time) share_links_enums.ShareLinkStatus {
	switch {
	case l.Revoked:
		return share_links_enums.ShareLinkStatusRevoked
	case l.UsedBy != nil:
		return share_links_enums.ShareLinkStatusUsed
	case l.IsExpired(now):
		return share_links_enums.ShareLinkStatusExpired
	default:
		return share_links_enums.ShareLinkStatusActive
	}
}

func (l *ShareLink) IsExpired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}
