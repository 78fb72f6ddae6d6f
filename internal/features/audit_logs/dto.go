package audit_logs

import (
	"time"

	"github.com/google/uuid"
)

// GetAuditLogsRequest pages backwards in time: pass the createdAt of the last
// entry as before to fetch the next page.
type GetAuditLogsRequest struct {
	Limit  int        `form:"limit"  json:"limit"`
	Before *time.Time `form:"before" json:"before"`
}

type GetAuditLogsResponse struct {
	AuditLogs []*AuditLogEntryDTO `json:"auditLogs"`
	HasMore   bool                `json:"hasMore"`
	Limit     int                 `json:"limit"`
	// Total is only counted for the global listing.
	Total *int64 `json:"total,omitempty"`
}

type AuditLogEntryDTO struct {
	ID            uuid.UUID  `json:"id"            gorm:"column:id"`
	ActorID       *uuid.UUID `json:"actorId"       gorm:"column:user_id"`
	ActorUsername *string    `json:"actorUsername" gorm:"column:username"`
	ProjectID     *uuid.UUID `json:"projectId"     gorm:"column:project_id"`
	ProjectName   *string    `json:"projectName"   gorm:"column:project_name"`
	Message       string     `json:"message"       gorm:"column:message"`
	CreatedAt     time.Time  `json:"createdAt"     gorm:"column:created_at"`
}
