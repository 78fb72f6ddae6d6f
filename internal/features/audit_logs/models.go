package audit_logs

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog is an append-only record of something a user did. ProjectID is
// kept after the project is gone so deletions stay traceable.
type AuditLog struct {
	ID        uuid.UUID  `gorm:"column:id;primaryKey"`
	ActorID   *uuid.UUID `gorm:"column:user_id"`
	ProjectID *uuid.UUID `gorm:"column:project_id"`
	Message   string     `gorm:"column:message"`
	CreatedAt time.Time  `gorm:"column:created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// AuditLogFilter narrows a listing. Nil fields match everything.
type AuditLogFilter struct {
	ActorID   *uuid.UUID
	ProjectID *uuid.UUID
	Before    *time.Time
}

func (f AuditLogFilter) Matches(log *AuditLog) bool {
	if f.ActorID != nil && (log.ActorID == nil || *log.ActorID != *f.ActorID) {
		return false
	}

	if f.ProjectID != nil && (log.ProjectID == nil || *log.ProjectID != *f.ProjectID) {
		return false
	}

	return f.Before == nil || log.CreatedAt.Before(*f.Before)
}
