package audit_logs

import (
	"strings"

	"untitledone/internal/storage"

	"github.com/google/uuid"
)

type AuditLogRepository struct{}

func (r *AuditLogRepository) Create(auditLog *AuditLog) error {
	if auditLog.ID == uuid.Nil {
		auditLog.ID = uuid.New()
	}

	return storage.GetDb().Create(auditLog).Error
}

// List joins actor and project names. Both joins are LEFT because either side
// may have been deleted since the entry was written.
func (r *AuditLogRepository) List(filter AuditLogFilter, limit int) ([]*AuditLogEntryDTO, error) {
	where, args := buildAuditLogWhere(filter)

	entries := make([]*AuditLogEntryDTO, 0, limit)
	err := storage.GetDb().
		Table("audit_logs AS al").
		Select("al.id, al.user_id, al.project_id, al.message, al.created_at, " +
			"u.username AS username, p.name AS project_name").
		Joins("LEFT JOIN users u ON u.id = al.user_id").
		Joins("LEFT JOIN projects p ON p.id = al.project_id").
		Where(where, args...).
		Order("al.created_at DESC, al.id DESC").
		Limit(limit).
		Scan(&entries).Error

	return entries, err
}

func (r *AuditLogRepository) Count(filter AuditLogFilter) (int64, error) {
	where, args := buildAuditLogWhere(filter)

	var count int64
	err := storage.GetDb().Table("audit_logs AS al").Where(where, args...).Count(&count).Error

	return count, err
}

func buildAuditLogWhere(filter AuditLogFilter) (string, []any) {
	clauses := []string{"1 = 1"}
	args := make([]any, 0, 3)

	if filter.ActorID != nil {
		clauses = append(clauses, "al.user_id = ?")
		args = append(args, *filter.ActorID)
	}

	if filter.ProjectID != nil {
		clauses = append(clauses, "al.project_id = ?")
		args = append(args, *filter.ProjectID)
	}

	if filter.Before != nil {
		clauses = append(clauses, "al.created_at < ?")
		args = append(args, *filter.Before)
	}

	return strings.Join(clauses, " AND "), args
}
