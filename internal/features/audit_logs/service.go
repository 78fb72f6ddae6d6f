package audit_logs

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	user_models "untitledone/internal/features/users/models"

	"github.com/google/uuid"
)

var (
	ErrGlobalLogsForbidden = errors.New("only administrators can view global audit logs")
	ErrUserLogsForbidden   = errors.New("insufficient permissions to view user audit logs")
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

type AuditLogStore interface {
	Create(auditLog *AuditLog) error
	List(filter AuditLogFilter, limit int) ([]*AuditLogEntryDTO, error)
	Count(filter AuditLogFilter) (int64, error)
}

type AuditLogService struct {
	store  AuditLogStore
	logger *slog.Logger
	now    func() time.Time
}

func NewAuditLogService(store AuditLogStore, logger *slog.Logger) *AuditLogService {
	return &AuditLogService{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WriteAuditLog never fails the caller: storage errors are only logged.
func (s *AuditLogService) WriteAuditLog(message string, actorID *uuid.UUID, projectID *uuid.UUID) {
	entry := &AuditLog{
		ActorID:   actorID,
		ProjectID: projectID,
		Message:   message,
		CreatedAt: s.now(),
	}

	if err := s.store.Create(entry); err != nil {
		s.logger.Error("failed to write audit log", "error", err, "message", message)
	}
}

func (s *AuditLogService) GetGlobalAuditLogs(
	user *user_models.User,
	request *GetAuditLogsRequest,
) (*GetAuditLogsResponse, error) {
	if !user.Role.IsInstanceAdmin() {
		return nil, ErrGlobalLogsForbidden
	}

	filter := AuditLogFilter{Before: request.Before}

	page, err := s.listPage(filter, request.Limit)
	if err != nil {
		return nil, err
	}

	total, err := s.store.Count(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count audit logs: %w", err)
	}
	page.Total = &total

	return page, nil
}

// GetUserAuditLogs lets users read their own trail; admins may read anyone's.
func (s *AuditLogService) GetUserAuditLogs(
	targetUserID uuid.UUID,
	user *user_models.User,
	request *GetAuditLogsRequest,
) (*GetAuditLogsResponse, error) {
	if !user.Role.IsInstanceAdmin() && user.ID != targetUserID {
		return nil, ErrUserLogsForbidden
	}

	return s.listPage(AuditLogFilter{ActorID: &targetUserID, Before: request.Before}, request.Limit)
}

// GetProjectAuditLogs expects the caller to have checked project access.
func (s *AuditLogService) GetProjectAuditLogs(
	projectID uuid.UUID,
	request *GetAuditLogsRequest,
) (*GetAuditLogsResponse, error) {
	return s.listPage(AuditLogFilter{ProjectID: &projectID, Before: request.Before}, request.Limit)
}

// listPage reads one extra row to learn whether an older page exists.
func (s *AuditLogService) listPage(filter AuditLogFilter, requested int) (*GetAuditLogsResponse, error) {
	limit := requested
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}

	entries, err := s.store.List(filter, limit+1)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}

	hasMore := len(entries) > limit
	if hasMore {
		entries = entries[:limit]
	}

	return &GetAuditLogsResponse{
		AuditLogs: entries,
		HasMore:   hasMore,
		Limit:     limit,
	}, nil
}
