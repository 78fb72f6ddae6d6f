package audit_logs

import (
	"sync"

	users_services "untitledone/internal/features/users/services"
	"untitledone/internal/util/logger"
)

var (
	auditLogRepository = &AuditLogRepository{}

	auditLogService     *AuditLogService
	auditLogController  *AuditLogController
	auditLogServiceOnce sync.Once
)

func GetAuditLogService() *AuditLogService {
	auditLogServiceOnce.Do(func() {
		auditLogService = NewAuditLogService(auditLogRepository, logger.GetLogger())
		auditLogController = &AuditLogController{auditLogService: auditLogService}
	})

	return auditLogService
}

func GetAuditLogController() *AuditLogController {
	GetAuditLogService()
	return auditLogController
}

func SetupDependencies() {
	users_services.SetAuditLogWriter(GetAuditLogService())
}
