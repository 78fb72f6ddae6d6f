package share_links_services

import (
	"sync"

	"untitledone/internal/config"
	audit_logs "untitledone/internal/features/audit_logs"
	projects_services "untitledone/internal/features/projects/services"
	share_links_repositories "untitledone/internal/features/share_links/repositories"
	"untitledone/internal/util/logger"
)

var (
	shareLinkRepository = &share_links_repositories.ShareLinkRepository{}

	shareLinkService     *ShareLinkService
	shareLinkServiceOnce sync.Once
)

func GetShareLinkService() *ShareLinkService {
	shareLinkServiceOnce.Do(func() {
		shareLinkService = NewShareLinkService(
			shareLinkRepository,
			projects_services.GetProjectService(),
			projects_services.GetMembershipService(),
			audit_logs.GetAuditLogService(),
			config.GetEnv().SiteOrigin,
			logger.GetLogger(),
		)
	})

	return shareLinkService
}
