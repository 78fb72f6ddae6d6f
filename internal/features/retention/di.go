package retention

import (
	"sync"

	notifications_repositories "untitledone/internal/features/notifications/repositories"
	share_links_repositories "untitledone/internal/features/share_links/repositories"
	"untitledone/internal/util/logger"
)

var (
	retentionService     *RetentionBackgroundService
	retentionServiceOnce sync.Once
)

func GetRetentionBackgroundService() *RetentionBackgroundService {
	retentionServiceOnce.Do(func() {
		retentionService = NewRetentionBackgroundService(
			&share_links_repositories.ShareLinkRepository{},
			&notifications_repositories.NotificationRepository{},
			logger.GetLogger(),
		)
	})

	return retentionService
}
