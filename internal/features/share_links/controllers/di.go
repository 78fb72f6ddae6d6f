package share_links_controllers

import (
	"sync"

	"untitledone/internal/cache"
	"untitledone/internal/config"
	share_links_services "untitledone/internal/features/share_links/services"
	"untitledone/internal/util/logger"
	"untitledone/internal/util/rate_limit"
)

var (
	shareLinkController     *ShareLinkController
	shareLinkControllerOnce sync.Once
)

func GetShareLinkController() *ShareLinkController {
	shareLinkControllerOnce.Do(func() {
		shareLinkController = NewShareLinkController(
			share_links_services.GetShareLinkService(),
			rate_limit.NewRateLimiter(cache.GetCache(), "share_redeem", rate_limit.Limit{PerMinute: 10, Burst: 10}),
			config.GetEnv().SiteOrigin,
			logger.GetLogger(),
		)
	})

	return shareLinkController
}
