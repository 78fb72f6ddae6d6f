package notifications_services

import (
	"sync"

	"untitledone/internal/cache"
	"untitledone/internal/config"
	"untitledone/internal/features/email"
	"untitledone/internal/features/mentions"
	notifications_repositories "untitledone/internal/features/notifications/repositories"
	projects_services "untitledone/internal/features/projects/services"
	"untitledone/internal/features/realtime"
	users_services "untitledone/internal/features/users/services"
	"untitledone/internal/util/background"
	cache_utils "untitledone/internal/util/cache"
	"untitledone/internal/util/logger"
)

var (
	notificationRepository = &notifications_repositories.NotificationRepository{}
	preferencesRepository  = &notifications_repositories.PreferencesRepository{}

	notificationService *NotificationService
	notificationWriter  *NotificationWriter
	digestService       *DigestService
	servicesOnce        sync.Once
)

func initServices() {
	servicesOnce.Do(func() {
		log := logger.GetLogger()
		siteOrigin := config.GetEnv().SiteOrigin
		digestQueue := NewValkeyDigestQueue(cache_utils.NewValkeyQueueService(cache.GetCache()), log)

		notificationService = NewNotificationService(notificationRepository, preferencesRepository)

		notificationWriter = NewNotificationWriter(
			mentions.GetMentionRepository(),
			notificationRepository,
			preferencesRepository,
			users_services.GetUserRepository(),
			projects_services.GetProjectService(),
			email.GetEmailService(),
			realtime.GetPublisher(),
			digestQueue,
			background.GetRunner(),
			siteOrigin,
			log,
		)

		digestService = NewDigestService(
			digestQueue,
			notificationRepository,
			preferencesRepository,
			users_services.GetUserRepository(),
			projects_services.GetProjectService(),
			email.GetEmailService(),
			siteOrigin,
			log,
		).WithRunLock(cache_utils.NewValkeyRunLock(cache.GetCache()))
	})
}

func GetNotificationService() *NotificationService {
	initServices()
	return notificationService
}

func GetNotificationWriter() *NotificationWriter {
	initServices()
	return notificationWriter
}

func GetDigestService() *DigestService {
	initServices()
	return digestService
}
