package notifications_controllers

import (
	"sync"

	notifications_services "untitledone/internal/features/notifications/services"
)

var (
	notificationController *NotificationController
	controllerOnce         sync.Once
)

func GetNotificationController() *NotificationController {
	controllerOnce.Do(func() {
		notificationController = NewNotificationController(notifications_services.GetNotificationService())
	})

	return notificationController
}
