package users_controllers

import (
	"sync"

	users_services "untitledone/internal/features/users/services"

	"golang.org/x/time/rate"
)

var (
	userController     *UserController
	userControllerOnce sync.Once
)

func GetUserController() *UserController {
	userControllerOnce.Do(func() {
		userController = NewUserController(
			users_services.GetUserService(),
			rate.NewLimiter(rate.Limit(3), 3), // 3 RPS with burst of 3
		)
	})

	return userController
}
