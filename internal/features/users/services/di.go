package users_services

import (
	"sync"

	users_interfaces "untitledone/internal/features/users/interfaces"
	users_repositories "untitledone/internal/features/users/repositories"
)

var (
	userRepository      = &users_repositories.UserRepository{}
	secretKeyRepository = &users_repositories.SecretKeyRepository{}

	userService     *UserService
	userServiceOnce sync.Once
	auditLogWriter  users_interfaces.AuditLogWriter
)

// SetAuditLogWriter must be called before the first GetUserService call.
func SetAuditLogWriter(writer users_interfaces.AuditLogWriter) {
	auditLogWriter = writer
}

func GetUserService() *UserService {
	userServiceOnce.Do(func() {
		userService = NewUserService(userRepository, secretKeyRepository, auditLogWriter)
	})

	return userService
}

func GetUserRepository() *users_repositories.UserRepository {
	return userRepository
}
