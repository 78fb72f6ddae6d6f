package projects_services

import (
	"sync"

	"untitledone/internal/cache"
	"untitledone/internal/features/audit_logs"
	projects_models "untitledone/internal/features/projects/models"
	projects_repositories "untitledone/internal/features/projects/repositories"
	users_services "untitledone/internal/features/users/services"
	cache_utils "untitledone/internal/util/cache"
)

var (
	projectRepository    = &projects_repositories.ProjectRepository{}
	membershipRepository = &projects_repositories.MembershipRepository{}

	projectService    *ProjectService
	membershipService *MembershipService
	servicesOnce      sync.Once
)

func initServices() {
	servicesOnce.Do(func() {
		projectService = NewProjectService(
			projectRepository,
			membershipRepository,
			audit_logs.GetAuditLogService(),
			cache_utils.NewCacheUtil[projects_models.Project](cache.GetCache(), "uo_project:"),
		)

		membershipService = NewMembershipService(
			membershipRepository,
			users_services.GetUserRepository(),
			audit_logs.GetAuditLogService(),
			projectService,
		)
	})
}

func GetProjectService() *ProjectService {
	initServices()
	return projectService
}

func GetMembershipService() *MembershipService {
	initServices()
	return membershipService
}
