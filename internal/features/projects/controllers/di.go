package projects_controllers

import (
	"sync"

	projects_services "untitledone/internal/features/projects/services"
)

var (
	projectController    *ProjectController
	membershipController *MembershipController
	controllersOnce      sync.Once
)

func initControllers() {
	controllersOnce.Do(func() {
		projectController = NewProjectController(projects_services.GetProjectService())
		membershipController = NewMembershipController(projects_services.GetMembershipService())
	})
}

func GetProjectController() *ProjectController {
	initControllers()
	return projectController
}

func GetMembershipController() *MembershipController {
	initControllers()
	return membershipController
}
