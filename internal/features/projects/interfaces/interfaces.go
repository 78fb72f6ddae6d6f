package projects_interfaces

import (
	projects_dto "untitledone/internal/features/projects/dto"
	projects_models "untitledone/internal/features/projects/models"
	users_enums "untitledone/internal/features/users/enums"
	users_models "untitledone/internal/features/users/models"

	"github.com/google/uuid"
)

type ProjectStore interface {
	CreateProject(project *projects_models.Project) error
	GetProjectByID(projectID uuid.UUID) (*projects_models.Project, error)
	UpdateProject(project *projects_models.Project) error
	DeleteProject(projectID uuid.UUID) error
}

type MembershipStore interface {
	CreateMembership(membership *projects_models.ProjectMembership) error
	GetMembershipByUserAndProject(userID, projectID uuid.UUID) (*projects_models.ProjectMembership, error)
	GetProjectMembers(projectID uuid.UUID) ([]*projects_dto.ProjectMemberResponseDTO, error)
	UpdateMemberRole(userID, projectID uuid.UUID, role users_enums.ProjectRole) error
	RemoveMember(userID, projectID uuid.UUID) error
	GetUserProjectRole(projectID, userID uuid.UUID) (*users_enums.ProjectRole, error)
	GetProjectsWithRolesByUserID(userRole users_enums.UserRole, userID uuid.UUID) ([]projects_dto.ProjectResponseDTO, error)
	FilterMemberUserIDs(projectID uuid.UUID, userIDs []uuid.UUID) ([]uuid.UUID, error)
	SearchMembersByUsernamePrefix(projectID uuid.UUID, prefix string, limit int) ([]projects_dto.MemberSuggestionDTO, error)
}

type UserFinder interface {
	GetUserByEmail(email string) (*users_models.User, error)
	GetUserByUsername(username string) (*users_models.User, error)
	GetUserByID(userID uuid.UUID) (*users_models.User, error)
}

type AuditLogWriter interface {
	WriteAuditLog(message string, userID *uuid.UUID, projectID *uuid.UUID)
}
