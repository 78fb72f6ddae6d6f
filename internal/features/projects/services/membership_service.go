package projects_services

import (
	"errors"
	"fmt"

	projects_dto "untitledone/internal/features/projects/dto"
	projects_interfaces "untitledone/internal/features/projects/interfaces"
	projects_models "untitledone/internal/features/projects/models"
	users_enums "untitledone/internal/features/users/enums"
	users_models "untitledone/internal/features/users/models"
	"untitledone/internal/storage"

	"github.com/google/uuid"
)

var (
	ErrMembersViewDenied      = errors.New("insufficient permissions to view project members")
	ErrManageMembersDenied    = errors.New("insufficient permissions to manage members")
	ErrOnlyOwnerManagesAdmins = errors.New("only project owner can add/manage admins")
	ErrInvalidRole            = errors.New("invalid role")
	ErrMemberNotIdentified    = errors.New("email or username is required")
	ErrUserNotFound           = errors.New("user not found")
	ErrAlreadyMember          = errors.New("user is already a member of this project")
	ErrNotMember              = errors.New("user is not a member of this project")
	ErrCannotChangeOwner      = errors.New("cannot change or remove the project owner")
)

type MembershipService struct {
	membershipRepository projects_interfaces.MembershipStore
	userFinder           projects_interfaces.UserFinder
	auditLogService      projects_interfaces.AuditLogWriter
	projectService       *ProjectService
}

func NewMembershipService(
	membershipRepository projects_interfaces.MembershipStore,
	userFinder projects_interfaces.UserFinder,
	auditLogService projects_interfaces.AuditLogWriter,
	projectService *ProjectService,
) *MembershipService {
	return &MembershipService{
		membershipRepository: membershipRepository,
		userFinder:           userFinder,
		auditLogService:      auditLogService,
		projectService:       projectService,
	}
}

func (s *MembershipService) GetMembers(
	projectID uuid.UUID,
	user *users_models.User,
) (*projects_dto.GetMembersResponseDTO, error) {
	if _, err := s.projectService.GetProjectWithCache(projectID); err != nil {
		return nil, err
	}

	canAccess, _, err := s.projectService.CanUserAccessProject(projectID, user)
	if err != nil {
		return nil, err
	}
	if !canAccess {
		return nil, ErrMembersViewDenied
	}

	members, err := s.membershipRepository.GetProjectMembers(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project members: %w", err)
	}

	membersList := make([]projects_dto.ProjectMemberResponseDTO, len(members))
	for i, member := range members {
		membersList[i] = *member
	}

	return &projects_dto.GetMembersResponseDTO{
		Members: membersList,
	}, nil
}

func (s *MembershipService) AddMember(
	projectID uuid.UUID,
	request *projects_dto.AddMemberRequestDTO,
	addedBy *users_models.User,
) (*projects_dto.ProjectMemberResponseDTO, error) {
	if err := s.validateCanManageMembership(projectID, addedBy, request.Role); err != nil {
		return nil, err
	}

	targetUser, err := s.findTargetUser(request)
	if err != nil {
		return nil, err
	}

	isMember, err := s.projectService.IsProjectMember(projectID, targetUser.ID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, ErrAlreadyMember
	}

	membership := projects_models.NewProjectMembership(projectID, targetUser.ID, request.Role, &addedBy.ID)

	if err := s.membershipRepository.CreateMembership(membership); err != nil {
		if storage.IsUniqueViolation(err) {
			return nil, ErrAlreadyMember
		}

		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	s.auditLogService.WriteAuditLog(
		fmt.Sprintf("User added to project: @%s as %s", targetUser.Username, request.Role),
		&addedBy.ID,
		&projectID,
	)

	return &projects_dto.ProjectMemberResponseDTO{
		ID:        membership.ID,
		UserID:    targetUser.ID,
		Username:  targetUser.Username,
		Name:      targetUser.Name,
		Email:     targetUser.Email,
		Role:      membership.Role,
		CreatedAt: membership.CreatedAt,
	}, nil
}

func (s *MembershipService) ChangeMemberRole(
	projectID uuid.UUID,
	memberUserID uuid.UUID,
	request *projects_dto.ChangeMemberRoleRequestDTO,
	changedBy *users_models.User,
) error {
	if err := s.validateCanManageMembership(projectID, changedBy, request.Role); err != nil {
		return err
	}

	existingMembership, err := s.getChangeableMembership(projectID, memberUserID)
	if err != nil {
		return err
	}

	if err := s.membershipRepository.UpdateMemberRole(memberUserID, projectID, request.Role); err != nil {
		return fmt.Errorf("failed to update member role: %w", err)
	}

	s.auditLogService.WriteAuditLog(
		fmt.Sprintf("Member role changed: %s from %s to %s", memberUserID, existingMembership.Role, request.Role),
		&changedBy.ID,
		&projectID,
	)

	return nil
}

// RemoveMember lets managers remove others and any member leave on their own.
func (s *MembershipService) RemoveMember(
	projectID uuid.UUID,
	memberUserID uuid.UUID,
	removedBy *users_models.User,
) error {
	if memberUserID != removedBy.ID {
		canManage, err := s.projectService.CanUserManageProject(projectID, removedBy)
		if err != nil {
			return err
		}
		if !canManage {
			return ErrManageMembersDenied
		}
	}

	if _, err := s.getChangeableMembership(projectID, memberUserID); err != nil {
		return err
	}

	if err := s.membershipRepository.RemoveMember(memberUserID, projectID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	s.auditLogService.WriteAuditLog(
		fmt.Sprintf("Member removed from project: %s", memberUserID),
		&removedBy.ID,
		&projectID,
	)

	return nil
}

// GrantViewerAccess adds userID as VIEWER unless they already own or belong to
// the project. It reports whether a membership row was created.
func (s *MembershipService) GrantViewerAccess(projectID uuid.UUID, userID uuid.UUID, grantedBy uuid.UUID) (bool, error) {
	isMember, err := s.projectService.IsProjectMember(projectID, userID)
	if err != nil {
		return false, err
	}
	if isMember {
		return false, nil
	}

	membership := projects_models.NewProjectMembership(projectID, userID, users_enums.ProjectRoleViewer, &grantedBy)

	if err := s.membershipRepository.CreateMembership(membership); err != nil {
		// a concurrent grant already inserted the row
		if storage.IsUniqueViolation(err) {
			return false, nil
		}

		return false, fmt.Errorf("failed to grant viewer access: %w", err)
	}

	s.auditLogService.WriteAuditLog(
		fmt.Sprintf("Viewer access granted to user %s", userID),
		&grantedBy,
		&projectID,
	)

	return true, nil
}

func (s *MembershipService) findTargetUser(request *projects_dto.AddMemberRequestDTO) (*users_models.User, error) {
	var (
		user *users_models.User
		err  error
	)

	switch {
	case request.Email != "":
		user, err = s.userFinder.GetUserByEmail(request.Email)
	case request.Username != "":
		user, err = s.userFinder.GetUserByUsername(request.Username)
	default:
		return nil, ErrMemberNotIdentified
	}

	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return user, nil
}

func (s *MembershipService) getChangeableMembership(
	projectID uuid.UUID,
	memberUserID uuid.UUID,
) (*projects_models.ProjectMembership, error) {
	project, err := s.projectService.GetProjectWithCache(projectID)
	if err != nil {
		return nil, err
	}
	if project.IsOwnedBy(memberUserID) {
		return nil, ErrCannotChangeOwner
	}

	membership, err := s.membershipRepository.GetMembershipByUserAndProject(memberUserID, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	if membership == nil {
		return nil, ErrNotMember
	}

	return membership, nil
}

func (s *MembershipService) validateCanManageMembership(
	projectID uuid.UUID,
	user *users_models.User,
	changesRoleTo users_enums.ProjectRole,
) error {
	if !changesRoleTo.IsValid() || changesRoleTo == users_enums.ProjectRoleOwner {
		return ErrInvalidRole
	}

	if _, err := s.projectService.GetProjectWithCache(projectID); err != nil {
		return err
	}

	canAccess, role, err := s.projectService.CanUserAccessProject(projectID, user)
	if err != nil {
		return err
	}
	if !canAccess || !role.CanManageMembers() {
		return ErrManageMembersDenied
	}

	if changesRoleTo == users_enums.ProjectRoleAdmin && *role != users_enums.ProjectRoleOwner {
		return ErrOnlyOwnerManagesAdmins
	}

	return nil
}
