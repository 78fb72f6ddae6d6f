package projects_controllers

import (
	"net/http"

	projects_dto "untitledone/internal/features/projects/dto"
	projects_services "untitledone/internal/features/projects/services"
	users_middleware "untitledone/internal/features/users/middleware"
	users_models "untitledone/internal/features/users/models"
	"untitledone/internal/util/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MembershipController struct {
	membershipService *projects_services.MembershipService
}

func NewMembershipController(membershipService *projects_services.MembershipService) *MembershipController {
	return &MembershipController{membershipService: membershipService}
}

func (c *MembershipController) RegisterRoutes(router *gin.RouterGroup) {
	memberRoutes := router.Group("/projects/:id/members")

	memberRoutes.GET("", c.ListMembers)
	memberRoutes.POST("", c.AddMember)
	memberRoutes.PUT("/:userId/role", c.ChangeMemberRole)
	memberRoutes.DELETE("/:userId", c.RemoveMember)
}

// ListMembers
// @Summary List project members
// @Tags project-membership
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {object} projects_dto.GetMembersResponseDTO
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /projects/{id}/members [get]
func (c *MembershipController) ListMembers(ctx *gin.Context) {
	scope, ok := resolveMemberScope(ctx, false)
	if !ok {
		return
	}

	response, err := c.membershipService.GetMembers(scope.projectID, scope.caller)
	if err != nil {
		respondWithProjectError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// AddMember
// @Summary Add an existing user to the project
// @Description The user is identified by email or username
// @Tags project-membership
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param request body projects_dto.AddMemberRequestDTO true "Member addition data"
// @Success 200 {object} projects_dto.ProjectMemberResponseDTO
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /projects/{id}/members [post]
func (c *MembershipController) AddMember(ctx *gin.Context) {
	scope, ok := resolveMemberScope(ctx, false)
	if !ok {
		return
	}

	var request projects_dto.AddMemberRequestDTO
	if !bindMemberRequest(ctx, &request) {
		return
	}

	response, err := c.membershipService.AddMember(scope.projectID, &request, scope.caller)
	if err != nil {
		respondWithProjectError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// ChangeMemberRole
// @Summary Change member role
// @Tags project-membership
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param userId path string true "User ID"
// @Param request body projects_dto.ChangeMemberRoleRequestDTO true "Role change data"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /projects/{id}/members/{userId}/role [put]
func (c *MembershipController) ChangeMemberRole(ctx *gin.Context) {
	scope, ok := resolveMemberScope(ctx, true)
	if !ok {
		return
	}

	var request projects_dto.ChangeMemberRoleRequestDTO
	if !bindMemberRequest(ctx, &request) {
		return
	}

	err := c.membershipService.ChangeMemberRole(scope.projectID, scope.memberID, &request, scope.caller)
	if err != nil {
		respondWithProjectError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Member role changed successfully"})
}

// RemoveMember
// @Summary Remove member from project
// @Description Managers can remove members, any member can remove themselves
// @Tags project-membership
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param userId path string true "User ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /projects/{id}/members/{userId} [delete]
func (c *MembershipController) RemoveMember(ctx *gin.Context) {
	scope, ok := resolveMemberScope(ctx, true)
	if !ok {
		return
	}

	if err := c.membershipService.RemoveMember(scope.projectID, scope.memberID, scope.caller); err != nil {
		respondWithProjectError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Member removed successfully"})
}

// memberScope is what every membership route needs before calling the service.
type memberScope struct {
	caller    *users_models.User
	projectID uuid.UUID
	memberID  uuid.UUID
}

// resolveMemberScope writes the error response itself and reports false when
// the request cannot proceed.
func resolveMemberScope(ctx *gin.Context, withMember bool) (memberScope, bool) {
	caller, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return memberScope{}, false
	}

	projectID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return memberScope{}, false
	}

	scope := memberScope{caller: caller, projectID: projectID}
	if !withMember {
		return scope, true
	}

	if scope.memberID, err = uuid.Parse(ctx.Param("userId")); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return memberScope{}, false
	}

	return scope, true
}

func bindMemberRequest(ctx *gin.Context, request any) bool {
	if err := ctx.ShouldBindJSON(request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validation.FormatValidationError(err)})
		return false
	}

	return true
}
