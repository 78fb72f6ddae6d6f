package audit_logs

import (
	"errors"
	"net/http"

	users_middleware "untitledone/internal/features/users/middleware"
	user_models "untitledone/internal/features/users/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuditLogController struct {
	auditLogService *AuditLogService
}

func (c *AuditLogController) RegisterRoutes(router *gin.RouterGroup) {
	auditRoutes := router.Group("/audit-logs")

	auditRoutes.GET("/global", c.GetGlobalAuditLogs)
	auditRoutes.GET("/me", c.GetMyAuditLogs)
	auditRoutes.GET("/users/:userId", c.GetUserAuditLogs)
}

// GetGlobalAuditLogs
// @Summary Get global audit logs (ADMIN only)
// @Description Newest first across every project and user
// @Tags audit-logs
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size" default(50)
// @Param before query string false "Only entries older than this instant (RFC3339)" format(date-time)
// @Success 200 {object} GetAuditLogsResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /audit-logs/global [get]
func (c *AuditLogController) GetGlobalAuditLogs(ctx *gin.Context) {
	c.serve(ctx, func(user *user_models.User, request *GetAuditLogsRequest) (*GetAuditLogsResponse, error) {
		return c.auditLogService.GetGlobalAuditLogs(user, request)
	})
}

// GetMyAuditLogs
// @Summary Get the caller's own audit trail
// @Tags audit-logs
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size" default(50)
// @Param before query string false "Only entries older than this instant (RFC3339)" format(date-time)
// @Success 200 {object} GetAuditLogsResponse
// @Failure 401 {object} map[string]string
// @Router /audit-logs/me [get]
func (c *AuditLogController) GetMyAuditLogs(ctx *gin.Context) {
	c.serve(ctx, func(user *user_models.User, request *GetAuditLogsRequest) (*GetAuditLogsResponse, error) {
		return c.auditLogService.GetUserAuditLogs(user.ID, user, request)
	})
}

// GetUserAuditLogs
// @Summary Get a user's audit trail (self or ADMIN)
// @Tags audit-logs
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Param limit query int false "Page size" default(50)
// @Param before query string false "Only entries older than this instant (RFC3339)" format(date-time)
// @Success 200 {object} GetAuditLogsResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /audit-logs/users/{userId} [get]
func (c *AuditLogController) GetUserAuditLogs(ctx *gin.Context) {
	targetUserID, err := uuid.Parse(ctx.Param("userId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	c.serve(ctx, func(user *user_models.User, request *GetAuditLogsRequest) (*GetAuditLogsResponse, error) {
		return c.auditLogService.GetUserAuditLogs(targetUserID, user, request)
	})
}

type auditLogFetcher func(user *user_models.User, request *GetAuditLogsRequest) (*GetAuditLogsResponse, error)

func (c *AuditLogController) serve(ctx *gin.Context, fetch auditLogFetcher) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	request := &GetAuditLogsRequest{}
	if err := ctx.ShouldBindQuery(request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	response, err := fetch(user, request)
	switch {
	case err == nil:
		ctx.JSON(http.StatusOK, response)
	case errors.Is(err, ErrGlobalLogsForbidden), errors.Is(err, ErrUserLogsForbidden):
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve audit logs"})
	}
}
