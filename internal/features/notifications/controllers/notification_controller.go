package notifications_controllers

import (
	"errors"
	"net/http"

	notifications_dto "untitledone/internal/features/notifications/dto"
	notifications_services "untitledone/internal/features/notifications/services"
	users_middleware "untitledone/internal/features/users/middleware"
	"untitledone/internal/util/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const nextCursorHeader = "X-Next-Cursor"

type NotificationController struct {
	notificationService *notifications_services.NotificationService
}

func NewNotificationController(notificationService *notifications_services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

func (c *NotificationController) RegisterRoutes(router *gin.RouterGroup) {
	notificationRoutes := router.Group("/notifications")

	notificationRoutes.GET("", c.ListNotifications)
	notificationRoutes.GET("/unread-count", c.GetUnreadCount)
	notificationRoutes.PATCH("/mark-all-read", c.MarkAllRead)
	notificationRoutes.GET("/preferences", c.GetPreferences)
	notificationRoutes.PUT("/preferences", c.UpdatePreferences)
	notificationRoutes.PATCH("/:id", c.MarkRead)
}

// ListNotifications
// @Summary List notifications
// @Description Newest first. The cursor of the next page is returned in the X-Next-Cursor header
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param filter query string false "all, unread or read"
// @Param limit query int false "Page size, 1 to 100"
// @Param cursor query string false "Cursor from a previous page"
// @Success 200 {array} notifications_models.Notification
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /notifications [get]
func (c *NotificationController) ListNotifications(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var request notifications_dto.ListNotificationsRequestDTO
	if err := ctx.ShouldBindQuery(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validation.FormatValidationError(err)})
		return
	}

	page, err := c.notificationService.ListNotifications(ctx.Request.Context(), user.ID, &request)
	if err != nil {
		respondWithNotificationError(ctx, err)
		return
	}

	if page.NextCursor != "" {
		ctx.Header(nextCursorHeader, page.NextCursor)
	}

	ctx.JSON(http.StatusOK, page.Notifications)
}

// GetUnreadCount
// @Summary Count unread notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} notifications_dto.UnreadCountResponseDTO
// @Failure 401 {object} map[string]string
// @Router /notifications/unread-count [get]
func (c *NotificationController) GetUnreadCount(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	count, err := c.notificationService.GetUnreadCount(ctx.Request.Context(), user.ID)
	if err != nil {
		respondWithNotificationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, notifications_dto.UnreadCountResponseDTO{Count: count})
}

// MarkRead
// @Summary Mark a notification read or unread
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Param request body notifications_dto.MarkReadRequestDTO true "Read state"
// @Success 200 {object} notifications_models.Notification
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /notifications/{id} [patch]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	notificationID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	var request notifications_dto.MarkReadRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validation.FormatValidationError(err)})
		return
	}

	notification, err := c.notificationService.MarkRead(ctx.Request.Context(), user.ID, notificationID, *request.IsRead)
	if err != nil {
		respondWithNotificationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, notification)
}

// MarkAllRead
// @Summary Mark every visible notification read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} notifications_dto.MarkAllReadResponseDTO
// @Failure 401 {object} map[string]string
// @Router /notifications/mark-all-read [patch]
func (c *NotificationController) MarkAllRead(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	count, err := c.notificationService.MarkAllRead(ctx.Request.Context(), user.ID)
	if err != nil {
		respondWithNotificationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, notifications_dto.MarkAllReadResponseDTO{Success: true, Count: count})
}

// GetPreferences
// @Summary Get notification preferences
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} notifications_models.NotificationPreferences
// @Failure 401 {object} map[string]string
// @Router /notifications/preferences [get]
func (c *NotificationController) GetPreferences(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	preferences, err := c.notificationService.GetPreferences(ctx.Request.Context(), user.ID)
	if err != nil {
		respondWithNotificationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, preferences)
}

// UpdatePreferences
// @Summary Update notification preferences
// @Description Only the fields present in the body are changed
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body notifications_dto.UpdatePreferencesRequestDTO true "Preference changes"
// @Success 200 {object} notifications_models.NotificationPreferences
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /notifications/preferences [put]
func (c *NotificationController) UpdatePreferences(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var request notifications_dto.UpdatePreferencesRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validation.FormatValidationError(err)})
		return
	}

	preferences, err := c.notificationService.UpdatePreferences(ctx.Request.Context(), user.ID, &request)
	if err != nil {
		respondWithNotificationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, preferences)
}

func respondWithNotificationError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, notifications_services.ErrNotificationNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, notifications_services.ErrInvalidCursor):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
