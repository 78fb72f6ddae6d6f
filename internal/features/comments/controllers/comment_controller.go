package comments_controllers

import (
	"errors"
	"net/http"

	comments_dto "untitledone/internal/features/comments/dto"
	comments_services "untitledone/internal/features/comments/services"
	users_middleware "untitledone/internal/features/users/middleware"
	"untitledone/internal/util/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CommentController struct {
	commentService *comments_services.CommentService
}

func NewCommentController(commentService *comments_services.CommentService) *CommentController {
	return &CommentController{commentService: commentService}
}

func (c *CommentController) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/projects/:id/comments", c.CreateComment)
	router.GET("/projects/:id/comments", c.ListComments)

	commentRoutes := router.Group("/comments")
	commentRoutes.PUT("/:id", c.UpdateComment)
	commentRoutes.PATCH("/:id/resolve", c.ResolveComment)
	commentRoutes.DELETE("/:id", c.DeleteComment)
}

// CreateComment
// @Summary Create a comment
// @Description Mentioned project members are notified. Unknown or non-member usernames are ignored
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param request body comments_dto.CreateCommentRequestDTO true "Comment data"
// @Success 201 {object} comments_dto.CommentResponseDTO
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /projects/{id}/comments [post]
func (c *CommentController) CreateComment(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	var request comments_dto.CreateCommentRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validation.FormatValidationError(err)})
		return
	}

	response, err := c.commentService.CreateComment(ctx.Request.Context(), projectID, &request, user)
	if err != nil {
		respondWithCommentError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, response)
}

// ListComments
// @Summary List project comments
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {object} comments_dto.ListCommentsResponseDTO
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /projects/{id}/comments [get]
func (c *CommentController) ListComments(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	response, err := c.commentService.GetProjectComments(ctx.Request.Context(), projectID, user)
	if err != nil {
		respondWithCommentError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// UpdateComment
// @Summary Edit a comment
// @Description Only the author may edit. Newly added mentions are notified
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Param request body comments_dto.UpdateCommentRequestDTO true "New body"
// @Success 200 {object} comments_dto.CommentResponseDTO
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /comments/{id} [put]
func (c *CommentController) UpdateComment(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	commentID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return
	}

	var request comments_dto.UpdateCommentRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validation.FormatValidationError(err)})
		return
	}

	response, err := c.commentService.UpdateComment(ctx.Request.Context(), commentID, &request, user)
	if err != nil {
		respondWithCommentError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// ResolveComment
// @Summary Resolve or reopen a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Param request body comments_dto.ResolveCommentRequestDTO true "Resolved flag"
// @Success 200 {object} comments_models.Comment
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /comments/{id}/resolve [patch]
func (c *CommentController) ResolveComment(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	commentID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return
	}

	var request comments_dto.ResolveCommentRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validation.FormatValidationError(err)})
		return
	}

	comment, err := c.commentService.ResolveComment(ctx.Request.Context(), commentID, *request.Resolved, user)
	if err != nil {
		respondWithCommentError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, comment)
}

// DeleteComment
// @Summary Delete a comment
// @Description Allowed for the author and the project owner. Replies are deleted too
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 200 {object} comments_dto.DeleteCommentResponseDTO
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /comments/{id} [delete]
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	commentID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return
	}

	if err := c.commentService.DeleteComment(ctx.Request.Context(), commentID, user); err != nil {
		respondWithCommentError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, comments_dto.DeleteCommentResponseDTO{Success: true})
}

func respondWithCommentError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, comments_services.ErrCommentNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, comments_services.ErrParentCommentNotFound):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, comments_services.ErrCommentAccessDenied):
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, comments_services.ErrNotCommentAuthor),
		errors.Is(err, comments_services.ErrResolveDenied),
		errors.Is(err, comments_services.ErrDeleteDenied):
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
