package share_links_controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	share_links_dto "untitledone/internal/features/share_links/dto"
	share_links_enums "untitledone/internal/features/share_links/enums"
	share_links_services "untitledone/internal/features/share_links/services"
	users_middleware "untitledone/internal/features/users/middleware"
	"untitledone/internal/util/rate_limit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RedemptionLimiter interface {
	CheckRateLimit(ctx context.Context, subject string) (*rate_limit.RateLimitResult, error)
}

type ShareLinkController struct {
	shareLinkService *share_links_services.ShareLinkService
	limiter          RedemptionLimiter
	siteOrigin       string
	logger           *slog.Logger
}

func NewShareLinkController(
	shareLinkService *share_links_services.ShareLinkService,
	limiter RedemptionLimiter,
	siteOrigin string,
	logger *slog.Logger,
) *ShareLinkController {
	return &ShareLinkController{
		shareLinkService: shareLinkService,
		limiter:          limiter,
		siteOrigin:       siteOrigin,
		logger:           logger,
	}
}

func (c *ShareLinkController) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/projects/:id/share-links", c.IssueShareLink)
	router.GET("/projects/:id/share-links", c.ListShareLinks)
	router.DELETE("/share-links/:id", c.RevokeShareLink)
}

// RegisterPublicRoutes mounts redemption, which must also serve signed out visitors.
func (c *ShareLinkController) RegisterPublicRoutes(
	router *gin.RouterGroup,
	authenticator users_middleware.TokenAuthenticator,
) {
	router.GET("/share/:token", users_middleware.OptionalAuthMiddleware(authenticator), c.RedeemShareLink)
}

// IssueShareLink
// @Summary Create a temporary share link
// @Description Single use, valid for one hour, grants viewer access. At most 3 active links per project
// @Tags share-links
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 201 {object} share_links_dto.IssueShareLinkResponseDTO
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /projects/{id}/share-links [post]
func (c *ShareLinkController) IssueShareLink(ctx *gin.Context) {
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

	response, err := c.shareLinkService.IssueShareLink(ctx.Request.Context(), projectID, user)
	if err != nil {
		respondWithShareLinkError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, response)
}

// ListShareLinks
// @Summary List share links of a project
// @Tags share-links
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {array} share_links_dto.ShareLinkDTO
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /projects/{id}/share-links [get]
func (c *ShareLinkController) ListShareLinks(ctx *gin.Context) {
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

	links, err := c.shareLinkService.GetProjectShareLinks(ctx.Request.Context(), projectID, user)
	if err != nil {
		respondWithShareLinkError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, links)
}

// RevokeShareLink
// @Summary Revoke a share link
// @Tags share-links
// @Produce json
// @Security BearerAuth
// @Param id path string true "Share link ID"
// @Success 200 {object} share_links_dto.RevokeShareLinkResponseDTO
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /share-links/{id} [delete]
func (c *ShareLinkController) RevokeShareLink(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	linkID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid share link ID"})
		return
	}

	if err := c.shareLinkService.RevokeShareLink(ctx.Request.Context(), linkID, user); err != nil {
		respondWithShareLinkError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, share_links_dto.RevokeShareLinkResponseDTO{Success: true})
}

// RedeemShareLink
// @Summary Redeem a share link
// @Description Redirects to the project on success, to the login page when signed out and to the share error page with a reason otherwise
// @Tags share-links
// @Param token path string true "Share token"
// @Success 302
// @Router /share/{token} [get]
func (c *ShareLinkController) RedeemShareLink(ctx *gin.Context) {
	token := ctx.Param("token")

	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.Redirect(http.StatusFound, c.siteOrigin+"/login?next=/share/"+url.QueryEscape(token))
		return
	}

	if c.limiter != nil {
		result, err := c.limiter.CheckRateLimit(ctx.Request.Context(), user.ID.String())
		if err != nil {
			c.logger.Warn("share link rate limit check failed", "error", err, "userId", user.ID)
		} else if !result.Allowed {
			c.redirectToError(ctx, share_links_enums.RedemptionRateLimited)
			return
		}
	}

	projectID, err := c.shareLinkService.RedeemShareLink(ctx.Request.Context(), token, user)
	if err != nil {
		var redemptionErr *share_links_services.RedemptionError
		if errors.As(err, &redemptionErr) {
			c.redirectToError(ctx, redemptionErr.Reason)
			return
		}

		c.logger.Error("share link redemption failed", "error", err, "userId", user.ID)
		c.redirectToError(ctx, share_links_enums.RedemptionInternalError)
		return
	}

	ctx.Redirect(http.StatusFound, c.siteOrigin+"/projects/"+projectID.String())
}

func (c *ShareLinkController) redirectToError(ctx *gin.Context, reason share_links_enums.RedemptionFailure) {
	ctx.Redirect(http.StatusFound, c.siteOrigin+"/share/error?reason="+url.QueryEscape(string(reason)))
}

func respondWithShareLinkError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, share_links_services.ErrShareLinkNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, share_links_services.ErrShareAccessDenied),
		errors.Is(err, share_links_services.ErrRevokeDenied):
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, share_links_services.ErrActiveLinkLimit):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
