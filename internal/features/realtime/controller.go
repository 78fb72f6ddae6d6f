package realtime

import (
	"log/slog"
	"net/http"
	"strings"

	users_middleware "untitledone/internal/features/users/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type RealtimeController struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewRealtimeController accepts upgrades from allowedOrigin only; an empty
// allowedOrigin accepts any origin.
func NewRealtimeController(hub *Hub, allowedOrigin string, logger *slog.Logger) *RealtimeController {
	return &RealtimeController{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "" || origin == "" || strings.EqualFold(origin, allowedOrigin)
			},
		},
	}
}

func (c *RealtimeController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/notifications/ws", c.Connect)
}

// Connect
// @Summary Subscribe to realtime notifications
// @Description Upgrades to a websocket that receives {"type":"notification","data":{...}} events. Browsers pass the JWT as access_token query parameter.
// @Tags notifications
// @Security BearerAuth
// @Param access_token query string false "JWT when the Authorization header cannot be set"
// @Success 101
// @Failure 401 {object} map[string]string
// @Router /notifications/ws [get]
func (c *RealtimeController) Connect(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		c.logger.Warn("websocket upgrade failed", "error", err, "userId", user.ID)
		return
	}

	NewClient(user.ID, conn, c.hub).Serve()
}
