// internal/api/handlers/websocket_handler.go
package handlers

import (
	"net/http"

	"chemnitz-facilities-api/internal/account"
	"chemnitz-facilities-api/internal/api/middleware"
	"chemnitz-facilities-api/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin policy is enforced by the CORS middleware.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	Hub      *socket.Hub
	Accounts *account.Service
	Logger   *zap.Logger
}

// ServeWs upgrades the connection and streams the caller's favorite change
// events. Browsers cannot set headers on websocket requests, so the token
// comes in the query string.
func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		middleware.Unauthorized(c, "Token is required")
		return
	}

	user, err := h.Accounts.UserFromToken(c.Request.Context(), tokenString)
	if err != nil {
		respondError(c, err, "Failed to load user")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Warn("failed to upgrade connection", zap.Error(err))
		return
	}

	h.Hub.Serve(user.Username, conn)
}
