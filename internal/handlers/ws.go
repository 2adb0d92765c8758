package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/speeddate-dev/speeddate/internal/logging"
	"github.com/speeddate-dev/speeddate/internal/realtime"
	"github.com/speeddate-dev/speeddate/internal/types"
	"github.com/speeddate-dev/speeddate/internal/utils"
)

// WebSocket upgrades a signed-in request and hands the connection to the hub.
// Clients then join event rooms with join_events / join_event frames.
func (h *Handler) WebSocket(c *gin.Context) {
	identity, err := utils.GetCurrentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": types.MsgUnauthorized})
		return
	}

	if h.hub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Realtime updates are unavailable"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Warn().Err(err).Uint("user_id", identity.UserID).Msg("websocket upgrade failed")
		return
	}

	realtime.NewClient(h.hub, conn, identity.UserID).Run()
}
