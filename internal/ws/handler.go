package ws

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/middleware"
	"github.com/pokernight-labs/pokernight-backend/internal/pkg/notify"
	"github.com/rs/zerolog/log"
)

type wsHandler struct {
	hub *notify.Hub
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// RegisterRoutes mounts the realtime feed. Clients subscribe per game and
// receive ledger change events published by the coordinator and the
// settlement engine.
func RegisterRoutes(rg *gin.RouterGroup, hub *notify.Hub) {
	handler := wsHandler{hub: hub}

	routes := rg.Group("/ws")
	routes.GET("/game/:id", middleware.VerifyAuthToken, handler.serveWs)
}

func (wsh *wsHandler) serveWs(c *gin.Context) {
	gameId := c.Param("id")
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Error upgrading ws connection")
		return
	}
	defer wsh.hub.UnregisterListener(gameId, conn)

	wsh.hub.RegisterListener(gameId, conn)

	for {
		var buffer any
		if err := conn.ReadJSON(&buffer); err != nil {
			log.Warn().Err(err).Msg("Error reading ws message")
			return
		}
	}
}
