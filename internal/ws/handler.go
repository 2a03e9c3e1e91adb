package ws

import (
	"iter"
	"net/http"
	"slices"

	"sealed_rps/internal/logger"
	"sealed_rps/internal/service"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// GameIndex lists a player's games so a new connection starts watching them.
type GameIndex func(player common.Address) iter.Seq[uint64]

// HandleWS upgrades to an event stream. The token query parameter is
// optional; with it the stream follows the caller's games.
func HandleWS(hub *Hub, games GameIndex, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		var address *common.Address
		var watch []uint64

		if token := c.Query("token"); token != "" {
			addr, err := service.ParseJWT(token)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			address = &addr
			if games != nil {
				watch = slices.Collect(games(addr))
			}
		}
		all := c.Query("all") == "true"

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade error", "error", err)
			return
		}

		client := NewClient(hub, conn, address, all, watch)
		go client.Run()
	}
}
