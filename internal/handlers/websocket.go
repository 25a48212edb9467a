package handlers

import (
	"github.com/chachabrian/carrental-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// WebSocketHandler subscribes the connection to availability events,
// optionally narrowed to a single car with ?carId=.
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		services.HandleWebSocket(hub, c.Writer, c.Request, c.Query("carId"))
	}
}
