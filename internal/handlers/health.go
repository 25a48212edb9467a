package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports liveness and whether the database answers.
func Health(db Pinger, env string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status, database := http.StatusOK, "connected"
		if db == nil || db.Ping(ctx) != nil {
			status, database = http.StatusServiceUnavailable, "disconnected"
		}

		c.JSON(status, gin.H{
			"success":   status == http.StatusOK,
			"status":    http.StatusText(status),
			"message":   "Server is running",
			"database":  database,
			"env":       env,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func Index() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Car Rental API",
			"endpoints": gin.H{
				"health":   "/api/health",
				"cars":     "/api/cars",
				"bookings": "/api/bookings",
				"ws":       "/api/ws",
			},
		})
	}
}

// NotFound answers unknown routes.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		fail(c, http.StatusNotFound, "Route not found")
	}
}
