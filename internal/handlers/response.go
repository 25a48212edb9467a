package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/chachabrian/carrental-backend/internal/middleware"
	"github.com/chachabrian/carrental-backend/internal/models"
	"github.com/chachabrian/carrental-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
	Count   *int        `json:"count,omitempty"`
}

func respond(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, Response{Success: true, Data: data, Message: message})
}

func okList[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	c.JSON(http.StatusOK, Response{Success: true, Data: items, Count: &n})
}

func fail(c *gin.Context, status int, message string, fields ...string) {
	c.JSON(status, Response{Success: false, Message: message, Errors: fields})
}

var kindStatus = map[services.Kind]int{
	services.KindValidation:      http.StatusBadRequest,
	services.KindUnauthenticated: http.StatusUnauthorized,
	services.KindForbidden:       http.StatusForbidden,
	services.KindNotFound:        http.StatusNotFound,
	services.KindConflict:        http.StatusBadRequest,
	services.KindAuthUnavailable: http.StatusServiceUnavailable,
}

// respondError translates err into the envelope. fallback is the message
// used for unexpected failures, whose details are only logged.
func respondError(c *gin.Context, err error, fallback string) {
	var se *services.Error
	if errors.As(err, &se) {
		if status, known := kindStatus[se.Kind]; known {
			fail(c, status, se.Message, se.Fields...)
			return
		}
	}
	var verrs models.ValidationErrors
	if errors.As(err, &verrs) {
		fail(c, http.StatusBadRequest, "Validation failed", verrs...)
		return
	}

	slog.ErrorContext(c.Request.Context(), fallback,
		"error", err,
		"request_id", middleware.RequestID(c),
		"path", c.FullPath(),
	)
	fail(c, http.StatusInternalServerError, fallback)
}

// caller returns the authenticated identity. Routes using it sit behind
// AuthMiddleware, so a missing identity is a wiring bug.
func caller(c *gin.Context) (models.Identity, bool) {
	id, found := middleware.CurrentIdentity(c)
	if !found {
		fail(c, http.StatusUnauthorized, "No token provided. Authorization required.")
	}
	return id, found
}
