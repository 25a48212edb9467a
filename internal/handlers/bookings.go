package handlers

import (
	"net/http"

	"github.com/chachabrian/carrental-backend/internal/models"
	"github.com/chachabrian/carrental-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// CreateBooking handles POST /api/bookings
func CreateBooking(engine *services.BookingEngine) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, authed := caller(c)
		if !authed {
			return
		}

		var input models.BookingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			fail(c, http.StatusBadRequest, "Validation failed", "Car ID is required")
			return
		}

		booking, err := engine.Create(c.Request.Context(), input.CarID, id)
		if err != nil {
			respondError(c, err, "Failed to create booking")
			return
		}
		respond(c, http.StatusCreated, booking, "Booking created successfully")
	}
}

// CarBookingStatus reports whether a car is currently booked. data is
// null when it is not.
func CarBookingStatus(engine *services.BookingEngine) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, err := engine.CarStatus(c.Request.Context(), c.Param("carId"))
		if err != nil {
			respondError(c, err, "Failed to check booking status")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"isBooked": status.IsBooked,
			"data":     status.Booking,
		})
	}
}

func UserBookings(engine *services.BookingEngine) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, authed := caller(c)
		if !authed {
			return
		}

		bookings, err := engine.UserBookings(c.Request.Context(), id, c.Param("email"))
		if err != nil {
			respondError(c, err, "Failed to fetch bookings")
			return
		}
		okList(c, bookings)
	}
}
