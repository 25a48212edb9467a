package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/chachabrian/carrental-backend/internal/models"
	"github.com/chachabrian/carrental-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// carQuery reads the public listing filters. A limit that is not a
// positive integer is ignored.
func carQuery(c *gin.Context) models.CarQuery {
	q := models.CarQuery{
		Category: strings.TrimSpace(c.Query("category")),
		Search:   strings.TrimSpace(c.Query("search")),
		Sort:     c.Query("sort"),
	}
	if limit, err := strconv.ParseInt(c.Query("limit"), 10, 64); err == nil && limit > 0 {
		q.Limit = limit
	}
	return q
}

// ListCars handles GET /api/cars
func ListCars(catalog *services.CarCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		cars, err := catalog.List(c.Request.Context(), carQuery(c))
		if err != nil {
			respondError(c, err, "Failed to fetch cars")
			return
		}
		okList(c, cars)
	}
}

// FeaturedCars handles GET /api/cars/featured
func FeaturedCars(catalog *services.CarCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		cars, err := catalog.Featured(c.Request.Context())
		if err != nil {
			respondError(c, err, "Failed to fetch featured cars")
			return
		}
		okList(c, cars)
	}
}

func GetCar(catalog *services.CarCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		car, err := catalog.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err, "Failed to fetch car")
			return
		}
		respond(c, http.StatusOK, car, "")
	}
}

// ProviderCars lists the caller's own listings.
func ProviderCars(catalog *services.CarCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, authed := caller(c)
		if !authed {
			return
		}

		cars, err := catalog.ListByProvider(c.Request.Context(), id, c.Param("email"))
		if err != nil {
			respondError(c, err, "Failed to fetch provider cars")
			return
		}
		okList(c, cars)
	}
}

func CreateCar(catalog *services.CarCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, authed := caller(c)
		if !authed {
			return
		}

		var input models.CarInput
		if err := c.ShouldBindJSON(&input); err != nil {
			fail(c, http.StatusBadRequest, "Invalid request body")
			return
		}

		car, err := catalog.Create(c.Request.Context(), id, input)
		if err != nil {
			respondError(c, err, "Failed to create car listing")
			return
		}
		respond(c, http.StatusCreated, car, "Car listing created successfully")
	}
}

// UpdateCar applies a partial update; only supplied fields change.
func UpdateCar(catalog *services.CarCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, authed := caller(c)
		if !authed {
			return
		}

		var patch models.CarPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			fail(c, http.StatusBadRequest, "Invalid request body")
			return
		}

		car, err := catalog.Update(c.Request.Context(), id, c.Param("id"), patch)
		if err != nil {
			respondError(c, err, "Failed to update car listing")
			return
		}
		respond(c, http.StatusOK, car, "Car listing updated successfully")
	}
}

func DeleteCar(catalog *services.CarCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, authed := caller(c)
		if !authed {
			return
		}

		if err := catalog.Delete(c.Request.Context(), id, c.Param("id")); err != nil {
			respondError(c, err, "Failed to delete car listing")
			return
		}
		respond(c, http.StatusOK, nil, "Car listing deleted successfully")
	}
}
