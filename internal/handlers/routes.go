package handlers

import (
	"github.com/chachabrian/carrental-backend/internal/middleware"
	"github.com/chachabrian/carrental-backend/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps is everything the HTTP layer needs. Verifier may be nil, in which
// case protected routes answer 503. Storage and Hub may be nil to leave
// their routes out.
type Deps struct {
	Catalog     *services.CarCatalog
	Bookings    *services.BookingEngine
	Storage     *services.Storage
	Hub         *services.Hub
	DB          Pinger
	Verifier    services.TokenVerifier
	Env         string
	CORSOrigins []string
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	config := cors.DefaultConfig()
	config.AllowOrigins = d.CORSOrigins
	config.AllowCredentials = true
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	r.Use(cors.New(config))

	if d.Storage != nil && !d.Storage.IsUsingS3() {
		r.Static("/uploads", d.Storage.UploadDir())
	}

	auth := middleware.AuthMiddleware(d.Verifier)

	r.GET("/", Index())
	api := r.Group("/api")
	{
		api.GET("/health", Health(d.DB, d.Env))
		if d.Hub != nil {
			api.GET("/ws", WebSocketHandler(d.Hub))
		}

		cars := api.Group("/cars")
		{
			cars.GET("", ListCars(d.Catalog))
			cars.GET("/featured", FeaturedCars(d.Catalog))
			cars.GET("/provider/:email", auth, ProviderCars(d.Catalog))
			cars.GET("/:id", GetCar(d.Catalog))
			cars.POST("", auth, CreateCar(d.Catalog))
			cars.PUT("/:id", auth, UpdateCar(d.Catalog))
			cars.DELETE("/:id", auth, DeleteCar(d.Catalog))
			if d.Storage != nil {
				cars.POST("/images", auth, UploadCarImage(d.Storage))
			}
		}

		bookings := api.Group("/bookings")
		{
			bookings.GET("/car/:carId", CarBookingStatus(d.Bookings))
			bookings.GET("/user/:email", auth, UserBookings(d.Bookings))
			bookings.POST("", auth, CreateBooking(d.Bookings))
		}
	}

	r.NoRoute(NotFound())
	return r
}
