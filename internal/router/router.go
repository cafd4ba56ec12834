package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mealwise/backend/internal/api"
	"github.com/mealwise/backend/internal/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth    *api.AuthHandler
	Profile *api.ProfileHandler
	Allergy *api.AllergyHandler
	Search  *api.SearchHandler
	Image   *api.ImageHandler
}

// SetupRouter configures the application routes
func SetupRouter(h Handlers, allowedOrigins []string) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORS(allowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	v1 := router.Group("/api/v1")
	h.Auth.RegisterRoutes(v1)
	h.Profile.RegisterRoutes(v1)
	h.Allergy.RegisterRoutes(v1)
	h.Search.RegisterRoutes(v1)
	if h.Image != nil {
		h.Image.RegisterRoutes(v1)
	}

	return router
}
