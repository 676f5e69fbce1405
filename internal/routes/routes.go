package routes

import (
	"github.com/gin-gonic/gin"

	"emploi_backend/internal/handlers"
)

// AppHandlers bundles every HTTP handler of the application.
type AppHandlers struct {
	AuthHandler           *handlers.AuthHandler
	ProfileHandler        *handlers.ProfileHandler
	OfferHandler          *handlers.OfferHandler
	ApplicationHandler    *handlers.ApplicationHandler
	RecommendationHandler *handlers.RecommendationHandler
}

// RegisterRoutes mounts every handler under /api.
func RegisterRoutes(router *gin.Engine, appHandlers *AppHandlers) {
	api := router.Group("/api")
	{
		appHandlers.AuthHandler.RegisterRoutes(api)
		appHandlers.ProfileHandler.RegisterRoutes(api)
		appHandlers.OfferHandler.RegisterRoutes(api)
		appHandlers.ApplicationHandler.RegisterRoutes(api)
		appHandlers.RecommendationHandler.RegisterRoutes(api)
	}
}
