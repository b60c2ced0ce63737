package api

import (
	"Mnemo/internal/config"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all the routes for the memory service.
func RegisterRoutes(router *gin.Engine, api *API, mwCfg config.MiddlewareConfig) {
	router.GET("/health", api.HealthHandler)

	v1 := router.Group("/api/v1")
	if mwCfg.RateLimiter.Enabled {
		v1.Use(RateLimitMiddleware(mwCfg.RateLimiter))
	}
	{
		memories := v1.Group("/memories")
		{
			memories.POST("", api.StoreMemoryHandler)
			memories.POST("/batch", api.StoreBatchHandler)
		}

		users := v1.Group("/users/:user_id")
		{
			users.GET("/memories", api.ListMemoriesHandler)
			users.DELETE("/memories/:memory_id", api.DeleteMemoryHandler)
			users.POST("/reconcile", api.ReconcileHandler)
		}
	}
}
