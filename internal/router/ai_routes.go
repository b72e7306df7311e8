package router

import (
	"github.com/labstack/echo/v4"

	"github.com/purefire/storefront-api/internal/config"
	"github.com/purefire/storefront-api/internal/middleware"
	"github.com/purefire/storefront-api/internal/model"
)

// registerAI mounts the API-key-gated machine surface.  Every route pays
// the fixed-window rate limit; the training dump additionally goes through
// the Redis response cache, and batch lookups use a stricter window.
func registerAI(api *echo.Group, d Deps) {
	rlCfg := config.LoadRateLimitConfig()
	limit := middleware.NewFixedWindow(rlCfg, d.Redis)
	strictLimit := middleware.NewFixedWindow(config.StrictRateLimitConfig(rlCfg), d.Redis)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), d.Redis)

	ai := api.Group("/ai", middleware.APIKeyAuth(d.Keys))
	ai.GET("/health", d.AI.Health, limit)
	ai.GET("/training/products", d.AI.TrainingProducts,
		middleware.RequirePermission(model.PermProductsRead), limit, cache)
	ai.POST("/query/product", d.AI.QueryProduct,
		middleware.RequirePermission(model.PermAIQuery), limit)
	ai.POST("/query/batch", d.AI.QueryBatch,
		middleware.RequirePermission(model.PermAIQuery), strictLimit)
}
