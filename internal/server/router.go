package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dumpling2/steam-game-suggester/internal/handlers"
)

type RouterConfig struct {
	RecommendationHandler *handlers.RecommendationHandler
	UserHandler           *handlers.UserHandler
	CacheHandler          *handlers.CacheHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.GET("/recommend", cfg.RecommendationHandler.GetPersonalized)
		api.GET("/recommend/genre/:genre", cfg.RecommendationHandler.GetByGenre)
		api.GET("/recommend/price", cfg.RecommendationHandler.GetByPriceRange)
		api.GET("/recommend/similar/:appid", cfg.RecommendationHandler.GetSimilar)
		api.GET("/deals", cfg.RecommendationHandler.GetTopDeals)
		api.POST("/rate", cfg.RecommendationHandler.RateGame)

		api.GET("/users/:id", cfg.UserHandler.GetProfile)
		api.GET("/users/:id/stats", cfg.UserHandler.GetStats)
		api.GET("/users/:id/preferences", cfg.UserHandler.GetPreferences)
		api.GET("/users/:id/history", cfg.UserHandler.GetHistory)

		api.GET("/cache/stats", cfg.CacheHandler.GetStats)
	}

	return router
}
