package app

import (
	"github.com/gin-gonic/gin"

	"github.com/dumpling2/steam-game-suggester/internal/cache"
	"github.com/dumpling2/steam-game-suggester/internal/handlers"
	"github.com/dumpling2/steam-game-suggester/internal/logger"
	"github.com/dumpling2/steam-game-suggester/internal/server"
)

type Handlers struct {
	Recommendation *handlers.RecommendationHandler
	User           *handlers.UserHandler
	Cache          *handlers.CacheHandler
}

func wireHandlers(log *logger.Logger, serviceset Services, cacheStore *cache.Store) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Recommendation: handlers.NewRecommendationHandler(log, serviceset.Recommendation),
		User:           handlers.NewUserHandler(log, serviceset.Preference),
		Cache:          handlers.NewCacheHandler(log, cacheStore),
	}
}

func wireRouter(handlerset Handlers) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		RecommendationHandler: handlerset.Recommendation,
		UserHandler:           handlerset.User,
		CacheHandler:          handlerset.Cache,
	})
}
