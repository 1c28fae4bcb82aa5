package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/dumpling2/steam-game-suggester/internal/cache"
	"github.com/dumpling2/steam-game-suggester/internal/logger"
)

type CacheHandler struct {
	log   *logger.Logger
	store *cache.Store
}

func NewCacheHandler(log *logger.Logger, store *cache.Store) *CacheHandler {
	return &CacheHandler{
		log:   log.With("handler", "CacheHandler"),
		store: store,
	}
}

// GET /api/cache/stats
func (h *CacheHandler) GetStats(c *gin.Context) {
	RespondOK(c, h.store.GetStats())
}
