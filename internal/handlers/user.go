package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dumpling2/steam-game-suggester/internal/logger"
	"github.com/dumpling2/steam-game-suggester/internal/services"
	"github.com/dumpling2/steam-game-suggester/internal/types"
)

type UserHandler struct {
	log     *logger.Logger
	prefSvc services.PreferenceService
}

func NewUserHandler(log *logger.Logger, prefSvc services.PreferenceService) *UserHandler {
	return &UserHandler{
		log:     log.With("handler", "UserHandler"),
		prefSvc: prefSvc,
	}
}

// GET /api/users/:id
func (h *UserHandler) GetProfile(c *gin.Context) {
	profile, err := h.prefSvc.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "profile_failed", err)
		return
	}
	if profile == nil {
		RespondError(c, http.StatusNotFound, "unknown_user", errors.New("no profile for user "+c.Param("id")))
		return
	}
	RespondOK(c, profile)
}

// GET /api/users/:id/stats
func (h *UserHandler) GetStats(c *gin.Context) {
	stats, err := h.prefSvc.GetUserStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "stats_failed", err)
		return
	}
	RespondOK(c, stats)
}

// GET /api/users/:id/preferences
func (h *UserHandler) GetPreferences(c *gin.Context) {
	prefs, err := h.prefSvc.GetGenrePreferences(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "preferences_failed", err)
		return
	}
	RespondOK(c, gin.H{"preferences": prefs})
}

// GET /api/users/:id/history?action=&limit=
func (h *UserHandler) GetHistory(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 500 {
		limit = 50
	}
	action := types.Action(c.Query("action"))
	history, err := h.prefSvc.GetHistory(c.Request.Context(), c.Param("id"), action, limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "history_failed", err)
		return
	}
	RespondOK(c, gin.H{"history": history})
}
