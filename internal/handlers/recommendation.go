package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dumpling2/steam-game-suggester/internal/logger"
	"github.com/dumpling2/steam-game-suggester/internal/services"
)

type RecommendationHandler struct {
	log    *logger.Logger
	recSvc services.RecommendationService
}

func NewRecommendationHandler(log *logger.Logger, recSvc services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		log:    log.With("handler", "RecommendationHandler"),
		recSvc: recSvc,
	}
}

func requireUser(c *gin.Context) (userID, username string, ok bool) {
	userID = c.Query("user_id")
	if userID == "" {
		RespondError(c, http.StatusBadRequest, "missing_user_id", errors.New("user_id query parameter is required"))
		return "", "", false
	}
	username = c.Query("username")
	if username == "" {
		username = userID
	}
	return userID, username, true
}

// GET /api/recommend?user_id=&username=
// One personalized pick, degrading to top-rated and then random.
func (h *RecommendationHandler) GetPersonalized(c *gin.Context) {
	userID, _, ok := requireUser(c)
	if !ok {
		return
	}
	game, err := h.recSvc.GetPersonalized(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, http.StatusBadGateway, "recommendation_failed", err)
		return
	}
	if game == nil {
		RespondError(c, http.StatusNotFound, "no_recommendation", errors.New("no recommendation available right now"))
		return
	}
	RespondOK(c, gin.H{"game": game})
}

// GET /api/recommend/genre/:genre?user_id=
func (h *RecommendationHandler) GetByGenre(c *gin.Context) {
	userID, _, ok := requireUser(c)
	if !ok {
		return
	}
	genre := c.Param("genre")
	game, err := h.recSvc.GetByGenre(c.Request.Context(), userID, genre)
	if err != nil {
		RespondError(c, http.StatusBadGateway, "recommendation_failed", err)
		return
	}
	if game == nil {
		RespondError(c, http.StatusNotFound, "no_recommendation", errors.New("no game found for genre "+genre))
		return
	}
	RespondOK(c, gin.H{"game": game})
}

// GET /api/recommend/price?min=0&max=10
func (h *RecommendationHandler) GetByPriceRange(c *gin.Context) {
	minPrice, err := strconv.ParseFloat(c.DefaultQuery("min", "0"), 64)
	if err != nil || minPrice < 0 {
		RespondError(c, http.StatusBadRequest, "invalid_price", errors.New("min must be a non-negative number"))
		return
	}
	maxPrice, err := strconv.ParseFloat(c.DefaultQuery("max", "0"), 64)
	if err != nil || maxPrice < minPrice {
		RespondError(c, http.StatusBadRequest, "invalid_price", errors.New("max must be a number >= min"))
		return
	}
	games, err := h.recSvc.GetByPriceRange(c.Request.Context(), minPrice, maxPrice)
	if err != nil {
		RespondError(c, http.StatusBadGateway, "recommendation_failed", err)
		return
	}
	RespondOK(c, gin.H{"games": games, "count": len(games)})
}

// GET /api/recommend/similar/:appid
func (h *RecommendationHandler) GetSimilar(c *gin.Context) {
	appID, err := strconv.Atoi(c.Param("appid"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_app_id", errors.New("appid must be an integer"))
		return
	}
	game, err := h.recSvc.GetSimilar(c.Request.Context(), appID)
	if err != nil {
		RespondError(c, http.StatusBadGateway, "recommendation_failed", err)
		return
	}
	if game == nil {
		RespondError(c, http.StatusNotFound, "no_recommendation", errors.New("no similar game known yet"))
		return
	}
	RespondOK(c, gin.H{"game": game})
}

// GET /api/deals?min_discount=50
func (h *RecommendationHandler) GetTopDeals(c *gin.Context) {
	minDiscount, err := strconv.Atoi(c.DefaultQuery("min_discount", "50"))
	if err != nil || minDiscount < 0 || minDiscount > 100 {
		RespondError(c, http.StatusBadRequest, "invalid_discount", errors.New("min_discount must be 0-100"))
		return
	}
	deals, err := h.recSvc.GetTopDeals(c.Request.Context(), minDiscount)
	if err != nil {
		RespondError(c, http.StatusBadGateway, "deals_failed", err)
		return
	}
	RespondOK(c, gin.H{"deals": deals, "count": len(deals)})
}

type rateRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	Username string `json:"username"`
	AppID    int    `json:"app_id" binding:"required"`
	GameName string `json:"game_name"`
	Rating   int    `json:"rating" binding:"required"`
}

// POST /api/rate
// Stores the rating; a rating of 4 or 5 may also return a suggestion.
func (h *RecommendationHandler) RateGame(c *gin.Context) {
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	username := req.Username
	if username == "" {
		username = req.UserID
	}
	suggestion, err := h.recSvc.RateGame(c.Request.Context(), req.UserID, username, req.AppID, req.GameName, req.Rating)
	if err != nil {
		RespondError(c, http.StatusUnprocessableEntity, "rating_failed", err)
		return
	}
	resp := gin.H{"recorded": true}
	if suggestion != nil {
		resp["suggestion"] = suggestion
	}
	RespondOK(c, resp)
}
