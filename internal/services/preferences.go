package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"gorm.io/datatypes"

	"github.com/dumpling2/steam-game-suggester/internal/logger"
	"github.com/dumpling2/steam-game-suggester/internal/repos"
	"github.com/dumpling2/steam-game-suggester/internal/types"
)

// PreferenceConfig carries the learning-model tuning constants. The
// defaults are empirically chosen product values, kept configurable on
// purpose.
type PreferenceConfig struct {
	RatingDeltaFactor float64
	RecommendNudge    float64
	TopGenres         int
	FallbackMinRating float64
	SimilarityWeights repos.SimilarityWeights
}

func DefaultPreferenceConfig() PreferenceConfig {
	return PreferenceConfig{
		RatingDeltaFactor: 0.3,
		RecommendNudge:    0.1,
		TopGenres:         3,
		FallbackMinRating: 4.0,
		SimilarityWeights: repos.SimilarityWeights{Genre: 3, Rating: 2, Year: 1},
	}
}

type UserStats struct {
	FavoriteGenres   []types.GenrePreference `json:"favorite_genres"`
	RecentRatings    []types.GameRating      `json:"recent_ratings"`
	GamesViewed      int                     `json:"games_viewed"`
	GamesRecommended int                     `json:"games_recommended"`
}

type PreferenceService interface {
	RecordInteraction(ctx context.Context, userID, username string, game *types.Game, action types.Action, rating *int) error
	NudgeGenre(ctx context.Context, userID, genre string, delta float64) error
	GetProfile(ctx context.Context, userID string) (*types.UserProfile, error)
	GetGenrePreferences(ctx context.Context, userID string) ([]types.GenrePreference, error)
	GetRatings(ctx context.Context, userID string, limit int) ([]types.GameRating, error)
	GetHistory(ctx context.Context, userID string, action types.Action, limit int) ([]types.InteractionEvent, error)
	GetRecommendedGames(ctx context.Context, userID string, limit int) ([]types.GameFeatures, error)
	GetSimilarGames(ctx context.Context, gameID, limit int) ([]types.GameFeatures, error)
	GetUserStats(ctx context.Context, userID string) (*UserStats, error)
}

type preferenceService struct {
	cfg      PreferenceConfig
	users    repos.UserRepo
	prefs    repos.GenrePreferenceRepo
	ratings  repos.GameRatingRepo
	history  repos.HistoryRepo
	features repos.GameFeaturesRepo
	log      *logger.Logger
}

func NewPreferenceService(
	cfg PreferenceConfig,
	users repos.UserRepo,
	prefs repos.GenrePreferenceRepo,
	ratings repos.GameRatingRepo,
	history repos.HistoryRepo,
	features repos.GameFeaturesRepo,
	baseLog *logger.Logger,
) PreferenceService {
	return &preferenceService{
		cfg:      cfg,
		users:    users,
		prefs:    prefs,
		ratings:  ratings,
		history:  history,
		features: features,
		log:      baseLog.With("service", "PreferenceService"),
	}
}

var yearPattern = regexp.MustCompile(`\b(\d{4})\b`)

func releaseYear(date string) int {
	m := yearPattern.FindStringSubmatch(date)
	if m == nil {
		return 0
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return year
}

// RecordInteraction is the single write path for the learning model:
// profile upsert, one history row, an opportunistic feature snapshot,
// and the preference-score adjustments. An explicit rating is a strong
// signal, (rating - 3) * factor per genre; a plain "recommended"
// exposure is a weak one, +nudge per genre. Storage errors propagate to
// the caller, which decides whether they are fatal.
func (s *preferenceService) RecordInteraction(ctx context.Context, userID, username string, game *types.Game, action types.Action, rating *int) error {
	if game == nil {
		return fmt.Errorf("record interaction: game is required")
	}

	if err := s.users.Upsert(ctx, nil, userID, username); err != nil {
		return fmt.Errorf("upsert user profile: %w", err)
	}

	event := &types.InteractionEvent{
		UserID:   userID,
		GameID:   game.AppID,
		GameName: game.Name,
		Action:   action,
	}
	if err := s.history.Append(ctx, nil, event); err != nil {
		return fmt.Errorf("append interaction history: %w", err)
	}

	if len(game.Genres) > 0 {
		if err := s.saveFeatures(ctx, game); err != nil {
			return fmt.Errorf("save game features: %w", err)
		}
	}

	if rating != nil {
		if *rating < 1 || *rating > 5 {
			return fmt.Errorf("rating %d out of range 1-5", *rating)
		}
		if err := s.ratings.Upsert(ctx, nil, userID, game.AppID, game.Name, *rating); err != nil {
			return fmt.Errorf("upsert rating: %w", err)
		}
		delta := float64(*rating-3) * s.cfg.RatingDeltaFactor
		for _, genre := range game.Genres {
			if err := s.prefs.AdjustScore(ctx, nil, userID, genre, delta); err != nil {
				return fmt.Errorf("adjust genre score: %w", err)
			}
		}
	} else if action == types.ActionRecommended {
		for _, genre := range game.Genres {
			if err := s.prefs.AdjustScore(ctx, nil, userID, genre, s.cfg.RecommendNudge); err != nil {
				return fmt.Errorf("adjust genre score: %w", err)
			}
		}
	}

	s.log.Info("Recorded user interaction",
		"user_id", userID,
		"action", action,
		"game_id", game.AppID,
		"rated", rating != nil,
	)
	return nil
}

func (s *preferenceService) saveFeatures(ctx context.Context, game *types.Game) error {
	genres, err := json.Marshal(game.Genres)
	if err != nil {
		return err
	}
	tags := game.Tags
	if tags == nil {
		tags = []string{}
	}
	rawTags, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	return s.features.Upsert(ctx, nil, &types.GameFeatures{
		GameID:      game.AppID,
		GameName:    game.Name,
		Genres:      datatypes.JSON(genres),
		Tags:        datatypes.JSON(rawTags),
		Rating:      game.Rating,
		ReleaseYear: releaseYear(game.ReleaseDate),
	})
}

func (s *preferenceService) NudgeGenre(ctx context.Context, userID, genre string, delta float64) error {
	return s.prefs.AdjustScore(ctx, nil, userID, genre, delta)
}

// GetProfile returns (nil, nil) for a user who has never interacted.
func (s *preferenceService) GetProfile(ctx context.Context, userID string) (*types.UserProfile, error) {
	return s.users.GetByID(ctx, nil, userID)
}

func (s *preferenceService) GetGenrePreferences(ctx context.Context, userID string) ([]types.GenrePreference, error) {
	return s.prefs.ListByUser(ctx, nil, userID)
}

func (s *preferenceService) GetRatings(ctx context.Context, userID string, limit int) ([]types.GameRating, error) {
	return s.ratings.ListRecentByUser(ctx, nil, userID, limit)
}

func (s *preferenceService) GetHistory(ctx context.Context, userID string, action types.Action, limit int) ([]types.InteractionEvent, error) {
	return s.history.ListRecentByUser(ctx, nil, userID, action, limit)
}

// GetRecommendedGames is the personalization query. A user without
// genre preferences gets the generic high-rated fallback set; everyone
// else gets cached games matching any of their top genres, minus
// everything they have already rated.
func (s *preferenceService) GetRecommendedGames(ctx context.Context, userID string, limit int) ([]types.GameFeatures, error) {
	prefs, err := s.prefs.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	if len(prefs) == 0 {
		return s.features.ListHighRatedExcludingRated(ctx, nil, userID, s.cfg.FallbackMinRating, limit)
	}

	top := prefs
	if len(top) > s.cfg.TopGenres {
		top = top[:s.cfg.TopGenres]
	}
	genres := make([]string, 0, len(top))
	for _, p := range top {
		genres = append(genres, p.Genre)
	}
	return s.features.ListByGenresExcludingRated(ctx, nil, userID, genres, limit)
}

func (s *preferenceService) GetSimilarGames(ctx context.Context, gameID, limit int) ([]types.GameFeatures, error) {
	target, err := s.features.GetByID(ctx, nil, gameID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, nil
	}
	return s.features.ListSimilar(ctx, nil, target, s.cfg.SimilarityWeights, limit)
}

func (s *preferenceService) GetUserStats(ctx context.Context, userID string) (*UserStats, error) {
	prefs, err := s.prefs.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	ratings, err := s.ratings.ListRecentByUser(ctx, nil, userID, 20)
	if err != nil {
		return nil, err
	}
	history, err := s.history.ListRecentByUser(ctx, nil, userID, "", 50)
	if err != nil {
		return nil, err
	}

	if len(prefs) > 5 {
		prefs = prefs[:5]
	}
	stats := &UserStats{
		FavoriteGenres: prefs,
		RecentRatings:  ratings,
	}
	for _, h := range history {
		switch h.Action {
		case types.ActionViewed:
			stats.GamesViewed++
		case types.ActionRecommended:
			stats.GamesRecommended++
		}
	}
	return stats, nil
}
