package services

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dumpling2/steam-game-suggester/internal/logger"
	"github.com/dumpling2/steam-game-suggester/internal/types"
)

// CatalogAdapter is the Steam-shaped collaborator: the full app list
// and per-app store details.
type CatalogAdapter interface {
	AppList(ctx context.Context) ([]types.AppRef, error)
	AppDetails(ctx context.Context, appID int) (*types.Game, error)
	RandomApp(ctx context.Context) (*types.AppRef, error)
	SearchByName(ctx context.Context, name string) (*types.AppRef, error)
}

// MetadataAdapter is the discovery collaborator: rating-ordered search
// and resolution of a metadata record to a catalog app id.
type MetadataAdapter interface {
	TopRated(ctx context.Context, minRating float64) ([]types.ListedGame, error)
	SearchByGenre(ctx context.Context, genre string, limit int) ([]types.ListedGame, error)
	FindSteamApp(ctx context.Context, name string) (int, bool, error)
}

// DealsAdapter is the optional pricing collaborator. A disabled adapter
// returns empty results, never errors.
type DealsAdapter interface {
	Enabled() bool
	TopDeals(ctx context.Context, minDiscount int) ([]types.Deal, error)
	DealsByPriceRange(ctx context.Context, maxPrice float64, free bool) ([]types.Deal, error)
}

type RecommendationConfig struct {
	MinRating         float64
	CandidatePool     int
	HighRatedAttempts int
	RandomAttempts    int
	GenreNudge        float64
	HistoryWindow     int
	PriceBatchSize    int
	PriceMaxBatches   int
	PriceTargetCount  int
	SimilarPool       int
	SimilarPick       int
}

func DefaultRecommendationConfig() RecommendationConfig {
	return RecommendationConfig{
		MinRating:         4.0,
		CandidatePool:     20,
		HighRatedAttempts: 20,
		RandomAttempts:    3,
		GenreNudge:        0.2,
		HistoryWindow:     100,
		PriceBatchSize:    10,
		PriceMaxBatches:   5,
		PriceTargetCount:  10,
		SimilarPool:       10,
		SimilarPick:       5,
	}
}

// RecommendationService turns a user id (or none) into one chosen game.
// Every operation is stateless per call: "another recommendation" is
// just the same call again. A (nil, nil) return means the fallback
// chain was exhausted without a usable result, which callers present as
// an empty state, not a failure.
type RecommendationService interface {
	GetPersonalized(ctx context.Context, userID string) (*types.Game, error)
	GetByGenre(ctx context.Context, userID, genre string) (*types.Game, error)
	GetByPriceRange(ctx context.Context, minPrice, maxPrice float64) ([]*types.Game, error)
	GetSimilar(ctx context.Context, gameID int) (*types.Game, error)
	GetTopDeals(ctx context.Context, minDiscount int) ([]types.Deal, error)
	RecordAction(ctx context.Context, userID, username string, game *types.Game, action types.Action, rating *int) error
	RateGame(ctx context.Context, userID, username string, appID int, gameName string, rating int) (*types.Game, error)
}

type recommendationService struct {
	cfg   RecommendationConfig
	prefs PreferenceService
	steam CatalogAdapter
	meta  MetadataAdapter
	deals DealsAdapter
	log   *logger.Logger
}

func NewRecommendationService(
	cfg RecommendationConfig,
	prefs PreferenceService,
	steam CatalogAdapter,
	meta MetadataAdapter,
	deals DealsAdapter,
	baseLog *logger.Logger,
) RecommendationService {
	return &recommendationService{
		cfg:   cfg,
		prefs: prefs,
		steam: steam,
		meta:  meta,
		deals: deals,
		log:   baseLog.With("service", "RecommendationService"),
	}
}

// GetPersonalized walks the fallback chain: personalized candidates
// from the preference store, then the external top-rated feed, then
// bounded random draws from the catalog. Each stage catches its own
// errors so an upstream failure degrades instead of aborting.
func (s *recommendationService) GetPersonalized(ctx context.Context, userID string) (*types.Game, error) {
	log := s.log.With("request_id", uuid.NewString(), "user_id", userID)

	candidates, err := s.prefs.GetRecommendedGames(ctx, userID, s.cfg.CandidatePool)
	if err != nil {
		log.Warn("Personalized stage failed, falling through", "error", err)
	} else if len(candidates) > 0 {
		pick := candidates[rand.Intn(len(candidates))]
		game, err := s.steam.AppDetails(ctx, pick.GameID)
		if err != nil {
			log.Warn("Detail fetch for personalized pick failed, falling through", "game_id", pick.GameID, "error", err)
		} else if game != nil {
			log.Info("Personalized recommendation", "game_id", game.AppID, "game", game.Name)
			return game, nil
		}
	}

	if game := s.highRated(ctx, log); game != nil {
		return game, nil
	}
	return s.random(ctx, log), nil
}

func (s *recommendationService) highRated(ctx context.Context, log *logger.Logger) *types.Game {
	top, err := s.meta.TopRated(ctx, s.cfg.MinRating)
	if err != nil {
		log.Warn("Top-rated stage failed, falling through", "error", err)
		return nil
	}
	if len(top) == 0 {
		return nil
	}

	attempts := s.cfg.HighRatedAttempts
	if len(top) < attempts {
		attempts = len(top)
	}
	for i := 0; i < attempts; i++ {
		selected := top[rand.Intn(len(top))]
		appID, ok, err := s.meta.FindSteamApp(ctx, selected.Name)
		if err != nil {
			log.Warn("Steam lookup for top-rated candidate failed", "game", selected.Name, "error", err)
			continue
		}
		if !ok {
			continue
		}
		game, err := s.steam.AppDetails(ctx, appID)
		if err != nil {
			log.Warn("Detail fetch for top-rated candidate failed", "app_id", appID, "error", err)
			continue
		}
		if !game.IsGame() {
			continue
		}
		game.Rating = selected.Rating
		log.Info("Top-rated recommendation", "game_id", game.AppID, "game", game.Name)
		return game
	}
	return nil
}

// random is the last stage: bounded uniformly random draws from the
// full catalog, keeping only entries typed as actual games.
func (s *recommendationService) random(ctx context.Context, log *logger.Logger) *types.Game {
	for attempt := 0; attempt < s.cfg.RandomAttempts; attempt++ {
		app, err := s.steam.RandomApp(ctx)
		if err != nil {
			log.Warn("Random stage failed", "error", err)
			return nil
		}
		game, err := s.steam.AppDetails(ctx, app.AppID)
		if err != nil {
			log.Warn("Detail fetch for random draw failed", "app_id", app.AppID, "error", err)
			continue
		}
		if !game.IsGame() {
			continue
		}
		log.Info("Random recommendation", "game_id", game.AppID, "game", game.Name)
		return game
	}
	log.Info("Fallback chain exhausted without a usable result")
	return nil
}

// GetByGenre resolves a rating-ordered genre feed, skipping everything
// already in the user's full interaction history. Asking for a genre is
// itself a weak interest signal, so the genre's score is nudged first.
func (s *recommendationService) GetByGenre(ctx context.Context, userID, genre string) (*types.Game, error) {
	log := s.log.With("request_id", uuid.NewString(), "user_id", userID, "genre", genre)

	if err := s.prefs.NudgeGenre(ctx, userID, genre, s.cfg.GenreNudge); err != nil {
		log.Warn("Failed to nudge genre preference", "error", err)
	}

	listed, err := s.meta.SearchByGenre(ctx, genre, s.cfg.CandidatePool)
	if err != nil {
		log.Warn("Genre search failed, falling through", "error", err)
		return s.random(ctx, log), nil
	}

	seen := map[int]bool{}
	history, err := s.prefs.GetHistory(ctx, userID, "", s.cfg.HistoryWindow)
	if err != nil {
		log.Warn("History read failed, skipping exclusion", "error", err)
	} else {
		for _, h := range history {
			seen[h.GameID] = true
		}
	}

	for _, candidate := range listed {
		if seen[candidate.ID] {
			continue
		}
		appID, ok, err := s.meta.FindSteamApp(ctx, candidate.Name)
		if err != nil {
			log.Warn("Steam lookup for genre candidate failed", "game", candidate.Name, "error", err)
			continue
		}
		if !ok {
			continue
		}
		game, err := s.steam.AppDetails(ctx, appID)
		if err != nil {
			log.Warn("Detail fetch for genre candidate failed", "app_id", appID, "error", err)
			continue
		}
		if !game.IsGame() {
			continue
		}
		if candidate.Rating > 0 {
			game.Rating = candidate.Rating
		}
		log.Info("Genre recommendation", "game_id", game.AppID, "game", game.Name)
		return game, nil
	}

	return s.random(ctx, log), nil
}

// GetByPriceRange finds games whose resolved price lands inside
// [minPrice, maxPrice]. The deals feed is consulted first when enabled;
// the rest is filled by sampling random catalog batches and resolving
// each batch's details in parallel, with a hard cap on batches so
// latency stays predictable instead of scanning the whole catalog.
func (s *recommendationService) GetByPriceRange(ctx context.Context, minPrice, maxPrice float64) ([]*types.Game, error) {
	log := s.log.With("request_id", uuid.NewString(), "min_price", minPrice, "max_price", maxPrice)
	minCents := int(math.Round(minPrice * 100))
	maxCents := int(math.Round(maxPrice * 100))
	free := maxCents == 0

	var results []*types.Game

	deals, err := s.deals.DealsByPriceRange(ctx, maxPrice, free)
	if err != nil {
		log.Warn("Deals lookup failed, falling back to catalog sampling", "error", err)
	}
	for _, deal := range deals {
		if len(results) >= s.cfg.PriceTargetCount {
			return results, nil
		}
		app, err := s.steam.SearchByName(ctx, deal.Title)
		if err != nil || app == nil {
			continue
		}
		game, err := s.steam.AppDetails(ctx, app.AppID)
		if err != nil || !game.IsGame() || !priceInRange(game, minCents, maxCents) {
			continue
		}
		results = append(results, game)
	}

	var mu sync.Mutex
	for batch := 0; batch < s.cfg.PriceMaxBatches && len(results) < s.cfg.PriceTargetCount; batch++ {
		apps := make([]*types.AppRef, 0, s.cfg.PriceBatchSize)
		for i := 0; i < s.cfg.PriceBatchSize; i++ {
			app, err := s.steam.RandomApp(ctx)
			if err != nil {
				log.Warn("Catalog sampling failed", "error", err)
				return results, nil
			}
			apps = append(apps, app)
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, app := range apps {
			app := app
			g.Go(func() error {
				game, err := s.steam.AppDetails(gctx, app.AppID)
				if err != nil || !game.IsGame() || !priceInRange(game, minCents, maxCents) {
					return nil
				}
				mu.Lock()
				results = append(results, game)
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	}

	log.Info("Price-range search finished", "found", len(results))
	return results, nil
}

func priceInRange(game *types.Game, minCents, maxCents int) bool {
	if game.IsFree {
		return minCents <= 0
	}
	if game.PriceCents == 0 {
		// No structured price on the record: cannot prove it is in range.
		return false
	}
	return game.PriceCents >= minCents && game.PriceCents <= maxCents
}

// GetSimilar suggests a game resembling the given one, drawn from the
// local feature snapshots. Returns (nil, nil) when nothing suitable is
// cached; producing no suggestion is not an error.
func (s *recommendationService) GetSimilar(ctx context.Context, gameID int) (*types.Game, error) {
	log := s.log.With("request_id", uuid.NewString(), "game_id", gameID)

	similar, err := s.prefs.GetSimilarGames(ctx, gameID, s.cfg.SimilarPool)
	if err != nil {
		log.Warn("Similar-games query failed", "error", err)
		return nil, nil
	}
	if len(similar) == 0 {
		return nil, nil
	}

	pool := s.cfg.SimilarPick
	if len(similar) < pool {
		pool = len(similar)
	}
	pick := similar[rand.Intn(pool)]
	game, err := s.steam.AppDetails(ctx, pick.GameID)
	if err != nil {
		log.Warn("Detail fetch for similar pick failed", "game_id", pick.GameID, "error", err)
		return nil, nil
	}
	return game, nil
}

// GetTopDeals surfaces the deepest current discounts. With the deals
// adapter disabled this is simply empty.
func (s *recommendationService) GetTopDeals(ctx context.Context, minDiscount int) ([]types.Deal, error) {
	return s.deals.TopDeals(ctx, minDiscount)
}

// RecordAction writes personalization bookkeeping. Telemetry writes are
// best-effort: failures are logged and swallowed. A write that carries
// an explicit rating is the user's primary intent and its failure is
// surfaced.
func (s *recommendationService) RecordAction(ctx context.Context, userID, username string, game *types.Game, action types.Action, rating *int) error {
	err := s.prefs.RecordInteraction(ctx, userID, username, game, action, rating)
	if err == nil {
		return nil
	}
	if rating != nil {
		return fmt.Errorf("record rating: %w", err)
	}
	s.log.Warn("Failed to record interaction, continuing",
		"user_id", userID,
		"action", action,
		"error", err,
	)
	return nil
}

// RateGame records an explicit rating and, for ratings of 4 and up,
// tries to return a similar-game suggestion. The suggestion is purely
// additive; only the rating write itself can fail the call.
func (s *recommendationService) RateGame(ctx context.Context, userID, username string, appID int, gameName string, rating int) (*types.Game, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("rating %d out of range 1-5", rating)
	}

	game, err := s.steam.AppDetails(ctx, appID)
	if err != nil || game == nil {
		if err != nil {
			s.log.Warn("Detail fetch for rated game failed, recording without genres", "app_id", appID, "error", err)
		}
		game = &types.Game{Source: types.GameSourceSteam, AppID: appID, Name: gameName}
	}

	if err := s.RecordAction(ctx, userID, username, game, types.ActionRated, &rating); err != nil {
		return nil, err
	}

	if rating >= 4 {
		if suggestion, err := s.GetSimilar(ctx, appID); err == nil && suggestion != nil {
			return suggestion, nil
		}
	}
	return nil, nil
}
