package app

import (
	"github.com/dumpling2/steam-game-suggester/internal/logger"
	"github.com/dumpling2/steam-game-suggester/internal/repos"
	"github.com/dumpling2/steam-game-suggester/internal/services"
)

type Services struct {
	Preference     services.PreferenceService
	Recommendation services.RecommendationService
}

func wireServices(cfg Config, reposet Repos, clients Clients, log *logger.Logger) Services {
	log.Info("Wiring services...")

	prefCfg := services.DefaultPreferenceConfig()
	prefCfg.RatingDeltaFactor = cfg.RatingDeltaFactor
	prefCfg.RecommendNudge = cfg.RecommendNudge
	prefCfg.TopGenres = cfg.TopGenres
	prefCfg.SimilarityWeights = repos.SimilarityWeights{
		Genre:  cfg.GenreWeight,
		Rating: cfg.RatingWeight,
		Year:   cfg.YearWeight,
	}
	prefService := services.NewPreferenceService(
		prefCfg,
		reposet.User,
		reposet.GenrePreference,
		reposet.GameRating,
		reposet.History,
		reposet.GameFeatures,
		log,
	)

	recCfg := services.DefaultRecommendationConfig()
	recCfg.GenreNudge = cfg.GenreNudge
	recService := services.NewRecommendationService(
		recCfg,
		prefService,
		clients.Steam,
		clients.Rawg,
		clients.Itad,
		log,
	)

	return Services{
		Preference:     prefService,
		Recommendation: recService,
	}
}
