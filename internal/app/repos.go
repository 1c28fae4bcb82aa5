package app

import (
	"gorm.io/gorm"

	"github.com/dumpling2/steam-game-suggester/internal/logger"
	"github.com/dumpling2/steam-game-suggester/internal/repos"
)

type Repos struct {
	User            repos.UserRepo
	GenrePreference repos.GenrePreferenceRepo
	GameRating      repos.GameRatingRepo
	History         repos.HistoryRepo
	GameFeatures    repos.GameFeaturesRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:            repos.NewUserRepo(db, log),
		GenrePreference: repos.NewGenrePreferenceRepo(db, log),
		GameRating:      repos.NewGameRatingRepo(db, log),
		History:         repos.NewHistoryRepo(db, log),
		GameFeatures:    repos.NewGameFeaturesRepo(db, log),
	}
}
