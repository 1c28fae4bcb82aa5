package repos

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dumpling2/steam-game-suggester/internal/logger"
	"github.com/dumpling2/steam-game-suggester/internal/types"
)

type GameRatingRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, userID string, gameID int, gameName string, rating int) error
	ListRecentByUser(ctx context.Context, tx *gorm.DB, userID string, limit int) ([]types.GameRating, error)
}

type gameRatingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGameRatingRepo(db *gorm.DB, baseLog *logger.Logger) GameRatingRepo {
	repoLog := baseLog.With("repo", "GameRatingRepo")
	return &gameRatingRepo{db: db, log: repoLog}
}

// Upsert keeps exactly one rating per (user, game): a repeat rating
// overwrites the stored value rather than accumulating.
func (r *gameRatingRepo) Upsert(ctx context.Context, tx *gorm.DB, userID string, gameID int, gameName string, rating int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	row := &types.GameRating{
		UserID:   userID,
		GameID:   gameID,
		GameName: gameName,
		Rating:   rating,
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "game_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"rating":    rating,
				"game_name": gameName,
			}),
		}).
		Create(row).Error; err != nil {
		return err
	}
	return nil
}

func (r *gameRatingRepo) ListRecentByUser(ctx context.Context, tx *gorm.DB, userID string, limit int) ([]types.GameRating, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []types.GameRating
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
