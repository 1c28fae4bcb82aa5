package repos

import (
	"context"
	"math"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dumpling2/steam-game-suggester/internal/logger"
	"github.com/dumpling2/steam-game-suggester/internal/types"
)

type GenrePreferenceRepo interface {
	AdjustScore(ctx context.Context, tx *gorm.DB, userID, genre string, delta float64) error
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]types.GenrePreference, error)
}

type genrePreferenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGenrePreferenceRepo(db *gorm.DB, baseLog *logger.Logger) GenrePreferenceRepo {
	repoLog := baseLog.With("repo", "GenrePreferenceRepo")
	return &genrePreferenceRepo{db: db, log: repoLog}
}

// AdjustScore creates the (user, genre) row on first signal and adds
// delta on every one after. The score never leaves [0, 5].
func (r *genrePreferenceRepo) AdjustScore(ctx context.Context, tx *gorm.DB, userID, genre string, delta float64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	pref := &types.GenrePreference{
		UserID: userID,
		Genre:  genre,
		Score:  math.Min(math.Max(delta, 0), 5),
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "genre"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"score": gorm.Expr("MIN(MAX(score + ?, 0), 5)", delta),
			}),
		}).
		Create(pref).Error; err != nil {
		return err
	}
	return nil
}

func (r *genrePreferenceRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]types.GenrePreference, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []types.GenrePreference
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("score DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
