package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dumpling2/steam-game-suggester/internal/logger"
	"github.com/dumpling2/steam-game-suggester/internal/types"
)

// SimilarityWeights are the points a candidate collects for each axis of
// proximity to the target game. Tuning constants, not invariants.
type SimilarityWeights struct {
	Genre  float64
	Rating float64
	Year   float64
}

type GameFeaturesRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, features *types.GameFeatures) error
	GetByID(ctx context.Context, tx *gorm.DB, gameID int) (*types.GameFeatures, error)
	ListHighRatedExcludingRated(ctx context.Context, tx *gorm.DB, userID string, minRating float64, limit int) ([]types.GameFeatures, error)
	ListByGenresExcludingRated(ctx context.Context, tx *gorm.DB, userID string, genres []string, limit int) ([]types.GameFeatures, error)
	ListSimilar(ctx context.Context, tx *gorm.DB, target *types.GameFeatures, weights SimilarityWeights, limit int) ([]types.GameFeatures, error)
}

type gameFeaturesRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGameFeaturesRepo(db *gorm.DB, baseLog *logger.Logger) GameFeaturesRepo {
	repoLog := baseLog.With("repo", "GameFeaturesRepo")
	return &gameFeaturesRepo{db: db, log: repoLog}
}

// Upsert is idempotent and last-write-wins: features are populated
// opportunistically from several writers and the freshest snapshot is
// the one worth keeping.
func (r *gameFeaturesRepo) Upsert(ctx context.Context, tx *gorm.DB, features *types.GameFeatures) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "game_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"game_name":    features.GameName,
				"genres":       features.Genres,
				"tags":         features.Tags,
				"rating":       features.Rating,
				"release_year": features.ReleaseYear,
				"updated_at":   time.Now(),
			}),
		}).
		Create(features).Error; err != nil {
		return err
	}
	return nil
}

func (r *gameFeaturesRepo) GetByID(ctx context.Context, tx *gorm.DB, gameID int) (*types.GameFeatures, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var features types.GameFeatures
	if err := transaction.WithContext(ctx).
		Where("game_id = ?", gameID).
		First(&features).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &features, nil
}

// ListHighRatedExcludingRated is the cold-start fallback set: the best
// rated cached games the user has not rated yet.
func (r *gameFeaturesRepo) ListHighRatedExcludingRated(ctx context.Context, tx *gorm.DB, userID string, minRating float64, limit int) ([]types.GameFeatures, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	rated := transaction.Model(&types.GameRating{}).
		Select("game_id").
		Where("user_id = ?", userID)

	var results []types.GameFeatures
	if err := transaction.WithContext(ctx).
		Where("rating >= ?", minRating).
		Where("game_id NOT IN (?)", rated).
		Order("rating DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListByGenresExcludingRated returns cached games overlapping any of the
// given genres, minus everything the user has already rated, best rated
// first. Genre matching is substring containment against the serialized
// JSON genre list.
func (r *gameFeaturesRepo) ListByGenresExcludingRated(ctx context.Context, tx *gorm.DB, userID string, genres []string, limit int) ([]types.GameFeatures, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(genres) == 0 {
		return nil, nil
	}

	rated := transaction.Model(&types.GameRating{}).
		Select("game_id").
		Where("user_id = ?", userID)

	genreMatch := transaction.Where("genres LIKE ?", genrePattern(genres[0]))
	for _, genre := range genres[1:] {
		genreMatch = genreMatch.Or("genres LIKE ?", genrePattern(genre))
	}

	var results []types.GameFeatures
	if err := transaction.WithContext(ctx).
		Where("game_id NOT IN (?)", rated).
		Where(genreMatch).
		Order("rating DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListSimilar ranks other cached games by weighted proximity to the
// target: sharing the primary genre, rating within 0.5, release year
// within 3. Ties break on raw rating.
func (r *gameFeaturesRepo) ListSimilar(ctx context.Context, tx *gorm.DB, target *types.GameFeatures, weights SimilarityWeights, limit int) ([]types.GameFeatures, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	mainGenre := ""
	if genres := target.GenreList(); len(genres) > 0 {
		mainGenre = genres[0]
	}
	pattern := genrePattern(mainGenre)

	var results []types.GameFeatures
	if err := transaction.WithContext(ctx).Raw(`
		SELECT gf.*,
			(
				CASE WHEN gf.genres LIKE ? THEN ? ELSE 0 END +
				CASE WHEN ABS(gf.rating - ?) < 0.5 THEN ? ELSE 0 END +
				CASE WHEN ABS(gf.release_year - ?) < 3 THEN ? ELSE 0 END
			) AS similarity_score
		FROM game_features gf
		WHERE gf.game_id != ?
		AND gf.genres LIKE ?
		ORDER BY similarity_score DESC, gf.rating DESC
		LIMIT ?`,
		pattern, weights.Genre,
		target.Rating, weights.Rating,
		target.ReleaseYear, weights.Year,
		target.GameID,
		pattern,
		limit,
	).Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func genrePattern(genre string) string {
	return `%"` + genre + `"%`
}
