package repos

import (
	"context"
	"encoding/json"
	"testing"

	"gorm.io/datatypes"

	"github.com/dumpling2/steam-game-suggester/internal/logger"
	"github.com/dumpling2/steam-game-suggester/internal/types"
)

func mustJSON(t *testing.T, v interface{}) datatypes.JSON {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return datatypes.JSON(raw)
}

func seedFeatures(t *testing.T, repo GameFeaturesRepo, id int, name string, genres []string, rating float64, year int) {
	t.Helper()
	err := repo.Upsert(context.Background(), nil, &types.GameFeatures{
		GameID:      id,
		GameName:    name,
		Genres:      mustJSON(t, genres),
		Tags:        mustJSON(t, []string{}),
		Rating:      rating,
		ReleaseYear: year,
	})
	if err != nil {
		t.Fatalf("Upsert %s: %v", name, err)
	}
}

func TestUpsertIsIdempotentLastWriteWins(t *testing.T) {
	db := newTestDB(t)
	repo := NewGameFeaturesRepo(db, logger.NewNop())
	ctx := context.Background()

	seedFeatures(t, repo, 10, "Alpha", []string{"Action"}, 4.0, 2019)
	seedFeatures(t, repo, 10, "Alpha Remastered", []string{"Action", "Adventure"}, 4.4, 2021)

	got, err := repo.GetByID(ctx, nil, 10)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil {
		t.Fatalf("expected row")
	}
	if got.GameName != "Alpha Remastered" || got.Rating != 4.4 {
		t.Fatalf("got %q/%v, want latest write", got.GameName, got.Rating)
	}

	var count int64
	db.Model(&types.GameFeatures{}).Count(&count)
	if count != 1 {
		t.Fatalf("rows=%d, want 1", count)
	}
}

func TestGetByIDAbsentReturnsNil(t *testing.T) {
	db := newTestDB(t)
	repo := NewGameFeaturesRepo(db, logger.NewNop())

	got, err := repo.GetByID(context.Background(), nil, 999)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for absent row, got %+v", got)
	}
}

func TestListHighRatedFiltersOrdersAndExcludesRated(t *testing.T) {
	db := newTestDB(t)
	repo := NewGameFeaturesRepo(db, logger.NewNop())
	ratings := NewGameRatingRepo(db, logger.NewNop())
	ctx := context.Background()

	seedFeatures(t, repo, 1, "Low", []string{"Action"}, 3.2, 2018)
	seedFeatures(t, repo, 2, "Mid", []string{"Action"}, 4.1, 2019)
	seedFeatures(t, repo, 3, "High", []string{"RPG"}, 4.8, 2020)
	seedFeatures(t, repo, 4, "AlreadyRated", []string{"RPG"}, 4.5, 2021)

	if err := ratings.Upsert(ctx, nil, "u1", 4, "AlreadyRated", 5); err != nil {
		t.Fatalf("rating Upsert: %v", err)
	}

	got, err := repo.ListHighRatedExcludingRated(ctx, nil, "u1", 4.0, 10)
	if err != nil {
		t.Fatalf("ListHighRatedExcludingRated: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("rows=%d, want 2", len(got))
	}
	if got[0].GameName != "High" || got[1].GameName != "Mid" {
		t.Fatalf("order=%s,%s, want High,Mid", got[0].GameName, got[1].GameName)
	}
}

func TestListByGenresExcludesRatedGames(t *testing.T) {
	db := newTestDB(t)
	features := NewGameFeaturesRepo(db, logger.NewNop())
	ratings := NewGameRatingRepo(db, logger.NewNop())
	ctx := context.Background()

	seedFeatures(t, features, 1, "Rated", []string{"Action"}, 4.5, 2019)
	seedFeatures(t, features, 2, "Fresh", []string{"Action"}, 4.2, 2020)
	seedFeatures(t, features, 3, "OtherGenre", []string{"Sports"}, 4.9, 2021)

	if err := ratings.Upsert(ctx, nil, "u1", 1, "Rated", 5); err != nil {
		t.Fatalf("rating Upsert: %v", err)
	}

	got, err := features.ListByGenresExcludingRated(ctx, nil, "u1", []string{"Action", "RPG"}, 10)
	if err != nil {
		t.Fatalf("ListByGenresExcludingRated: %v", err)
	}
	if len(got) != 1 || got[0].GameName != "Fresh" {
		t.Fatalf("got %+v, want only Fresh", got)
	}
}

func TestListByGenresMatchesAnyOfTopGenres(t *testing.T) {
	db := newTestDB(t)
	repo := NewGameFeaturesRepo(db, logger.NewNop())
	ctx := context.Background()

	seedFeatures(t, repo, 1, "ActionGame", []string{"Action"}, 4.0, 2019)
	seedFeatures(t, repo, 2, "PuzzleGame", []string{"Puzzle"}, 4.6, 2020)
	seedFeatures(t, repo, 3, "Racer", []string{"Racing"}, 4.9, 2021)

	got, err := repo.ListByGenresExcludingRated(ctx, nil, "u1", []string{"Action", "Puzzle", "RPG"}, 10)
	if err != nil {
		t.Fatalf("ListByGenresExcludingRated: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("rows=%d, want 2", len(got))
	}
	if got[0].GameName != "PuzzleGame" {
		t.Fatalf("first=%s, want best-rated match PuzzleGame", got[0].GameName)
	}
}

func TestListSimilarWeightsGenreRatingAndYear(t *testing.T) {
	db := newTestDB(t)
	repo := NewGameFeaturesRepo(db, logger.NewNop())
	ctx := context.Background()
	weights := SimilarityWeights{Genre: 3, Rating: 2, Year: 1}

	seedFeatures(t, repo, 1, "Target", []string{"Action", "Adventure"}, 4.0, 2020)
	// Same primary genre, close rating, close year: 3+2+1 points.
	seedFeatures(t, repo, 2, "Closest", []string{"Action"}, 4.2, 2021)
	// Same primary genre only: 3 points, but higher raw rating.
	seedFeatures(t, repo, 3, "GenreOnly", []string{"Action"}, 4.9, 2010)
	// Different primary genre: filtered out entirely.
	seedFeatures(t, repo, 4, "Unrelated", []string{"Sports"}, 4.1, 2020)

	target, err := repo.GetByID(ctx, nil, 1)
	if err != nil || target == nil {
		t.Fatalf("GetByID target: %v", err)
	}

	got, err := repo.ListSimilar(ctx, nil, target, weights, 10)
	if err != nil {
		t.Fatalf("ListSimilar: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("rows=%d, want 2", len(got))
	}
	if got[0].GameName != "Closest" {
		t.Fatalf("first=%s, want Closest", got[0].GameName)
	}
	if got[1].GameName != "GenreOnly" {
		t.Fatalf("second=%s, want GenreOnly", got[1].GameName)
	}
	for _, g := range got {
		if g.GameID == 1 {
			t.Fatalf("target must be excluded from its own similar list")
		}
		if g.GameName == "Unrelated" {
			t.Fatalf("games without the primary genre must be filtered out")
		}
	}
}
