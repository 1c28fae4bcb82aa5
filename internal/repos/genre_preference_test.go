package repos

import (
	"context"
	"math"
	"testing"

	"github.com/dumpling2/steam-game-suggester/internal/logger"
)

func TestAdjustScoreCreatesThenAccumulates(t *testing.T) {
	db := newTestDB(t)
	repo := NewGenrePreferenceRepo(db, logger.NewNop())
	ctx := context.Background()

	if err := repo.AdjustScore(ctx, nil, "u1", "Action", 0.1); err != nil {
		t.Fatalf("AdjustScore: %v", err)
	}
	if err := repo.AdjustScore(ctx, nil, "u1", "Action", 0.6); err != nil {
		t.Fatalf("AdjustScore: %v", err)
	}

	prefs, err := repo.ListByUser(ctx, nil, "u1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(prefs) != 1 {
		t.Fatalf("rows=%d, want 1", len(prefs))
	}
	if math.Abs(prefs[0].Score-0.7) > 1e-9 {
		t.Fatalf("score=%v, want 0.7", prefs[0].Score)
	}
}

func TestAdjustScoreClampsAtUpperBound(t *testing.T) {
	db := newTestDB(t)
	repo := NewGenrePreferenceRepo(db, logger.NewNop())
	ctx := context.Background()

	if err := repo.AdjustScore(ctx, nil, "u1", "Action", 4.9); err != nil {
		t.Fatalf("AdjustScore: %v", err)
	}
	if err := repo.AdjustScore(ctx, nil, "u1", "Action", 0.6); err != nil {
		t.Fatalf("AdjustScore: %v", err)
	}

	prefs, err := repo.ListByUser(ctx, nil, "u1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if prefs[0].Score != 5.0 {
		t.Fatalf("score=%v, want exactly 5.0", prefs[0].Score)
	}
}

func TestAdjustScoreClampsAtLowerBound(t *testing.T) {
	db := newTestDB(t)
	repo := NewGenrePreferenceRepo(db, logger.NewNop())
	ctx := context.Background()

	if err := repo.AdjustScore(ctx, nil, "u1", "Horror", 0.1); err != nil {
		t.Fatalf("AdjustScore: %v", err)
	}
	if err := repo.AdjustScore(ctx, nil, "u1", "Horror", -0.6); err != nil {
		t.Fatalf("AdjustScore: %v", err)
	}

	prefs, err := repo.ListByUser(ctx, nil, "u1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if prefs[0].Score != 0 {
		t.Fatalf("score=%v, want 0", prefs[0].Score)
	}
}

func TestAdjustScoreFirstInsertStoresClampedValue(t *testing.T) {
	db := newTestDB(t)
	repo := NewGenrePreferenceRepo(db, logger.NewNop())
	ctx := context.Background()

	// A negative first signal must create the row at the clamped score
	// of 0. The insert supplies the value explicitly; nothing else may
	// override a computed zero.
	if err := repo.AdjustScore(ctx, nil, "u1", "Strategy", -0.6); err != nil {
		t.Fatalf("AdjustScore: %v", err)
	}

	prefs, err := repo.ListByUser(ctx, nil, "u1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(prefs) != 1 {
		t.Fatalf("rows=%d, want 1", len(prefs))
	}
	if prefs[0].Score != 0 {
		t.Fatalf("score=%v, want 0 on first insert", prefs[0].Score)
	}
}

func TestListByUserOrdersByScoreDescending(t *testing.T) {
	db := newTestDB(t)
	repo := NewGenrePreferenceRepo(db, logger.NewNop())
	ctx := context.Background()

	for genre, delta := range map[string]float64{"RPG": 0.3, "Action": 1.2, "Puzzle": 0.6} {
		if err := repo.AdjustScore(ctx, nil, "u1", genre, delta); err != nil {
			t.Fatalf("AdjustScore %s: %v", genre, err)
		}
	}

	prefs, err := repo.ListByUser(ctx, nil, "u1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	want := []string{"Action", "Puzzle", "RPG"}
	for i, genre := range want {
		if prefs[i].Genre != genre {
			t.Fatalf("prefs[%d]=%s, want %s", i, prefs[i].Genre, genre)
		}
	}
}
