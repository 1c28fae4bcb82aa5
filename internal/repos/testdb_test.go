package repos

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dumpling2/steam-game-suggester/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&types.UserProfile{},
		&types.GenrePreference{},
		&types.GameRating{},
		&types.InteractionEvent{},
		&types.GameFeatures{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
