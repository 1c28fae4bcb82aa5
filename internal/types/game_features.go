package types

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// GameFeatures is the locally persisted snapshot of a game's attributes,
// upserted whenever a fully detailed record passes through the system.
// Genres and tags are JSON arrays; genre matching is done with substring
// containment against the serialized form.
type GameFeatures struct {
	GameID      int            `gorm:"primaryKey" json:"game_id"`
	GameName    string         `json:"game_name"`
	Genres      datatypes.JSON `json:"genres"`
	Tags        datatypes.JSON `json:"tags"`
	Rating      float64        `json:"rating"`
	ReleaseYear int            `json:"release_year"`
	UpdatedAt   time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (GameFeatures) TableName() string { return "game_features" }

// GenreList decodes the stored genres column. A corrupt or empty column
// decodes to an empty list rather than an error.
func (gf *GameFeatures) GenreList() []string {
	var genres []string
	if len(gf.Genres) == 0 {
		return genres
	}
	_ = json.Unmarshal(gf.Genres, &genres)
	return genres
}

func (gf *GameFeatures) TagList() []string {
	var tags []string
	if len(gf.Tags) == 0 {
		return tags
	}
	_ = json.Unmarshal(gf.Tags, &tags)
	return tags
}
