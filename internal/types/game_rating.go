package types

import (
	"time"
)

// GameRating is an explicit 1-5 star rating. At most one row per
// (user, game); a new rating overwrites the old one.
type GameRating struct {
	UserID    string    `gorm:"primaryKey" json:"user_id"`
	GameID    int       `gorm:"primaryKey" json:"game_id"`
	GameName  string    `json:"game_name"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (GameRating) TableName() string { return "user_game_ratings" }
