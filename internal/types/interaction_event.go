package types

import (
	"time"
)

type Action string

const (
	ActionViewed      Action = "viewed"
	ActionRecommended Action = "recommended"
	ActionRated       Action = "rated"
	ActionSearched    Action = "searched"
)

// InteractionEvent is one append-only row of the user's behavior log.
// Never updated or deleted by the application.
type InteractionEvent struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"not null;index:idx_history_user_id" json:"user_id"`
	GameID    int       `gorm:"not null" json:"game_id"`
	GameName  string    `json:"game_name"`
	Action    Action    `gorm:"not null" json:"action"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime;index:idx_history_created_at" json:"created_at"`
}

func (InteractionEvent) TableName() string { return "user_game_history" }
