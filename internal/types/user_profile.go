package types

import (
	"time"
)

type UserProfile struct {
	UserID    string    `gorm:"primaryKey" json:"user_id"`
	Username  string    `gorm:"not null" json:"username"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (UserProfile) TableName() string { return "user_profiles" }
