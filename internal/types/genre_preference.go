package types

// GenrePreference holds the learned affinity score for one (user, genre)
// pair. Absence of a row means "no opinion yet", not zero. Score is kept
// inside [0, 5] by the upsert path, which always supplies the initial
// value explicitly; a column default would silently replace a computed
// zero on insert.
type GenrePreference struct {
	UserID string  `gorm:"primaryKey" json:"user_id"`
	Genre  string  `gorm:"primaryKey" json:"genre"`
	Score  float64 `gorm:"not null" json:"score"`
}

func (GenrePreference) TableName() string { return "user_genre_preferences" }
