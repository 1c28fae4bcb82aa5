package types

// GameSource tags which upstream a normalized Game record came from.
type GameSource string

const (
	GameSourceSteam GameSource = "steam"
	GameSourceRAWG  GameSource = "rawg"
)

// AppRef is one catalog list entry: just enough to identify a game.
type AppRef struct {
	AppID int    `json:"appid"`
	Name  string `json:"name"`
}

type Platforms struct {
	Windows bool `json:"windows"`
	Mac     bool `json:"mac"`
	Linux   bool `json:"linux"`
}

// Game is the single normalized shape every adapter produces and the
// engine and preference store consume, regardless of which upstream the
// record came from.
type Game struct {
	Source        GameSource `json:"source"`
	AppID         int        `json:"app_id"`
	Name          string     `json:"name"`
	Type          string     `json:"type"`
	Description   string     `json:"description"`
	Genres        []string   `json:"genres"`
	Tags          []string   `json:"tags"`
	Rating        float64    `json:"rating"`
	Price         string     `json:"price"`
	OriginalPrice string     `json:"original_price,omitempty"`
	DiscountPct   int        `json:"discount_pct,omitempty"`
	PriceCents    int        `json:"price_cents"`
	IsFree        bool       `json:"is_free"`
	ReleaseDate   string     `json:"release_date"`
	HeaderImage   string     `json:"header_image,omitempty"`
	StoreURL      string     `json:"store_url,omitempty"`
	Developers    []string   `json:"developers,omitempty"`
	Publishers    []string   `json:"publishers,omitempty"`
	Platforms     Platforms  `json:"platforms"`
}

// IsGame reports whether the record is an actual playable game rather
// than a soundtrack, tool, DLC or other non-game catalog entry.
func (g *Game) IsGame() bool {
	return g != nil && g.Type == "game"
}

// ListedGame is a lightweight discovery result from the metadata API,
// before resolution to a store-backed detailed record.
type ListedGame struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	Rating          float64  `json:"rating"`
	RatingsCount    int      `json:"ratings_count"`
	Genres          []string `json:"genres"`
	Released        string   `json:"released"`
	BackgroundImage string   `json:"background_image,omitempty"`
}
