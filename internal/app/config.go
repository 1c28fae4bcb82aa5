package app

import (
	"time"

	"github.com/dumpling2/steam-game-suggester/internal/logger"
	"github.com/dumpling2/steam-game-suggester/internal/utils"
)

type Config struct {
	DataDir  string
	DBPath   string
	CacheDir string

	SteamAPIBaseURL   string
	SteamStoreBaseURL string
	SteamLanguage     string
	AppListTTL        time.Duration
	DetailsTTL        time.Duration

	RawgBaseURL  string
	RawgAPIKey   string
	RawgMinVotes int

	ItadBaseURL string
	ItadAPIKey  string
	ItadCountry string
	ItadShops   string

	HTTPTimeout        time.Duration
	HTTPMaxRetries     int
	HTTPRetryBaseDelay time.Duration
	HTTPMaxPerSecond   int
	HTTPMaxPerMinute   int

	RatingDeltaFactor float64
	RecommendNudge    float64
	GenreNudge        float64
	TopGenres         int
	GenreWeight       float64
	RatingWeight      float64
	YearWeight        float64

	JanitorSweepInterval time.Duration
	JanitorStatsInterval time.Duration

	Port string
}

func LoadConfig(log *logger.Logger) Config {
	dataDir := utils.GetEnv("DATA_DIR", "./data", log)
	return Config{
		DataDir:  dataDir,
		DBPath:   utils.GetEnv("DB_PATH", dataDir+"/suggester.db", log),
		CacheDir: utils.GetEnv("CACHE_DIR", dataDir+"/cache", log),

		SteamAPIBaseURL:   utils.GetEnv("STEAM_API_BASE_URL", "https://api.steampowered.com", log),
		SteamStoreBaseURL: utils.GetEnv("STEAM_STORE_BASE_URL", "https://store.steampowered.com", log),
		SteamLanguage:     utils.GetEnv("STEAM_LANGUAGE", "en", log),
		AppListTTL:        time.Duration(utils.GetEnvAsInt("STEAM_APP_LIST_TTL_HOURS", 24, log)) * time.Hour,
		DetailsTTL:        time.Duration(utils.GetEnvAsInt("STEAM_DETAILS_TTL_HOURS", 6, log)) * time.Hour,

		RawgBaseURL:  utils.GetEnv("RAWG_BASE_URL", "https://api.rawg.io/api", log),
		RawgAPIKey:   utils.GetEnv("RAWG_API_KEY", "", log),
		RawgMinVotes: utils.GetEnvAsInt("RAWG_MIN_VOTES", 100, log),

		ItadBaseURL: utils.GetEnv("ITAD_BASE_URL", "https://api.isthereanydeal.com/v01", log),
		ItadAPIKey:  utils.GetEnv("ITAD_API_KEY", "", log),
		ItadCountry: utils.GetEnv("ITAD_COUNTRY", "US", log),
		ItadShops:   utils.GetEnv("ITAD_SHOPS", "steam", log),

		HTTPTimeout:        time.Duration(utils.GetEnvAsInt("HTTP_TIMEOUT_SECONDS", 5, log)) * time.Second,
		HTTPMaxRetries:     utils.GetEnvAsInt("HTTP_MAX_RETRIES", 3, log),
		HTTPRetryBaseDelay: time.Duration(utils.GetEnvAsInt("HTTP_RETRY_BASE_DELAY_MS", 1000, log)) * time.Millisecond,
		HTTPMaxPerSecond:   utils.GetEnvAsInt("HTTP_MAX_PER_SECOND", 10, log),
		HTTPMaxPerMinute:   utils.GetEnvAsInt("HTTP_MAX_PER_MINUTE", 100, log),

		RatingDeltaFactor: utils.GetEnvAsFloat("RATING_DELTA_FACTOR", 0.3, log),
		RecommendNudge:    utils.GetEnvAsFloat("RECOMMEND_NUDGE", 0.1, log),
		GenreNudge:        utils.GetEnvAsFloat("GENRE_REQUEST_NUDGE", 0.2, log),
		TopGenres:         utils.GetEnvAsInt("TOP_GENRES", 3, log),
		GenreWeight:       utils.GetEnvAsFloat("SIMILARITY_GENRE_WEIGHT", 3, log),
		RatingWeight:      utils.GetEnvAsFloat("SIMILARITY_RATING_WEIGHT", 2, log),
		YearWeight:        utils.GetEnvAsFloat("SIMILARITY_YEAR_WEIGHT", 1, log),

		JanitorSweepInterval: time.Duration(utils.GetEnvAsInt("CACHE_SWEEP_INTERVAL_MINUTES", 60, log)) * time.Minute,
		JanitorStatsInterval: time.Duration(utils.GetEnvAsInt("CACHE_STATS_INTERVAL_HOURS", 24, log)) * time.Hour,

		Port: utils.GetEnv("PORT", "8080", log),
	}
}
