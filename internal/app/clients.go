package app

import (
	"github.com/dumpling2/steam-game-suggester/internal/cache"
	"github.com/dumpling2/steam-game-suggester/internal/clients/itad"
	"github.com/dumpling2/steam-game-suggester/internal/clients/rawg"
	"github.com/dumpling2/steam-game-suggester/internal/clients/steam"
	"github.com/dumpling2/steam-game-suggester/internal/httpx"
	"github.com/dumpling2/steam-game-suggester/internal/logger"
)

type Clients struct {
	Steam *steam.Client
	Rawg  *rawg.Client
	Itad  *itad.Client
}

// Each upstream gets its own rate-limited client so one API's ceiling
// never starves another.
func wireClients(cfg Config, cacheStore *cache.Store, log *logger.Logger) Clients {
	log.Info("Wiring upstream clients...")
	newHTTP := func(name string) *httpx.Client {
		return httpx.NewClient(httpx.Config{
			Name:           name,
			Timeout:        cfg.HTTPTimeout,
			MaxRetries:     cfg.HTTPMaxRetries,
			RetryBaseDelay: cfg.HTTPRetryBaseDelay,
			MaxPerSecond:   cfg.HTTPMaxPerSecond,
			MaxPerMinute:   cfg.HTTPMaxPerMinute,
		}, log)
	}
	return Clients{
		Steam: steam.NewClient(steam.Config{
			APIBaseURL:   cfg.SteamAPIBaseURL,
			StoreBaseURL: cfg.SteamStoreBaseURL,
			Language:     cfg.SteamLanguage,
			AppListTTL:   cfg.AppListTTL,
			DetailsTTL:   cfg.DetailsTTL,
		}, newHTTP("steam"), cacheStore, log),
		Rawg: rawg.NewClient(rawg.Config{
			BaseURL:  cfg.RawgBaseURL,
			APIKey:   cfg.RawgAPIKey,
			MinVotes: cfg.RawgMinVotes,
		}, newHTTP("rawg"), log),
		Itad: itad.NewClient(itad.Config{
			BaseURL: cfg.ItadBaseURL,
			APIKey:  cfg.ItadAPIKey,
			Country: cfg.ItadCountry,
			Shops:   cfg.ItadShops,
		}, newHTTP("itad"), log),
	}
}
