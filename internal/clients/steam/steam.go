package steam

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/dumpling2/steam-game-suggester/internal/cache"
	"github.com/dumpling2/steam-game-suggester/internal/httpx"
	"github.com/dumpling2/steam-game-suggester/internal/logger"
	"github.com/dumpling2/steam-game-suggester/internal/types"
)

const (
	appListCacheKey      = "steam_app_list"
	appDetailsCacheKey   = "steam_app_details_%d"
	maxGenresPerGame     = 3
	maxDescriptionLength = 300
)

type Config struct {
	APIBaseURL   string
	StoreBaseURL string
	Language     string
	AppListTTL   time.Duration
	DetailsTTL   time.Duration
}

// Client is the catalog adapter: the full app list plus per-app store
// details, both memoized through the cache store since the upstream
// calls are expensive and heavily rate limited.
type Client struct {
	cfg   Config
	http  *httpx.Client
	cache *cache.Store
	log   *logger.Logger
}

func NewClient(cfg Config, httpClient *httpx.Client, cacheStore *cache.Store, baseLog *logger.Logger) *Client {
	return &Client{
		cfg:   cfg,
		http:  httpClient,
		cache: cacheStore,
		log:   baseLog.With("client", "SteamClient"),
	}
}

type appListResponse struct {
	AppList struct {
		Apps []types.AppRef `json:"apps"`
	} `json:"applist"`
}

// AppList returns the full catalog, served from cache when fresh.
func (c *Client) AppList(ctx context.Context) ([]types.AppRef, error) {
	var cached []types.AppRef
	if c.cache.Get(appListCacheKey, &cached) && len(cached) > 0 {
		return cached, nil
	}

	var resp appListResponse
	listURL := c.cfg.APIBaseURL + "/ISteamApps/GetAppList/v2/"
	if err := c.http.GetJSON(ctx, listURL, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch steam app list: %w", err)
	}
	apps := resp.AppList.Apps
	if len(apps) == 0 {
		return nil, fmt.Errorf("steam app list is empty")
	}

	c.cache.Set(appListCacheKey, apps, c.cfg.AppListTTL)
	c.log.Info("Fetched and cached steam app list", "count", len(apps))
	return apps, nil
}

type appDetailsEnvelope struct {
	Success bool              `json:"success"`
	Data    appDetailsPayload `json:"data"`
}

type appDetailsPayload struct {
	Type                string `json:"type"`
	Name                string `json:"name"`
	SteamAppID          int    `json:"steam_appid"`
	ShortDescription    string `json:"short_description"`
	DetailedDescription string `json:"detailed_description"`
	IsFree              bool   `json:"is_free"`
	PriceOverview       *struct {
		Final            int    `json:"final"`
		FinalFormatted   string `json:"final_formatted"`
		InitialFormatted string `json:"initial_formatted"`
		DiscountPercent  int    `json:"discount_percent"`
	} `json:"price_overview"`
	Genres []struct {
		Description string `json:"description"`
	} `json:"genres"`
	Categories []struct {
		Description string `json:"description"`
	} `json:"categories"`
	ReleaseDate struct {
		Date string `json:"date"`
	} `json:"release_date"`
	HeaderImage string   `json:"header_image"`
	Developers  []string `json:"developers"`
	Publishers  []string `json:"publishers"`
	Platforms   struct {
		Windows bool `json:"windows"`
		Mac     bool `json:"mac"`
		Linux   bool `json:"linux"`
	} `json:"platforms"`
}

// AppDetails fetches one app's store record normalized into types.Game.
// Returns (nil, nil) when the store has no usable record for the id;
// upstream failures are returned as errors for the caller to handle.
func (c *Client) AppDetails(ctx context.Context, appID int) (*types.Game, error) {
	cacheKey := fmt.Sprintf(appDetailsCacheKey, appID)
	var cached types.Game
	if c.cache.Get(cacheKey, &cached) {
		return &cached, nil
	}

	query := url.Values{
		"appids": {fmt.Sprintf("%d", appID)},
		"l":      {c.cfg.Language},
	}
	var resp map[string]appDetailsEnvelope
	detailsURL := c.cfg.StoreBaseURL + "/api/appdetails"
	if err := c.http.GetJSON(ctx, detailsURL, query, &resp); err != nil {
		return nil, fmt.Errorf("fetch steam app details for %d: %w", appID, err)
	}

	env, ok := resp[fmt.Sprintf("%d", appID)]
	if !ok || !env.Success {
		c.log.Warn("App details request unsuccessful", "app_id", appID)
		return nil, nil
	}

	game := c.normalize(&env.Data)
	c.cache.Set(cacheKey, game, c.cfg.DetailsTTL)
	return game, nil
}

// RandomApp draws one uniformly random catalog entry.
func (c *Client) RandomApp(ctx context.Context) (*types.AppRef, error) {
	apps, err := c.AppList(ctx)
	if err != nil {
		return nil, err
	}
	app := apps[rand.Intn(len(apps))]
	return &app, nil
}

// SearchByName looks the catalog up by name: exact match first, then
// partial matches preferring prefix matches and shorter names.
func (c *Client) SearchByName(ctx context.Context, name string) (*types.AppRef, error) {
	apps, err := c.AppList(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil, nil
	}

	var partial []types.AppRef
	for _, app := range apps {
		lower := strings.ToLower(app.Name)
		if lower == needle {
			found := app
			return &found, nil
		}
		if strings.Contains(lower, needle) {
			partial = append(partial, app)
		}
	}
	if len(partial) == 0 {
		return nil, nil
	}

	sort.SliceStable(partial, func(i, j int) bool {
		iPrefix := strings.HasPrefix(strings.ToLower(partial[i].Name), needle)
		jPrefix := strings.HasPrefix(strings.ToLower(partial[j].Name), needle)
		if iPrefix != jPrefix {
			return iPrefix
		}
		return len(partial[i].Name) < len(partial[j].Name)
	})
	return &partial[0], nil
}

func (c *Client) normalize(data *appDetailsPayload) *types.Game {
	description := data.ShortDescription
	if description == "" {
		description = data.DetailedDescription
		if len(description) > maxDescriptionLength {
			description = description[:maxDescriptionLength]
		}
	}
	if description == "" {
		description = "No description available"
	}

	genres := make([]string, 0, maxGenresPerGame)
	for _, g := range data.Genres {
		if len(genres) == maxGenresPerGame {
			break
		}
		genres = append(genres, g.Description)
	}

	var tags []string
	for _, cat := range data.Categories {
		tags = append(tags, cat.Description)
	}

	game := &types.Game{
		Source:      types.GameSourceSteam,
		AppID:       data.SteamAppID,
		Name:        data.Name,
		Type:        data.Type,
		Description: description,
		Genres:      genres,
		Tags:        tags,
		IsFree:      data.IsFree,
		ReleaseDate: data.ReleaseDate.Date,
		HeaderImage: data.HeaderImage,
		StoreURL:    fmt.Sprintf("%s/app/%d", c.cfg.StoreBaseURL, data.SteamAppID),
		Developers:  data.Developers,
		Publishers:  data.Publishers,
		Platforms: types.Platforms{
			Windows: data.Platforms.Windows,
			Mac:     data.Platforms.Mac,
			Linux:   data.Platforms.Linux,
		},
	}

	switch {
	case data.IsFree:
		game.Price = "Free"
	case data.PriceOverview != nil:
		game.Price = data.PriceOverview.FinalFormatted
		game.OriginalPrice = data.PriceOverview.InitialFormatted
		game.DiscountPct = data.PriceOverview.DiscountPercent
		game.PriceCents = data.PriceOverview.Final
	default:
		game.Price = "Price not available"
	}

	return game
}
