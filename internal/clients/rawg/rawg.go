package rawg

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"github.com/dumpling2/steam-game-suggester/internal/httpx"
	"github.com/dumpling2/steam-game-suggester/internal/logger"
	"github.com/dumpling2/steam-game-suggester/internal/types"
)

// Steam's store id inside the RAWG stores facet.
const steamStoreID = 1

var steamAppURLPattern = regexp.MustCompile(`/app/(\d+)`)

type Config struct {
	BaseURL  string
	APIKey   string
	MinVotes int
}

// Client is the metadata/discovery adapter: free-text and genre search,
// top-rated feeds, and resolution of a metadata record to a Steam app id.
type Client struct {
	cfg  Config
	http *httpx.Client
	log  *logger.Logger
}

func NewClient(cfg Config, httpClient *httpx.Client, baseLog *logger.Logger) *Client {
	return &Client{
		cfg:  cfg,
		http: httpClient,
		log:  baseLog.With("client", "RawgClient"),
	}
}

type SearchParams struct {
	Search     string
	Genres     string
	Tags       string
	Ordering   string
	Metacritic string
	Stores     string
	PageSize   int
	Page       int
}

type gamePayload struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	Rating          float64 `json:"rating"`
	RatingsCount    int     `json:"ratings_count"`
	Released        string  `json:"released"`
	BackgroundImage string  `json:"background_image"`
	Genres          []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Stores []struct {
		URL   string `json:"url"`
		Store struct {
			ID int `json:"id"`
		} `json:"store"`
	} `json:"stores"`
}

type searchResponse struct {
	Count   int           `json:"count"`
	Results []gamePayload `json:"results"`
}

func (p gamePayload) toListed() types.ListedGame {
	genres := make([]string, 0, len(p.Genres))
	for _, g := range p.Genres {
		genres = append(genres, g.Name)
	}
	return types.ListedGame{
		ID:              p.ID,
		Name:            p.Name,
		Rating:          p.Rating,
		RatingsCount:    p.RatingsCount,
		Genres:          genres,
		Released:        p.Released,
		BackgroundImage: p.BackgroundImage,
	}
}

func (c *Client) search(ctx context.Context, params SearchParams) (*searchResponse, error) {
	query := url.Values{"key": {c.cfg.APIKey}}
	pageSize := params.PageSize
	if pageSize == 0 {
		pageSize = 20
	}
	query.Set("page_size", strconv.Itoa(pageSize))
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}
	if params.Search != "" {
		query.Set("search", params.Search)
	}
	if params.Genres != "" {
		query.Set("genres", params.Genres)
	}
	if params.Tags != "" {
		query.Set("tags", params.Tags)
	}
	if params.Ordering != "" {
		query.Set("ordering", params.Ordering)
	}
	if params.Metacritic != "" {
		query.Set("metacritic", params.Metacritic)
	}
	if params.Stores != "" {
		query.Set("stores", params.Stores)
	}

	var resp searchResponse
	if err := c.http.GetJSON(ctx, c.cfg.BaseURL+"/games", query, &resp); err != nil {
		return nil, fmt.Errorf("search rawg games: %w", err)
	}
	return &resp, nil
}

// SearchGames runs a filtered games query and returns lightweight
// discovery records.
func (c *Client) SearchGames(ctx context.Context, params SearchParams) ([]types.ListedGame, error) {
	resp, err := c.search(ctx, params)
	if err != nil {
		return nil, err
	}
	listed := make([]types.ListedGame, 0, len(resp.Results))
	for _, r := range resp.Results {
		listed = append(listed, r.toListed())
	}
	return listed, nil
}

// SearchByGenre returns the genre's games ordered by rating descending.
func (c *Client) SearchByGenre(ctx context.Context, genre string, limit int) ([]types.ListedGame, error) {
	return c.SearchGames(ctx, SearchParams{
		Genres:   genre,
		Ordering: "-rating",
		PageSize: limit,
	})
}

// TopRated returns well-reviewed games, excluding entries below the
// vote-count floor whose scores are statistically unreliable.
func (c *Client) TopRated(ctx context.Context, minRating float64) ([]types.ListedGame, error) {
	resp, err := c.search(ctx, SearchParams{
		Ordering:   "-rating",
		Metacritic: "80,100",
		PageSize:   40,
	})
	if err != nil {
		return nil, err
	}

	var filtered []types.ListedGame
	for _, r := range resp.Results {
		if r.Rating >= minRating && r.RatingsCount > c.cfg.MinVotes {
			filtered = append(filtered, r.toListed())
		}
	}
	return filtered, nil
}

// FindSteamApp searches the metadata API for a game by name and extracts
// its Steam app id from the store links. Returns found=false when the
// game has no Steam presence, which is not an error.
func (c *Client) FindSteamApp(ctx context.Context, name string) (int, bool, error) {
	resp, err := c.search(ctx, SearchParams{
		Search:   name,
		Stores:   strconv.Itoa(steamStoreID),
		PageSize: 1,
	})
	if err != nil {
		return 0, false, err
	}
	if len(resp.Results) == 0 {
		return 0, false, nil
	}

	for _, store := range resp.Results[0].Stores {
		if store.Store.ID != steamStoreID || store.URL == "" {
			continue
		}
		m := steamAppURLPattern.FindStringSubmatch(store.URL)
		if m == nil {
			continue
		}
		appID, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return appID, true, nil
	}
	return 0, false, nil
}
