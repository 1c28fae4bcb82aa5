package itad

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/dumpling2/steam-game-suggester/internal/httpx"
	"github.com/dumpling2/steam-game-suggester/internal/logger"
	"github.com/dumpling2/steam-game-suggester/internal/types"
)

type Config struct {
	BaseURL string
	APIKey  string
	Country string
	Shops   string
}

// Client is the pricing/deals adapter. It is optional: without an API
// key every query returns empty results rather than an error, and the
// engine degrades to catalog-derived pricing.
type Client struct {
	cfg  Config
	http *httpx.Client
	log  *logger.Logger
}

func NewClient(cfg Config, httpClient *httpx.Client, baseLog *logger.Logger) *Client {
	c := &Client{
		cfg:  cfg,
		http: httpClient,
		log:  baseLog.With("client", "ItadClient"),
	}
	if !c.Enabled() {
		c.log.Info("ITAD API key not configured, deals queries will return empty results")
	}
	return c
}

func (c *Client) Enabled() bool { return c.cfg.APIKey != "" }

type dealPayload struct {
	Title    string  `json:"title"`
	Plain    string  `json:"plain"`
	PriceNew float64 `json:"price_new"`
	PriceOld float64 `json:"price_old"`
	PriceCut int     `json:"price_cut"`
	Shop     struct {
		Name string `json:"name"`
	} `json:"shop"`
	URLs struct {
		Buy  string `json:"buy"`
		Game string `json:"game"`
	} `json:"urls"`
}

type dealsResponse struct {
	Data struct {
		List []dealPayload `json:"list"`
	} `json:"data"`
	// Older endpoints return the list at the top level.
	List []dealPayload `json:"list"`
}

func (r *dealsResponse) deals() []dealPayload {
	if len(r.Data.List) > 0 {
		return r.Data.List
	}
	return r.List
}

func (p dealPayload) toDeal() types.Deal {
	shop := p.Shop.Name
	if shop == "" {
		shop = "Steam"
	}
	return types.Deal{
		Title:    p.Title,
		Plain:    p.Plain,
		PriceNew: p.PriceNew,
		PriceOld: p.PriceOld,
		PriceCut: p.PriceCut,
		ShopName: shop,
		BuyURL:   p.URLs.Buy,
		GameURL:  p.URLs.Game,
	}
}

type DealsOpts struct {
	Limit    int
	Offset   int
	Sort     string
	MaxPrice *float64
}

// Deals lists current deals with the given filters.
func (c *Client) Deals(ctx context.Context, opts DealsOpts) ([]types.Deal, error) {
	if !c.Enabled() {
		return nil, nil
	}

	limit := opts.Limit
	if limit == 0 {
		limit = 20
	}
	sort := opts.Sort
	if sort == "" {
		sort = "price:asc"
	}
	query := url.Values{
		"key":     {c.cfg.APIKey},
		"country": {c.cfg.Country},
		"shops":   {c.cfg.Shops},
		"limit":   {strconv.Itoa(limit)},
		"sort":    {sort},
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.MaxPrice != nil {
		query.Set("price_max", strconv.FormatFloat(*opts.MaxPrice, 'f', 2, 64))
	}

	var resp dealsResponse
	if err := c.http.GetJSON(ctx, c.cfg.BaseURL+"/deals/v01/list", query, &resp); err != nil {
		return nil, fmt.Errorf("fetch deals list: %w", err)
	}

	payloads := resp.deals()
	deals := make([]types.Deal, 0, len(payloads))
	for _, p := range payloads {
		deals = append(deals, p.toDeal())
	}
	return deals, nil
}

// TopDeals returns the deepest current discounts at or above minDiscount
// percent.
func (c *Client) TopDeals(ctx context.Context, minDiscount int) ([]types.Deal, error) {
	if !c.Enabled() {
		return nil, nil
	}

	deals, err := c.Deals(ctx, DealsOpts{Limit: 50, Sort: "cut:desc"})
	if err != nil {
		return nil, err
	}
	var filtered []types.Deal
	for _, d := range deals {
		if d.PriceCut >= minDiscount {
			filtered = append(filtered, d)
		}
	}
	return filtered, nil
}

// DealsByPriceRange lists deals priced at or under maxPrice. When free
// is set only zero-price entries qualify.
func (c *Client) DealsByPriceRange(ctx context.Context, maxPrice float64, free bool) ([]types.Deal, error) {
	if !c.Enabled() {
		return nil, nil
	}

	limit := maxPrice
	if free {
		limit = 0
	}
	return c.Deals(ctx, DealsOpts{Limit: 30, Sort: "price:asc", MaxPrice: &limit})
}
