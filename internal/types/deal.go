package types

// Deal is one pricing entry from the deals API.
type Deal struct {
	Title    string  `json:"title"`
	Plain    string  `json:"plain"`
	PriceNew float64 `json:"price_new"`
	PriceOld float64 `json:"price_old"`
	PriceCut int     `json:"price_cut"`
	ShopName string  `json:"shop_name"`
	BuyURL   string  `json:"buy_url,omitempty"`
	GameURL  string  `json:"game_url,omitempty"`
}
