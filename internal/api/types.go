package api

// MarketRow is one element of GET /coins/markets.
type MarketRow struct {
	ID            string   `json:"id"`
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	Image         string   `json:"image"`
	CurrentPrice  *float64 `json:"current_price"`
	MarketCap     *float64 `json:"market_cap"`
	MarketCapRank *int     `json:"market_cap_rank"`

	// Percent changes
	Change24h *float64 `json:"price_change_percentage_24h"`
	Change7d  *float64 `json:"price_change_percentage_7d_in_currency"`
	Change30d *float64 `json:"price_change_percentage_30d_in_currency"`
}

// GlobalResponse from GET /global
type GlobalResponse struct {
	Data GlobalData `json:"data"`
}

// GlobalData is the payload of GET /global.
type GlobalData struct {
	ActiveCryptocurrencies *int               `json:"active_cryptocurrencies"`
	TotalMarketCap         map[string]float64 `json:"total_market_cap"`
	TotalVolume            map[string]float64 `json:"total_volume"`
	MarketCapPercentage    map[string]float64 `json:"market_cap_percentage"`
}

// TrendingResponse from GET /search/trending
type TrendingResponse struct {
	Coins []TrendingCoin `json:"coins"`
}

// TrendingCoin wraps a trending item.
type TrendingCoin struct {
	Item TrendingItem `json:"item"`
}

// TrendingItem represents a coin from the trending search.
type TrendingItem struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank *int   `json:"market_cap_rank"`
	Score         int    `json:"score"`
	Small         string `json:"small"`
	Thumb         string `json:"thumb"`
}

// CoinDetailResponse from GET /coins/{id}
type CoinDetailResponse struct {
	ID          string            `json:"id"`
	Symbol      string            `json:"symbol"`
	Name        string            `json:"name"`
	Description map[string]string `json:"description"`
	Links       struct {
		Homepage []string `json:"homepage"`
	} `json:"links"`
	Image struct {
		Large string `json:"large"`
		Small string `json:"small"`
	} `json:"image"`
	MarketData struct {
		CurrentPrice map[string]float64 `json:"current_price"`
		MarketCap    map[string]float64 `json:"market_cap"`
		High24h      map[string]float64 `json:"high_24h"`
		Low24h       map[string]float64 `json:"low_24h"`
		Change24h    *float64           `json:"price_change_percentage_24h"`
		Change7d     *float64           `json:"price_change_percentage_7d"`
		Change30d    *float64           `json:"price_change_percentage_30d"`
	} `json:"market_data"`
}

// CoinDeskArticle is one element of the primary news feed.
type CoinDeskArticle struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// CryptoCompareResponse from GET /data/v2/news/
type CryptoCompareResponse struct {
	Data []CryptoCompareArticle `json:"Data"`
}

// CryptoCompareArticle is one element of the backup news feed.
type CryptoCompareArticle struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source"`
}

// ChatRequest is the body of the outbound chat call.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the reply of the outbound chat call.
type ChatResponse struct {
	Reply string `json:"reply"`
}
