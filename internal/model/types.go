package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Market Types
// -----------------------------------------------------------------------------

// CoinQuote is one row of the top-coins listing.
type CoinQuote struct {
	ID            string              `json:"id"` // Unique key (e.g., "bitcoin")
	Name          string              `json:"name"`
	Symbol        string              `json:"symbol"`
	Image         string              `json:"image,omitempty"`
	CurrentPrice  decimal.Decimal     `json:"current_price"` // Never negative
	Change24h     *float64            `json:"change_24h,omitempty"`
	Change7d      *float64            `json:"change_7d,omitempty"`
	Change30d     *float64            `json:"change_30d,omitempty"`
	MarketCap     decimal.NullDecimal `json:"market_cap"`
	MarketCapRank *int                `json:"market_cap_rank,omitempty"`
}

// TrendingEntry is one coin from the trending search.
type TrendingEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Thumb  string `json:"thumb,omitempty"`
	Rank   *int   `json:"rank,omitempty"` // nil renders as "N/A"
	Score  int    `json:"score"`
}

// GlobalStats holds aggregate market figures. Every field is optional.
type GlobalStats struct {
	TotalMarketCap decimal.NullDecimal `json:"total_market_cap"`
	TotalVolume    decimal.NullDecimal `json:"total_volume"`
	Dominance      map[string]float64  `json:"dominance,omitempty"` // asset symbol -> percent
	ActiveAssets   *int                `json:"active_assets,omitempty"`
}

// IsEmpty reports whether no field of the record is known.
func (g GlobalStats) IsEmpty() bool {
	return !g.TotalMarketCap.Valid &&
		!g.TotalVolume.Valid &&
		len(g.Dominance) == 0 &&
		g.ActiveAssets == nil
}

// Clone returns a copy that shares no mutable state with g.
func (g GlobalStats) Clone() GlobalStats {
	out := g
	if g.Dominance != nil {
		out.Dominance = make(map[string]float64, len(g.Dominance))
		for k, v := range g.Dominance {
			out.Dominance[k] = v
		}
	}
	if g.ActiveAssets != nil {
		n := *g.ActiveAssets
		out.ActiveAssets = &n
	}
	return out
}

// MarketSnapshot is the merged, display-ready market state.
type MarketSnapshot struct {
	TopCoins      []CoinQuote     `json:"top_coins"`      // Source rank order
	TrendingCoins []TrendingEntry `json:"trending_coins"` // Source order
	Global        GlobalStats     `json:"global"`
}

// Clone returns a deep copy safe to hand to readers outside the owning component.
func (s MarketSnapshot) Clone() MarketSnapshot {
	out := MarketSnapshot{
		TopCoins:      make([]CoinQuote, len(s.TopCoins)),
		TrendingCoins: make([]TrendingEntry, len(s.TrendingCoins)),
		Global:        s.Global.Clone(),
	}
	copy(out.TopCoins, s.TopCoins)
	copy(out.TrendingCoins, s.TrendingCoins)
	return out
}

// CoinDetail is the single-coin view returned by the details endpoint.
type CoinDetail struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Symbol       string              `json:"symbol"`
	Description  string              `json:"description,omitempty"`
	Homepage     string              `json:"homepage,omitempty"`
	Image        string              `json:"image,omitempty"`
	CurrentPrice decimal.NullDecimal `json:"current_price"`
	MarketCap    decimal.NullDecimal `json:"market_cap"`
	High24h      decimal.NullDecimal `json:"high_24h"`
	Low24h       decimal.NullDecimal `json:"low_24h"`
	Change24h    *float64            `json:"change_24h,omitempty"`
	Change7d     *float64            `json:"change_7d,omitempty"`
	Change30d    *float64            `json:"change_30d,omitempty"`
}

// -----------------------------------------------------------------------------
// News Types
// -----------------------------------------------------------------------------

// Category tags a news item for ticker iconography and sentiment.
type Category string

const (
	CategoryAlert  Category = "alert"
	CategoryMarket Category = "market"
	CategoryUpdate Category = "update"
)

// Headline is a raw item as delivered by a news source, before normalization.
type Headline struct {
	Title  string
	URL    string
	Source string
}

// NewsItem is a normalized ticker entry.
type NewsItem struct {
	ID       string   `json:"id"` // Unique per batch, never reused across refreshes
	Category Category `json:"type"`
	Text     string   `json:"text"`
	Source   string   `json:"source,omitempty"`
	URL      string   `json:"url,omitempty"`
}

// -----------------------------------------------------------------------------
// Chat Types
// -----------------------------------------------------------------------------

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	ChatRoleUser ChatRole = "user"
	ChatRoleBot  ChatRole = "bot"
)

// ChatMessage is one entry of a chat transcript.
type ChatMessage struct {
	Role ChatRole  `json:"type"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}
