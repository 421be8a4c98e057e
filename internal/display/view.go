package display

import (
	"strings"
	"time"

	"github.com/rickgao/cryptoverse/internal/market"
	"github.com/rickgao/cryptoverse/internal/model"
)

// Coin is one formatted row of the top-coins table.
type Coin struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Symbol    string `json:"symbol"`
	Image     string `json:"image,omitempty"`
	Price     string `json:"price"`
	Change24h string `json:"change_24h"`
	Change7d  string `json:"change_7d"`
	Change30d string `json:"change_30d"`
	MarketCap string `json:"market_cap"`
	Trend     string `json:"trend"`
}

// Trending is one formatted trending entry.
type Trending struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Thumb  string `json:"thumb,omitempty"`
	Rank   string `json:"rank"`
	Score  int    `json:"score"`
}

// Global is the formatted header strip.
type Global struct {
	MarketCap    string `json:"market_cap"`
	Volume       string `json:"volume"`
	BTCDominance string `json:"btc_dominance"`
	ETHDominance string `json:"eth_dominance"`
	ActiveAssets string `json:"active_assets"`
}

// Market is the formatted aggregator state.
type Market struct {
	Coins     []Coin     `json:"coins"`
	Trending  []Trending `json:"trending"`
	Global    Global     `json:"global"`
	Phase     string     `json:"phase"`
	Loading   bool       `json:"loading"`
	Error     string     `json:"error,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// FromState formats an aggregator state.
func FromState(st market.State) Market {
	snap := st.Snapshot
	out := Market{
		Coins:    make([]Coin, 0, len(snap.TopCoins)),
		Trending: make([]Trending, 0, len(snap.TrendingCoins)),
		Global:   FromGlobal(snap.Global),
		Phase:    string(st.Phase),
		Loading:  st.Loading,
		Error:    st.Err,
	}
	if !st.UpdatedAt.IsZero() {
		t := st.UpdatedAt
		out.UpdatedAt = &t
	}

	for _, c := range snap.TopCoins {
		out.Coins = append(out.Coins, FromQuote(c))
	}
	for _, t := range snap.TrendingCoins {
		out.Trending = append(out.Trending, Trending{
			ID:     t.ID,
			Name:   t.Name,
			Symbol: strings.ToUpper(t.Symbol),
			Thumb:  t.Thumb,
			Rank:   Rank(t.Rank),
			Score:  t.Score,
		})
	}
	return out
}

// FromQuote formats one coin.
func FromQuote(c model.CoinQuote) Coin {
	return Coin{
		ID:        c.ID,
		Name:      c.Name,
		Symbol:    strings.ToUpper(c.Symbol),
		Image:     c.Image,
		Price:     Price(c.CurrentPrice),
		Change24h: Percent(c.Change24h),
		Change7d:  Percent(c.Change7d),
		Change30d: Percent(c.Change30d),
		MarketCap: MarketCap(c.MarketCap),
		Trend:     Trend(c.Change24h),
	}
}

// FromGlobal formats the global stats. Absent fields read as zero.
func FromGlobal(g model.GlobalStats) Global {
	return Global{
		MarketCap:    Compact(g.TotalMarketCap),
		Volume:       Compact(g.TotalVolume),
		BTCDominance: Share(g.Dominance["btc"]),
		ETHDominance: Share(g.Dominance["eth"]),
		ActiveAssets: Count(g.ActiveAssets),
	}
}
