package api

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rickgao/cryptoverse/internal/model"
)

// PriceToDecimal converts an optional upstream price to a non-negative decimal.
// nil or negative input yields zero.
func PriceToDecimal(v *float64) decimal.Decimal {
	if v == nil || *v < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*v)
}

// AmountToNull converts an optional upstream amount to a nullable decimal.
// nil or negative input yields an invalid (absent) value.
func AmountToNull(v *float64) decimal.NullDecimal {
	if v == nil || *v < 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(*v))
}

// lookupAmount reads a per-currency amount from an upstream map.
func lookupAmount(m map[string]float64, currency string) decimal.NullDecimal {
	v, ok := m[strings.ToLower(currency)]
	if !ok {
		return decimal.NullDecimal{}
	}
	return AmountToNull(&v)
}

// ToModel converts a MarketRow to model.CoinQuote.
func (r *MarketRow) ToModel() model.CoinQuote {
	return model.CoinQuote{
		ID:            r.ID,
		Name:          r.Name,
		Symbol:        r.Symbol,
		Image:         r.Image,
		CurrentPrice:  PriceToDecimal(r.CurrentPrice),
		Change24h:     r.Change24h,
		Change7d:      r.Change7d,
		Change30d:     r.Change30d,
		MarketCap:     AmountToNull(r.MarketCap),
		MarketCapRank: r.MarketCapRank,
	}
}

// ToModel converts GlobalData to model.GlobalStats for the given quote currency.
func (g *GlobalData) ToModel(currency string) model.GlobalStats {
	stats := model.GlobalStats{
		TotalMarketCap: lookupAmount(g.TotalMarketCap, currency),
		TotalVolume:    lookupAmount(g.TotalVolume, currency),
	}
	if len(g.MarketCapPercentage) > 0 {
		stats.Dominance = make(map[string]float64, len(g.MarketCapPercentage))
		for asset, pct := range g.MarketCapPercentage {
			stats.Dominance[strings.ToLower(asset)] = pct
		}
	}
	if g.ActiveCryptocurrencies != nil && *g.ActiveCryptocurrencies >= 0 {
		n := *g.ActiveCryptocurrencies
		stats.ActiveAssets = &n
	}
	return stats
}

// ToModel converts a TrendingItem to model.TrendingEntry.
func (t *TrendingItem) ToModel() model.TrendingEntry {
	thumb := t.Small
	if thumb == "" {
		thumb = t.Thumb
	}
	return model.TrendingEntry{
		ID:     t.ID,
		Name:   t.Name,
		Symbol: t.Symbol,
		Thumb:  thumb,
		Rank:   t.MarketCapRank,
		Score:  t.Score,
	}
}

// ToModel converts a CoinDetailResponse to model.CoinDetail.
func (d *CoinDetailResponse) ToModel(currency string) model.CoinDetail {
	var homepage string
	for _, h := range d.Links.Homepage {
		if h != "" {
			homepage = h
			break
		}
	}
	image := d.Image.Large
	if image == "" {
		image = d.Image.Small
	}
	return model.CoinDetail{
		ID:           d.ID,
		Name:         d.Name,
		Symbol:       d.Symbol,
		Description:  d.Description["en"],
		Homepage:     homepage,
		Image:        image,
		CurrentPrice: lookupAmount(d.MarketData.CurrentPrice, currency),
		MarketCap:    lookupAmount(d.MarketData.MarketCap, currency),
		High24h:      lookupAmount(d.MarketData.High24h, currency),
		Low24h:       lookupAmount(d.MarketData.Low24h, currency),
		Change24h:    d.MarketData.Change24h,
		Change7d:     d.MarketData.Change7d,
		Change30d:    d.MarketData.Change30d,
	}
}
