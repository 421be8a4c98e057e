package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rickgao/cryptoverse/internal/model"
)

// DefaultCurrency is the quote currency used when none is configured.
const DefaultCurrency = "usd"

// CoinGecko fetches market data from the CoinGecko v3 API.
type CoinGecko struct {
	client   *Client
	currency string
}

// NewCoinGecko creates a CoinGecko source quoting in currency.
func NewCoinGecko(client *Client, currency string) *CoinGecko {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &CoinGecko{client: client, currency: currency}
}

// Currency returns the quote currency.
func (g *CoinGecko) Currency() string {
	return g.currency
}

// TopCoins fetches the first page of coins ordered by market cap.
// The result keeps the upstream rank order and holds at most limit entries.
func (g *CoinGecko) TopCoins(ctx context.Context, limit int) ([]model.CoinQuote, error) {
	query := url.Values{}
	query.Set("vs_currency", g.currency)
	query.Set("order", "market_cap_desc")
	if limit > 0 {
		query.Set("per_page", strconv.Itoa(limit))
	}
	query.Set("page", "1")
	query.Set("sparkline", "false")
	query.Set("price_change_percentage", "24h,7d,30d")

	body, err := g.client.get(ctx, "/coins/markets", query)
	if err != nil {
		return nil, fmt.Errorf("get top coins: %w", err)
	}

	var rows []MarketRow
	if !g.client.decode(body, &rows, "coins/markets") {
		return []model.CoinQuote{}, nil
	}

	coins := make([]model.CoinQuote, 0, len(rows))
	for i := range rows {
		if rows[i].ID == "" {
			continue
		}
		coins = append(coins, rows[i].ToModel())
		if limit > 0 && len(coins) == limit {
			break
		}
	}
	return coins, nil
}

// GlobalStats fetches aggregate market statistics.
func (g *CoinGecko) GlobalStats(ctx context.Context) (model.GlobalStats, error) {
	body, err := g.client.get(ctx, "/global", nil)
	if err != nil {
		return model.GlobalStats{}, fmt.Errorf("get global stats: %w", err)
	}

	var resp GlobalResponse
	if !g.client.decode(body, &resp, "global") {
		return model.GlobalStats{}, nil
	}
	return resp.Data.ToModel(g.currency), nil
}

// TrendingCoins fetches the trending search list.
func (g *CoinGecko) TrendingCoins(ctx context.Context) ([]model.TrendingEntry, error) {
	body, err := g.client.get(ctx, "/search/trending", nil)
	if err != nil {
		return nil, fmt.Errorf("get trending coins: %w", err)
	}

	var resp TrendingResponse
	if !g.client.decode(body, &resp, "search/trending") {
		return []model.TrendingEntry{}, nil
	}

	entries := make([]model.TrendingEntry, 0, len(resp.Coins))
	for i := range resp.Coins {
		if resp.Coins[i].Item.ID == "" {
			continue
		}
		entries = append(entries, resp.Coins[i].Item.ToModel())
	}
	return entries, nil
}

// CoinDetails fetches a single coin. A malformed payload yields (nil, nil).
func (g *CoinGecko) CoinDetails(ctx context.Context, id string) (*model.CoinDetail, error) {
	query := url.Values{}
	query.Set("localization", "false")
	query.Set("tickers", "false")
	query.Set("market_data", "true")
	query.Set("community_data", "false")
	query.Set("developer_data", "false")
	query.Set("sparkline", "false")

	body, err := g.client.get(ctx, "/coins/"+url.PathEscape(id), query)
	if err != nil {
		return nil, fmt.Errorf("get coin %s: %w", id, err)
	}

	var resp CoinDetailResponse
	if !g.client.decode(body, &resp, "coins/"+id) || resp.ID == "" {
		return nil, nil
	}
	detail := resp.ToModel(g.currency)
	return &detail, nil
}
