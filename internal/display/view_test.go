package display

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/cryptoverse/internal/market"
	"github.com/rickgao/cryptoverse/internal/model"
)

func TestFromState(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	st := market.State{
		Snapshot: model.MarketSnapshot{
			TopCoins: []model.CoinQuote{{
				ID:           "bitcoin",
				Name:         "Bitcoin",
				Symbol:       "btc",
				CurrentPrice: decimal.NewFromInt(67000),
				Change24h:    ptr(1.5),
				MarketCap:    decimal.NewNullDecimal(decimal.NewFromInt(1_320_000_000_000)),
			}},
			TrendingCoins: []model.TrendingEntry{{ID: "pepe", Name: "Pepe", Symbol: "pepe", Score: 2}},
			Global: model.GlobalStats{
				TotalMarketCap: decimal.NewNullDecimal(decimal.NewFromInt(2_400_000_000_000)),
				Dominance:      map[string]float64{"btc": 52.14},
			},
		},
		Phase:     market.PhaseReady,
		UpdatedAt: now,
	}

	m := FromState(st)

	require.Len(t, m.Coins, 1)
	c := m.Coins[0]
	assert.Equal(t, "BTC", c.Symbol)
	assert.Equal(t, "$67,000.00", c.Price)
	assert.Equal(t, "+1.50%", c.Change24h)
	assert.Equal(t, "N/A", c.Change7d)
	assert.Equal(t, "$1.32T", c.MarketCap)
	assert.Equal(t, "up", c.Trend)

	require.Len(t, m.Trending, 1)
	assert.Equal(t, "PEPE", m.Trending[0].Symbol)
	assert.Equal(t, "N/A", m.Trending[0].Rank)

	assert.Equal(t, "$2.4T", m.Global.MarketCap)
	assert.Equal(t, "$0", m.Global.Volume)
	assert.Equal(t, "52.1%", m.Global.BTCDominance)
	assert.Equal(t, "0.0%", m.Global.ETHDominance)
	assert.Equal(t, "0", m.Global.ActiveAssets)

	assert.Equal(t, "ready", m.Phase)
	require.NotNil(t, m.UpdatedAt)
	assert.True(t, now.Equal(*m.UpdatedAt))
}

func TestFromState_Empty(t *testing.T) {
	m := FromState(market.State{Phase: market.PhaseIdle})

	assert.NotNil(t, m.Coins)
	assert.NotNil(t, m.Trending)
	assert.Empty(t, m.Coins)
	assert.Nil(t, m.UpdatedAt)
	assert.Equal(t, "$0", m.Global.MarketCap)
}
