package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newCoinGeckoServer(t *testing.T, handler http.HandlerFunc) *CoinGecko {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewCoinGecko(NewClient(server.URL), "")
}

func TestCoinGecko_TopCoins(t *testing.T) {
	g := newCoinGeckoServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coins/markets" {
			t.Errorf("path = %q, want /coins/markets", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("vs_currency") != "usd" {
			t.Errorf("vs_currency = %q, want usd", q.Get("vs_currency"))
		}
		if q.Get("order") != "market_cap_desc" {
			t.Errorf("order = %q, want market_cap_desc", q.Get("order"))
		}
		if q.Get("per_page") != "2" {
			t.Errorf("per_page = %q, want 2", q.Get("per_page"))
		}
		if q.Get("price_change_percentage") != "24h,7d,30d" {
			t.Errorf("price_change_percentage = %q", q.Get("price_change_percentage"))
		}
		w.Write([]byte(`[
			{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":67000.5,"market_cap":1300000000000,
			 "price_change_percentage_24h":1.5,"price_change_percentage_7d_in_currency":-2.25,"price_change_percentage_30d_in_currency":null},
			{"id":"","symbol":"bad","name":"No ID"},
			{"id":"ethereum","symbol":"eth","name":"Ethereum","current_price":3500,"market_cap":null},
			{"id":"tether","symbol":"usdt","name":"Tether","current_price":1}
		]`))
	})

	coins, err := g.TopCoins(context.Background(), 2)
	if err != nil {
		t.Fatalf("TopCoins failed: %v", err)
	}
	if len(coins) != 2 {
		t.Fatalf("len(coins) = %d, want 2", len(coins))
	}
	if coins[0].ID != "bitcoin" || coins[1].ID != "ethereum" {
		t.Errorf("order = [%s %s], want [bitcoin ethereum]", coins[0].ID, coins[1].ID)
	}
	if coins[0].CurrentPrice.String() != "67000.5" {
		t.Errorf("CurrentPrice = %s, want 67000.5", coins[0].CurrentPrice)
	}
	if coins[0].Change24h == nil || *coins[0].Change24h != 1.5 {
		t.Errorf("Change24h = %v, want 1.5", coins[0].Change24h)
	}
	if coins[0].Change7d == nil || *coins[0].Change7d != -2.25 {
		t.Errorf("Change7d = %v, want -2.25", coins[0].Change7d)
	}
	if coins[0].Change30d != nil {
		t.Errorf("Change30d = %v, want nil", *coins[0].Change30d)
	}
	if coins[1].MarketCap.Valid {
		t.Errorf("MarketCap should be absent for null input")
	}
}

func TestCoinGecko_MalformedPayloadIsEmpty(t *testing.T) {
	g := newCoinGeckoServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/coins/markets":
			w.Write([]byte(`{"status":{"error_code":429}}`))
		case "/global":
			w.Write([]byte(`not json`))
		case "/search/trending":
			w.Write([]byte(``))
		}
	})
	ctx := context.Background()

	coins, err := g.TopCoins(ctx, 10)
	if err != nil {
		t.Errorf("TopCoins err = %v, want nil", err)
	}
	if coins == nil || len(coins) != 0 {
		t.Errorf("TopCoins = %v, want empty non-nil", coins)
	}

	stats, err := g.GlobalStats(ctx)
	if err != nil {
		t.Errorf("GlobalStats err = %v, want nil", err)
	}
	if !stats.IsEmpty() {
		t.Errorf("GlobalStats = %+v, want empty", stats)
	}

	trending, err := g.TrendingCoins(ctx)
	if err != nil {
		t.Errorf("TrendingCoins err = %v, want nil", err)
	}
	if len(trending) != 0 {
		t.Errorf("TrendingCoins = %v, want empty", trending)
	}
}

func TestCoinGecko_TransportFailure(t *testing.T) {
	g := newCoinGeckoServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	ctx := context.Background()

	if _, err := g.TopCoins(ctx, 10); err == nil {
		t.Error("TopCoins: expected error")
	}
	if _, err := g.GlobalStats(ctx); err == nil {
		t.Error("GlobalStats: expected error")
	}
	_, err := g.TrendingCoins(ctx)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadGateway {
		t.Errorf("TrendingCoins err = %v, want APIError 502", err)
	}
}

func TestCoinGecko_GlobalStats(t *testing.T) {
	g := newCoinGeckoServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{
			"active_cryptocurrencies": 13500,
			"total_market_cap": {"usd": 2450000000000, "eur": 2200000000000},
			"total_volume": {"usd": 98000000000},
			"market_cap_percentage": {"btc": 52.3, "ETH": 16.9}
		}}`))
	})

	stats, err := g.GlobalStats(context.Background())
	if err != nil {
		t.Fatalf("GlobalStats failed: %v", err)
	}
	if !stats.TotalMarketCap.Valid || stats.TotalMarketCap.Decimal.String() != "2450000000000" {
		t.Errorf("TotalMarketCap = %+v", stats.TotalMarketCap)
	}
	if !stats.TotalVolume.Valid {
		t.Error("TotalVolume should be set")
	}
	if stats.Dominance["btc"] != 52.3 || stats.Dominance["eth"] != 16.9 {
		t.Errorf("Dominance = %v", stats.Dominance)
	}
	if stats.ActiveAssets == nil || *stats.ActiveAssets != 13500 {
		t.Errorf("ActiveAssets = %v, want 13500", stats.ActiveAssets)
	}
}

func TestCoinGecko_TrendingCoins(t *testing.T) {
	g := newCoinGeckoServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"coins":[
			{"item":{"id":"pepe","name":"Pepe","symbol":"PEPE","market_cap_rank":30,"score":0,"small":"s.png"}},
			{"item":{"id":"newcoin","name":"New","symbol":"NEW","market_cap_rank":null,"score":1,"thumb":"t.png"}}
		]}`))
	})

	entries, err := g.TrendingCoins(context.Background())
	if err != nil {
		t.Fatalf("TrendingCoins failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Rank == nil || *entries[0].Rank != 30 {
		t.Errorf("Rank = %v, want 30", entries[0].Rank)
	}
	if entries[1].Rank != nil {
		t.Errorf("Rank = %v, want nil", *entries[1].Rank)
	}
	if entries[0].Thumb != "s.png" || entries[1].Thumb != "t.png" {
		t.Errorf("Thumb = [%q %q]", entries[0].Thumb, entries[1].Thumb)
	}
}

func TestCoinGecko_CoinDetails(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		g := newCoinGeckoServer(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/coins/bitcoin" {
				t.Errorf("path = %q, want /coins/bitcoin", r.URL.Path)
			}
			if r.URL.Query().Get("market_data") != "true" {
				t.Error("market_data should be requested")
			}
			w.Write([]byte(`{"id":"bitcoin","symbol":"btc","name":"Bitcoin",
				"description":{"en":"Digital gold"},
				"links":{"homepage":["","https://bitcoin.org"]},
				"market_data":{"current_price":{"usd":67000},"price_change_percentage_24h":1.2}}`))
		})

		detail, err := g.CoinDetails(context.Background(), "bitcoin")
		if err != nil {
			t.Fatalf("CoinDetails failed: %v", err)
		}
		if detail == nil {
			t.Fatal("detail is nil")
		}
		if detail.Homepage != "https://bitcoin.org" {
			t.Errorf("Homepage = %q", detail.Homepage)
		}
		if detail.Description != "Digital gold" {
			t.Errorf("Description = %q", detail.Description)
		}
		if !detail.CurrentPrice.Valid || detail.CurrentPrice.Decimal.IntPart() != 67000 {
			t.Errorf("CurrentPrice = %+v", detail.CurrentPrice)
		}
		if detail.MarketCap.Valid {
			t.Error("MarketCap should be absent")
		}
	})

	t.Run("not found", func(t *testing.T) {
		g := newCoinGeckoServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"coin not found"}`))
		})

		_, err := g.CoinDetails(context.Background(), "nope")
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
			t.Errorf("err = %v, want APIError 404", err)
		}
	})
}
