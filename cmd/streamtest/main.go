// streamtest connects to a running dashboard's WebSocket stream and prints
// market and news envelopes to the console.
// Usage: go run ./cmd/streamtest --url ws://localhost:8080/ws
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rickgao/cryptoverse/internal/connection"
)

func main() {
	url := flag.String("url", "ws://localhost:8080/ws", "dashboard WebSocket URL")
	origin := flag.String("origin", "", "Origin header to send")
	pause := flag.Duration("pause-after", 0, "send a pause signal after this long, then resume after the same delay (0 disables)")
	verbose := flag.Bool("verbose", false, "print full envelope JSON")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	cfg := connection.DefaultClientConfig()
	cfg.URL = *url
	cfg.Origin = *origin

	client := connection.NewClient(cfg, logger)
	if err := client.Connect(ctx); err != nil {
		logger.Error("failed to connect", "url", *url, "error", err)
		os.Exit(1)
	}
	defer client.Close()

	if *pause > 0 {
		go togglePause(ctx, client, *pause, logger)
	}

	logger.Info("streaming started - press Ctrl+C to stop")

	var markets, newsViews int
	stats := time.NewTicker(30 * time.Second)
	defer stats.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutdown complete", "market_envelopes", markets, "news_envelopes", newsViews)
			return

		case err := <-client.Errors():
			logger.Error("stream failed", "error", err)
			os.Exit(1)

		case <-stats.C:
			logger.Info("stats",
				"connected", client.IsConnected(),
				"market_envelopes", markets,
				"news_envelopes", newsViews,
			)

		case env := <-client.Envelopes():
			if *verbose {
				data, _ := json.MarshalIndent(env.Data, "", "  ")
				fmt.Printf("[%s] %s\n", env.Type, data)
			}

			switch env.Type {
			case connection.TypeMarket:
				markets++
				if !*verbose {
					printMarket(env, logger)
				}
			case connection.TypeNews:
				newsViews++
				if !*verbose {
					printNews(env, logger)
				}
			default:
				logger.Warn("unknown envelope", "type", env.Type)
			}
		}
	}
}

func togglePause(ctx context.Context, client connection.Client, after time.Duration, logger *slog.Logger) {
	for _, step := range []func() error{client.Pause, client.Resume} {
		select {
		case <-ctx.Done():
			return
		case <-time.After(after):
		}
		if err := step(); err != nil {
			logger.Warn("failed to send ticker signal", "error", err)
			return
		}
	}
}

func printMarket(env connection.Envelope, logger *slog.Logger) {
	m, err := env.Market()
	if err != nil {
		logger.Warn("bad market envelope", "error", err)
		return
	}

	fmt.Printf("[MARKET] phase=%s loading=%t coins=%d trending=%d cap=%s vol=%s btc=%s\n",
		m.Phase, m.Loading, len(m.Coins), len(m.Trending),
		m.Global.MarketCap, m.Global.Volume, m.Global.BTCDominance)
	if m.Error != "" {
		fmt.Printf("[MARKET ERROR] %s\n", m.Error)
	}
	for _, c := range m.Coins {
		fmt.Printf("  %-6s %14s %8s %s\n", c.Symbol, c.Price, c.Change24h, c.Trend)
	}
}

func printNews(env connection.Envelope, logger *slog.Logger) {
	v, err := env.News()
	if err != nil {
		logger.Warn("bad news envelope", "error", err)
		return
	}

	fmt.Printf("[NEWS %d/%d %s] (%s) %s paused=%t\n",
		v.Index+1, v.Total, v.Tier, v.Item.Category, v.Item.Text, v.Paused)
}
