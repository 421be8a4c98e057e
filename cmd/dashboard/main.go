package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rickgao/cryptoverse/internal/api"
	"github.com/rickgao/cryptoverse/internal/chat"
	"github.com/rickgao/cryptoverse/internal/config"
	"github.com/rickgao/cryptoverse/internal/feed"
	"github.com/rickgao/cryptoverse/internal/market"
	"github.com/rickgao/cryptoverse/internal/news"
	"github.com/rickgao/cryptoverse/internal/server"
	"github.com/rickgao/cryptoverse/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/dashboard.yaml", "path to config file")
	envPath := flag.String("env", ".env", "path to .env file (optional)")
	flag.Parse()

	if err := config.LoadDotEnv(*envPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting dashboard",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Upstream clients
	gecko := api.NewCoinGecko(api.NewClient(cfg.CoinGecko.BaseURL,
		api.WithLogger(logger),
		api.WithTimeout(cfg.CoinGecko.Timeout),
		api.WithHeader("x-cg-demo-api-key", cfg.CoinGecko.APIKey),
	), cfg.CoinGecko.Currency)

	primary := api.NewCoinDeskNews(api.NewClient(cfg.News.PrimaryURL,
		api.WithLogger(logger),
		api.WithTimeout(cfg.News.Timeout),
		api.WithHeader("X-RapidAPI-Key", cfg.News.PrimaryKey),
		api.WithHeader("X-RapidAPI-Host", cfg.News.PrimaryHost),
	))

	backup := api.NewCryptoCompareNews(api.NewClient(cfg.News.BackupURL,
		api.WithLogger(logger),
		api.WithTimeout(cfg.News.Timeout),
		api.WithQueryParam("api_key", cfg.News.BackupKey),
	))

	var replier chat.Replier
	if cfg.Chat.URL != "" {
		replier = api.NewChatClient(api.NewClient(cfg.Chat.URL,
			api.WithLogger(logger),
			api.WithTimeout(cfg.Chat.Timeout),
			api.WithRetries(cfg.Chat.MaxRetries, time.Second),
		), cfg.Chat.Path)
		logger.Info("chat backend configured", "url", cfg.Chat.URL+cfg.Chat.Path)
	} else {
		replier = chat.NewScripted(cfg.Chat.ScriptedDelay)
		logger.Info("no chat backend configured, using scripted replies")
	}

	// Components
	aggregator := market.NewAggregator(market.Config{
		RefreshInterval: cfg.Market.RefreshInterval,
		RequestTimeout:  cfg.Market.RequestTimeout,
		PageSize:        cfg.CoinGecko.PageSize,
	}, gecko, logger)

	rotator := feed.NewRotator(feed.Config{
		PollInterval:   cfg.Feed.PollInterval,
		RotateInterval: cfg.Feed.RotateInterval,
		PollTimeout:    cfg.Feed.PollTimeout,
	}, news.NewResolver(primary, backup, logger), logger)

	session := chat.NewSession(replier, cfg.Chat.MaxMessages, logger)

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(server.Config{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		PingInterval:   cfg.Server.PingInterval,
	}, server.Deps{
		Market: aggregator,
		News:   rotator,
		Chat:   session,
		Coins:  gecko,
	}, logger)

	if err := aggregator.Start(ctx); err != nil {
		logger.Error("failed to start market aggregator", "error", err)
		os.Exit(1)
	}
	if err := rotator.Start(ctx); err != nil {
		logger.Error("failed to start news rotator", "error", err)
		os.Exit(1)
	}
	if err := srv.Start(ctx); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "port", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	logger.Info("dashboard running",
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Server.Port),
		"ws_url", fmt.Sprintf("ws://localhost:%d/ws", cfg.Server.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown", "error", err)
	}
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Warn("server stop", "error", err)
	}
	if err := rotator.Stop(shutdownCtx); err != nil {
		logger.Warn("news rotator stop", "error", err)
	}
	if err := aggregator.Stop(shutdownCtx); err != nil {
		logger.Warn("market aggregator stop", "error", err)
	}

	logger.Info("dashboard stopped")
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
