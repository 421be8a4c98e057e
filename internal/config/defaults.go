package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultPort            = 8080
	DefaultShutdownTimeout = 10 * time.Second
	DefaultPingInterval    = 30 * time.Second

	DefaultCoinGeckoURL = "https://api.coingecko.com/api/v3"
	DefaultAPITimeout   = 10 * time.Second
	DefaultPageSize     = 10
	DefaultCurrency     = "usd"

	DefaultNewsPrimaryURL  = "https://crypto-news16.p.rapidapi.com"
	DefaultNewsPrimaryHost = "crypto-news16.p.rapidapi.com"
	DefaultNewsBackupURL   = "https://min-api.cryptocompare.com"

	DefaultChatPath          = "/chatbot/chat"
	DefaultChatMaxMessages   = 100
	DefaultChatScriptedDelay = 1 * time.Second

	DefaultRefreshInterval = 60 * time.Second
	DefaultRequestTimeout  = 15 * time.Second

	DefaultNewsPollInterval = 5 * time.Minute
	DefaultRotateInterval   = 6 * time.Second
	DefaultNewsPollTimeout  = 30 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// DefaultAllowedOrigins covers the local dashboard dev server.
var DefaultAllowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}

func (c *DashboardConfig) applyDefaults() {
	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = append([]string(nil), DefaultAllowedOrigins...)
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Server.PingInterval == 0 {
		c.Server.PingInterval = DefaultPingInterval
	}

	// CoinGecko defaults
	if c.CoinGecko.BaseURL == "" {
		c.CoinGecko.BaseURL = DefaultCoinGeckoURL
	}
	if c.CoinGecko.Timeout == 0 {
		c.CoinGecko.Timeout = DefaultAPITimeout
	}
	if c.CoinGecko.PageSize == 0 {
		c.CoinGecko.PageSize = DefaultPageSize
	}
	if c.CoinGecko.Currency == "" {
		c.CoinGecko.Currency = DefaultCurrency
	}

	// News defaults
	if c.News.PrimaryURL == "" {
		c.News.PrimaryURL = DefaultNewsPrimaryURL
	}
	if c.News.PrimaryHost == "" {
		c.News.PrimaryHost = DefaultNewsPrimaryHost
	}
	if c.News.BackupURL == "" {
		c.News.BackupURL = DefaultNewsBackupURL
	}
	if c.News.Timeout == 0 {
		c.News.Timeout = DefaultAPITimeout
	}

	// Chat defaults
	if c.Chat.Path == "" {
		c.Chat.Path = DefaultChatPath
	}
	if c.Chat.Timeout == 0 {
		c.Chat.Timeout = DefaultAPITimeout
	}
	if c.Chat.MaxMessages == 0 {
		c.Chat.MaxMessages = DefaultChatMaxMessages
	}
	if c.Chat.ScriptedDelay == 0 {
		c.Chat.ScriptedDelay = DefaultChatScriptedDelay
	}

	// Market defaults
	if c.Market.RefreshInterval == 0 {
		c.Market.RefreshInterval = DefaultRefreshInterval
	}
	if c.Market.RequestTimeout == 0 {
		c.Market.RequestTimeout = DefaultRequestTimeout
	}

	// Feed defaults
	if c.Feed.PollInterval == 0 {
		c.Feed.PollInterval = DefaultNewsPollInterval
	}
	if c.Feed.RotateInterval == 0 {
		c.Feed.RotateInterval = DefaultRotateInterval
	}
	if c.Feed.PollTimeout == 0 {
		c.Feed.PollTimeout = DefaultNewsPollTimeout
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}
