package config

import (
	"log/slog"
	"strings"
	"time"
)

// DashboardConfig is the root configuration for the dashboard service.
type DashboardConfig struct {
	Server    ServerConfig    `yaml:"server"`
	CoinGecko CoinGeckoConfig `yaml:"coingecko"`
	News      NewsConfig      `yaml:"news"`
	Chat      ChatConfig      `yaml:"chat"`
	Market    MarketConfig    `yaml:"market"`
	Feed      FeedConfig      `yaml:"feed"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP and WebSocket settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	PingInterval    time.Duration `yaml:"ping_interval"` // WebSocket keepalive
}

// CoinGeckoConfig holds market data API settings.
type CoinGeckoConfig struct {
	BaseURL  string        `yaml:"base_url"`
	APIKey   string        `yaml:"api_key"` // Optional demo key (x-cg-demo-api-key)
	Timeout  time.Duration `yaml:"timeout"`
	PageSize int           `yaml:"page_size"`
	Currency string        `yaml:"currency"`
}

// NewsConfig holds the primary and backup news sources.
type NewsConfig struct {
	PrimaryURL  string        `yaml:"primary_url"`
	PrimaryKey  string        `yaml:"primary_key"`  // X-RapidAPI-Key
	PrimaryHost string        `yaml:"primary_host"` // X-RapidAPI-Host
	BackupURL   string        `yaml:"backup_url"`
	BackupKey   string        `yaml:"backup_key"`
	Timeout     time.Duration `yaml:"timeout"`
}

// ChatConfig holds the chat backend. An empty URL selects canned replies.
type ChatConfig struct {
	URL           string        `yaml:"url"`
	Path          string        `yaml:"path"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxRetries    int           `yaml:"max_retries"`
	MaxMessages   int           `yaml:"max_messages"`
	ScriptedDelay time.Duration `yaml:"scripted_delay"`
}

// MarketConfig holds aggregator timing.
type MarketConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
}

// FeedConfig holds news ticker timing.
type FeedConfig struct {
	PollInterval   time.Duration `yaml:"poll_interval"`
	RotateInterval time.Duration `yaml:"rotate_interval"`
	PollTimeout    time.Duration `yaml:"poll_timeout"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// SlogLevel maps Level onto slog. Unknown values mean info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
