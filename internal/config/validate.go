package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Validate checks that all required fields are set and values are valid.
func (c *DashboardConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if err := validateURL("coingecko.base_url", c.CoinGecko.BaseURL); err != nil {
		return err
	}
	if c.CoinGecko.PageSize < 1 || c.CoinGecko.PageSize > 250 {
		return fmt.Errorf("coingecko.page_size must be between 1 and 250, got %d", c.CoinGecko.PageSize)
	}
	if c.CoinGecko.Currency == "" {
		return errors.New("coingecko.currency is required")
	}

	if err := validateURL("news.primary_url", c.News.PrimaryURL); err != nil {
		return err
	}
	if err := validateURL("news.backup_url", c.News.BackupURL); err != nil {
		return err
	}

	if c.Chat.URL != "" {
		if err := validateURL("chat.url", c.Chat.URL); err != nil {
			return err
		}
	}
	if c.Chat.MaxRetries < 0 {
		return errors.New("chat.max_retries must be >= 0")
	}
	if c.Chat.MaxMessages < 1 {
		return errors.New("chat.max_messages must be >= 1")
	}

	if c.Market.RefreshInterval < time.Second {
		return fmt.Errorf("market.refresh_interval must be >= 1s, got %v", c.Market.RefreshInterval)
	}
	if c.Feed.PollInterval < time.Second {
		return fmt.Errorf("feed.poll_interval must be >= 1s, got %v", c.Feed.PollInterval)
	}
	if c.Feed.RotateInterval <= 0 {
		return errors.New("feed.rotate_interval must be > 0")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	return nil
}

func validateURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", field)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", field, raw)
	}
	return nil
}
