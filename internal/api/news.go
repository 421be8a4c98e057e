package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rickgao/cryptoverse/internal/model"
)

// Source attributions for the news feeds.
const (
	CoinDeskSource      = "CoinDesk"
	CryptoCompareSource = "CryptoCompare"
)

// CoinDeskNews is the primary news feed (RapidAPI crypto-news16).
type CoinDeskNews struct {
	client *Client
}

// NewCoinDeskNews creates the primary news source. The client should carry
// the X-RapidAPI-Key and X-RapidAPI-Host headers.
func NewCoinDeskNews(client *Client) *CoinDeskNews {
	return &CoinDeskNews{client: client}
}

// Name identifies the source in logs.
func (n *CoinDeskNews) Name() string { return "coindesk" }

// FetchHeadlines fetches the latest CoinDesk headlines.
func (n *CoinDeskNews) FetchHeadlines(ctx context.Context) ([]model.Headline, error) {
	body, err := n.client.get(ctx, "/news/coindesk", nil)
	if err != nil {
		return nil, fmt.Errorf("get coindesk news: %w", err)
	}

	var articles []CoinDeskArticle
	if !n.client.decode(body, &articles, n.Name()) {
		return []model.Headline{}, nil
	}

	headlines := make([]model.Headline, 0, len(articles))
	for _, a := range articles {
		headlines = append(headlines, model.Headline{
			Title:  a.Title,
			URL:    a.URL,
			Source: CoinDeskSource,
		})
	}
	return headlines, nil
}

// CryptoCompareNews is the backup news feed.
type CryptoCompareNews struct {
	client *Client
}

// NewCryptoCompareNews creates the backup news source. The client should
// carry the api_key query parameter.
func NewCryptoCompareNews(client *Client) *CryptoCompareNews {
	return &CryptoCompareNews{client: client}
}

// Name identifies the source in logs.
func (n *CryptoCompareNews) Name() string { return "cryptocompare" }

// FetchHeadlines fetches the latest English headlines.
func (n *CryptoCompareNews) FetchHeadlines(ctx context.Context) ([]model.Headline, error) {
	query := url.Values{}
	query.Set("lang", "EN")

	body, err := n.client.get(ctx, "/data/v2/news/", query)
	if err != nil {
		return nil, fmt.Errorf("get cryptocompare news: %w", err)
	}

	var resp CryptoCompareResponse
	if !n.client.decode(body, &resp, n.Name()) {
		return []model.Headline{}, nil
	}

	headlines := make([]model.Headline, 0, len(resp.Data))
	for _, a := range resp.Data {
		source := a.Source
		if source == "" {
			source = CryptoCompareSource
		}
		headlines = append(headlines, model.Headline{
			Title:  a.Title,
			URL:    a.URL,
			Source: source,
		})
	}
	return headlines, nil
}
