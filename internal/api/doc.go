// Package api provides the upstream Source Clients used by the dashboard.
//
// Upstreams:
//   - CoinGecko (https://api.coingecko.com/api/v3): /coins/markets, /global, /search/trending, /coins/{id}
//   - Primary news: RapidAPI crypto-news16 (/news/coindesk)
//   - Backup news: CryptoCompare (/data/v2/news/?lang=EN)
//   - Chat backend: POST {"message"} -> {"reply"}
//
// Source clients never retry. A transport failure (network, timeout, non-2xx)
// is returned as an error; a malformed or empty payload is logged and returned
// as an empty value with a nil error. Callers own retry and fallback policy.
package api
