// Package news implements the Fallback News Resolver.
//
// Tiers are attempted in strict order and the first one yielding at least one
// item wins:
//  1. Primary source (CoinDesk via RapidAPI)
//  2. Backup source (CryptoCompare)
//  3. Static placeholder set (always succeeds)
//
// Resolve never returns an error. Tier failures are logged.
package news
