// Package model defines shared data types used across the dashboard backend.
//
// Conventions:
//   - Money (prices, market caps, volumes): shopspring decimal in the quote currency
//   - Percentages: float64 percent points (2.5 = +2.5%), nil when the upstream omitted them
//   - Optional counts and ranks: pointers, nil meaning "not yet known"
//   - IDs: upstream ids for coins, generated strings for news items
package model
