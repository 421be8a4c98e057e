// Package market maintains the dashboard's market snapshot.
//
// The Aggregator polls three independent sources (top coins, global stats,
// trending coins) concurrently on a fixed interval and on demand:
//   - A poll waits for all three sources to settle before applying anything
//   - A non-empty result replaces its snapshot field, an empty or failed one keeps the prior value
//   - Only a poll where every source failed at the transport level enters the error phase
//   - Overlapping polls are coalesced so one complete result is applied at a time
//   - Results arriving after Stop are discarded
//
// Consumers read the current State or Subscribe to every applied change.
package market
