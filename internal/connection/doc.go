// Package connection is a client for the dashboard's WebSocket stream.
//
// The server pushes a "market" envelope whenever the aggregator state
// changes and a "news" envelope on every ticker rotation or new batch. The
// client reads envelopes into a buffered channel, answers server pings, and
// reports a stale connection when no ping arrives within PingTimeout. Pause
// and Resume send the ticker interaction signals back to the server.
package connection
