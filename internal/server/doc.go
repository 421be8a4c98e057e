// Package server publishes dashboard state over HTTP and WebSocket.
//
// Routes:
//   - GET  /health              service, aggregator and ticker status
//   - GET  /api/market          formatted snapshot with loading and error state
//   - POST /api/market/refresh  manual refresh (the retry action)
//   - GET  /api/coins/:id       single coin details
//   - GET  /api/news            ticker focus and current batch
//   - POST /api/news/pause      hold focus while the user interacts
//   - POST /api/news/resume
//   - GET  /api/chat            transcript
//   - POST /api/chat            send a message
//   - GET  /ws                  live "market" and "news" envelopes
package server
