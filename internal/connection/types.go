package connection

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rickgao/cryptoverse/internal/display"
	"github.com/rickgao/cryptoverse/internal/feed"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
	ErrUnexpectedType  = errors.New("unexpected envelope type")
)

// Envelope types pushed by the server.
const (
	TypeMarket = "market"
	TypeNews   = "news"
)

// Envelope is one decoded server message with its local receive time.
type Envelope struct {
	Type       string          `json:"type"`
	Data       json.RawMessage `json:"data"`
	ReceivedAt time.Time       `json:"-"`
}

// Market decodes a market envelope.
func (e Envelope) Market() (display.Market, error) {
	var m display.Market
	if e.Type != TypeMarket {
		return m, fmt.Errorf("%w: %q", ErrUnexpectedType, e.Type)
	}
	if err := json.Unmarshal(e.Data, &m); err != nil {
		return m, fmt.Errorf("decode market: %w", err)
	}
	return m, nil
}

// News decodes a news envelope.
func (e Envelope) News() (feed.View, error) {
	var v feed.View
	if e.Type != TypeNews {
		return v, fmt.Errorf("%w: %q", ErrUnexpectedType, e.Type)
	}
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return v, fmt.Errorf("decode news: %w", err)
	}
	return v, nil
}

// command is a client-to-server interaction signal.
type command struct {
	Type string `json:"type"` // "pause" or "resume"
}

// ClientConfig configures a stream client.
type ClientConfig struct {
	URL          string        // WebSocket URL (e.g., ws://localhost:8080/ws)
	Origin       string        // Optional Origin header
	PingTimeout  time.Duration // Max time without ping before considering connection stale
	WriteTimeout time.Duration // Write deadline for sends
	BufferSize   int           // Envelope channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		PingTimeout:  90 * time.Second,
		WriteTimeout: 5 * time.Second,
		BufferSize:   64,
	}
}
