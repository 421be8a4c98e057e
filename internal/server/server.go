package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rickgao/cryptoverse/internal/display"
	"github.com/rickgao/cryptoverse/internal/feed"
	"github.com/rickgao/cryptoverse/internal/market"
	"github.com/rickgao/cryptoverse/internal/model"
)

// Constants
const (
	RequestIDContextKey = "request_id"
	RequestIDHeaderKey  = "X-Request-ID"
)

// MarketService is the market aggregator as seen by handlers.
type MarketService interface {
	State() market.State
	Refresh(ctx context.Context) market.State
	Subscribe() (<-chan market.State, func())
}

// NewsService is the news ticker as seen by handlers.
type NewsService interface {
	Current() feed.View
	Items() []model.NewsItem
	Pause()
	Resume()
	Subscribe() (<-chan feed.View, func())
}

// ChatService is the chat session.
type ChatService interface {
	Send(ctx context.Context, text string) (model.ChatMessage, error)
	Transcript() []model.ChatMessage
}

// CoinService looks up single-coin details.
type CoinService interface {
	CoinDetails(ctx context.Context, id string) (*model.CoinDetail, error)
}

// Deps are the components the server publishes.
type Deps struct {
	Market MarketService
	News   NewsService
	Chat   ChatService
	Coins  CoinService
}

// Config holds server settings.
type Config struct {
	AllowedOrigins []string
	PingInterval   time.Duration
	RequestTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PingInterval:   30 * time.Second,
		RequestTimeout: 20 * time.Second,
	}
}

// Server owns the gin engine and the WebSocket hub.
type Server struct {
	cfg    Config
	deps   Deps
	logger *slog.Logger

	engine *gin.Engine
	hub    *Hub

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Server and registers its routes.
func New(cfg Config, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = def.PingInterval
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
	}
	s.hub = NewHub(HubConfig{
		PingInterval:   cfg.PingInterval,
		AllowedOrigins: cfg.AllowedOrigins,
	}, logger)
	s.hub.OnConnect(s.currentEnvelopes)
	s.hub.OnMessage(s.handleClientMessage)
	s.engine = s.setupRoutes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start runs the hub and forwards component updates to WebSocket clients.
func (s *Server) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.hub.Run(ctx)
	}()

	if s.deps.Market != nil {
		states, unsubscribe := s.deps.Market.Subscribe()
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer unsubscribe()
			forward(ctx, states, func(st market.State) {
				s.hub.Broadcast(Envelope{Type: TypeMarket, Data: display.FromState(st)})
			})
		}()
	}

	if s.deps.News != nil {
		views, unsubscribe := s.deps.News.Subscribe()
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer unsubscribe()
			forward(ctx, views, func(v feed.View) {
				s.hub.Broadcast(Envelope{Type: TypeNews, Data: v})
			})
		}()
	}

	s.logger.Info("server started")
	return nil
}

// Stop closes every WebSocket client and stops forwarding.
func (s *Server) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("server stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func forward[T any](ctx context.Context, ch <-chan T, fn func(T)) {
	for {
		select {
		case <-ctx.Done():
			return
		case v, ok := <-ch:
			if !ok {
				return
			}
			fn(v)
		}
	}
}

// currentEnvelopes is sent to every new WebSocket client.
func (s *Server) currentEnvelopes() []Envelope {
	var out []Envelope
	if s.deps.Market != nil {
		out = append(out, Envelope{Type: TypeMarket, Data: display.FromState(s.deps.Market.State())})
	}
	if s.deps.News != nil {
		out = append(out, Envelope{Type: TypeNews, Data: s.deps.News.Current()})
	}
	return out
}

// handleClientMessage applies interaction signals sent over the socket.
func (s *Server) handleClientMessage(msg ClientMessage) {
	if s.deps.News == nil {
		return
	}
	switch msg.Type {
	case "pause":
		s.deps.News.Pause()
	case "resume":
		s.deps.News.Resume()
	default:
		s.logger.Debug("unknown client message", "type", msg.Type)
	}
}
