package market

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rickgao/cryptoverse/internal/model"
	"github.com/rickgao/cryptoverse/internal/poller"
)

// Source provides the three market-data feeds.
// Transport failures are returned as errors; an empty value means the
// upstream answered but had nothing usable.
type Source interface {
	TopCoins(ctx context.Context, limit int) ([]model.CoinQuote, error)
	GlobalStats(ctx context.Context) (model.GlobalStats, error)
	TrendingCoins(ctx context.Context) ([]model.TrendingEntry, error)
}

// Config holds Aggregator configuration.
type Config struct {
	RefreshInterval time.Duration
	RequestTimeout  time.Duration
	PageSize        int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		RefreshInterval: 60 * time.Second,
		RequestTimeout:  15 * time.Second,
		PageSize:        10,
	}
}

// Aggregator owns one MarketSnapshot and the timer that refreshes it.
type Aggregator struct {
	cfg    Config
	source Source
	logger *slog.Logger

	state *aggregatorState
	group singleflight.Group

	// Set by Start, guarded by state.mu.
	ctx    context.Context
	cancel context.CancelFunc
	sched  *poller.Scheduler
}

// NewAggregator creates an Aggregator. Zero config fields fall back to defaults.
func NewAggregator(cfg Config, source Source, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}

	def := DefaultConfig()
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = def.RefreshInterval
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}

	return &Aggregator{
		cfg:    cfg,
		source: source,
		logger: logger,
		state:  newState(),
	}
}

// Start enters the loading phase and begins polling in the background.
// The first poll runs immediately.
func (a *Aggregator) Start(ctx context.Context) error {
	s := a.state
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("market aggregator already started")
	}
	if s.stopped {
		s.mu.Unlock()
		return errors.New("market aggregator stopped")
	}
	s.started = true
	s.firstPending = true

	a.ctx, a.cancel = context.WithCancel(ctx)
	a.sched = poller.New(a.ctx, a.logger)
	s.publishLocked()
	sched := a.sched
	s.mu.Unlock()

	sched.EveryNow(a.cfg.RefreshInterval, a.pollTick)

	a.logger.Info("market aggregator started",
		"refresh_interval", a.cfg.RefreshInterval,
		"page_size", a.cfg.PageSize,
	)
	return nil
}

// Stop cancels the refresh timer and waits for an in-flight poll to return.
// Anything that poll produces is discarded. Calling Stop again only waits.
func (a *Aggregator) Stop(ctx context.Context) error {
	s := a.state
	s.mu.Lock()
	s.stopped = true
	if a.cancel != nil {
		a.cancel()
	}
	sched := a.sched
	s.mu.Unlock()

	if sched == nil {
		return nil
	}
	if err := sched.Close(ctx); err != nil {
		return err
	}

	a.logger.Info("market aggregator stopped")
	return nil
}

// Refresh runs a manual poll, joining one already in flight, and returns the
// resulting state. Loading is reported while it is outstanding.
func (a *Aggregator) Refresh(ctx context.Context) State {
	s := a.state
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		a.logger.Debug("refresh ignored, aggregator not running")
		return a.State()
	}
	runCtx := a.ctx
	s.manualPending++
	s.publishLocked()
	s.mu.Unlock()

	ch := a.group.DoChan("poll", func() (any, error) {
		return nil, a.poll(runCtx)
	})

	select {
	case <-ch:
	case <-ctx.Done():
	}

	s.mu.Lock()
	s.manualPending--
	if !s.stopped {
		s.publishLocked()
	}
	st := s.stateLocked()
	s.mu.Unlock()
	return st
}

// State returns a copy of the current state.
func (a *Aggregator) State() State {
	return a.state.snapshot()
}

// Subscribe returns a channel receiving every applied state, newest wins.
// The returned func unsubscribes and closes the channel.
func (a *Aggregator) Subscribe() (<-chan State, func()) {
	return a.state.subscribe()
}

// pollTick is the scheduled callback.
func (a *Aggregator) pollTick(ctx context.Context) {
	_, _, _ = a.group.Do("poll", func() (any, error) {
		return nil, a.poll(ctx)
	})
}
