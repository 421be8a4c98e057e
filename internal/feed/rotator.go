package feed

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rickgao/cryptoverse/internal/model"
	"github.com/rickgao/cryptoverse/internal/news"
	"github.com/rickgao/cryptoverse/internal/poller"
)

// Resolver produces a normalized news batch. It never fails.
type Resolver interface {
	Resolve(ctx context.Context) news.Result
}

// Config holds Rotator configuration.
type Config struct {
	PollInterval   time.Duration
	RotateInterval time.Duration
	PollTimeout    time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PollInterval:   5 * time.Minute,
		RotateInterval: 6 * time.Second,
		PollTimeout:    30 * time.Second,
	}
}

// placeholders are shown until the first batch arrives.
var placeholders = []model.NewsItem{
	{ID: "initial-1", Category: model.CategoryAlert, Text: "Loading latest crypto news..."},
	{ID: "initial-2", Category: model.CategoryUpdate, Text: "Fetching market updates..."},
	{ID: "initial-3", Category: model.CategoryMarket, Text: "Syncing with crypto newsfeeds..."},
}

// View is the item currently in focus.
type View struct {
	Item    model.NewsItem `json:"item"`
	Index   int            `json:"index"`
	Total   int            `json:"total"`
	Paused  bool           `json:"paused"`
	Loading bool           `json:"loading"`
	Tier    news.Tier      `json:"tier"`
}

// Rotator owns the ticker's item list and its two timers.
type Rotator struct {
	cfg      Config
	resolver Resolver
	logger   *slog.Logger
	group    singleflight.Group

	mu      sync.Mutex
	items   []model.NewsItem
	index   int
	paused  bool
	loading bool
	tier    news.Tier

	started bool
	stopped bool
	ctx     context.Context
	cancel  context.CancelFunc
	sched   *poller.Scheduler
	pollTok poller.Token
	rotTok  poller.Token
	rotGen  uint64 // Bumped whenever the rotation timer is replaced

	subs   map[int]chan View
	nextID int
}

// NewRotator creates a Rotator showing the placeholder items.
func NewRotator(cfg Config, resolver Resolver, logger *slog.Logger) *Rotator {
	if logger == nil {
		logger = slog.Default()
	}

	def := DefaultConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.RotateInterval <= 0 {
		cfg.RotateInterval = def.RotateInterval
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = def.PollTimeout
	}

	items := make([]model.NewsItem, len(placeholders))
	copy(items, placeholders)

	return &Rotator{
		cfg:      cfg,
		resolver: resolver,
		logger:   logger,
		items:    items,
		loading:  true,
		subs:     make(map[int]chan View),
	}
}

// Start registers the poll timer (firing immediately) and the rotation timer.
func (r *Rotator) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return errors.New("news rotator already started")
	}
	if r.stopped {
		return errors.New("news rotator stopped")
	}
	r.started = true

	r.ctx, r.cancel = context.WithCancel(ctx)
	r.sched = poller.New(r.ctx, r.logger)
	r.pollTok = r.sched.EveryNow(r.cfg.PollInterval, r.pollTick)
	if !r.paused {
		r.restartRotationLocked()
	}

	r.logger.Info("news rotator started",
		"poll_interval", r.cfg.PollInterval,
		"rotate_interval", r.cfg.RotateInterval,
	)
	return nil
}

// Stop cancels both timers and waits for an in-flight poll to return.
// A batch arriving after Stop is discarded. Calling Stop again only waits.
func (r *Rotator) Stop(ctx context.Context) error {
	r.mu.Lock()
	r.stopped = true
	if r.cancel != nil {
		r.cancel()
	}
	sched := r.sched
	r.mu.Unlock()

	if sched == nil {
		return nil
	}
	if err := sched.Close(ctx); err != nil {
		return err
	}

	r.logger.Info("news rotator stopped")
	return nil
}

// Pause holds focus on the current item.
func (r *Rotator) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.paused || r.stopped {
		return
	}
	r.paused = true
	r.rotTok.Cancel()
	r.rotTok = poller.Token{}
	r.rotGen++
	r.publishLocked()
}

// Resume continues rotation from the current index.
func (r *Rotator) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.paused || r.stopped {
		return
	}
	r.paused = false
	if r.sched != nil {
		r.restartRotationLocked()
	}
	r.publishLocked()
}

// Refresh polls the resolver now, joining a poll already in flight.
func (r *Rotator) Refresh(ctx context.Context) View {
	r.mu.Lock()
	if !r.started || r.stopped {
		r.mu.Unlock()
		return r.Current()
	}
	runCtx := r.ctx
	r.mu.Unlock()

	ch := r.group.DoChan("poll", func() (any, error) {
		r.poll(runCtx)
		return nil, nil
	})

	select {
	case <-ch:
	case <-ctx.Done():
	}
	return r.Current()
}

// Current returns the item in focus.
func (r *Rotator) Current() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewLocked()
}

// Items returns a copy of the current batch.
func (r *Rotator) Items() []model.NewsItem {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.NewsItem, len(r.items))
	copy(out, r.items)
	return out
}

// Subscribe returns a channel receiving every focus change, newest wins.
// The returned func unsubscribes and closes the channel.
func (r *Rotator) Subscribe() (<-chan View, func()) {
	ch := make(chan View, 1)

	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = ch
	r.mu.Unlock()

	return ch, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if c, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(c)
		}
	}
}

func (r *Rotator) pollTick(ctx context.Context) {
	_, _, _ = r.group.Do("poll", func() (any, error) {
		r.poll(ctx)
		return nil, nil
	})
}

// poll resolves one batch and applies it.
func (r *Rotator) poll(ctx context.Context) {
	start := time.Now()

	pctx, cancel := context.WithTimeout(ctx, r.cfg.PollTimeout)
	defer cancel()

	res := r.resolver.Resolve(pctx)
	if ctx.Err() != nil {
		r.logger.Debug("news poll cancelled, batch discarded")
		return
	}

	if r.apply(res) {
		r.logger.Info("news batch applied",
			"tier", res.Tier,
			"count", len(res.Items),
			"duration", time.Since(start),
		)
	}
}

// apply installs a batch, resets focus and restarts the rotation timer.
// Empty batches and batches arriving after Stop are ignored.
func (r *Rotator) apply(res news.Result) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return false
	}
	if len(res.Items) == 0 {
		r.logger.Warn("empty news batch ignored", "tier", res.Tier)
		return false
	}

	r.items = make([]model.NewsItem, len(res.Items))
	copy(r.items, res.Items)
	r.index = 0
	r.tier = res.Tier
	r.loading = false

	if !r.paused && r.sched != nil {
		r.restartRotationLocked()
	}
	r.publishLocked()
	return true
}

// rotate advances focus if gen still names the live rotation timer.
func (r *Rotator) rotate(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped || r.paused || gen != r.rotGen || len(r.items) == 0 {
		return
	}
	r.index = (r.index + 1) % len(r.items)
	r.publishLocked()
}

// restartRotationLocked replaces the rotation timer so the next advance is a
// full interval away.
func (r *Rotator) restartRotationLocked() {
	r.rotTok.Cancel()
	r.rotGen++
	gen := r.rotGen
	r.rotTok = r.sched.Every(r.cfg.RotateInterval, func(context.Context) {
		r.rotate(gen)
	})
}

func (r *Rotator) viewLocked() View {
	v := View{
		Index:   r.index,
		Total:   len(r.items),
		Paused:  r.paused,
		Loading: r.loading,
		Tier:    r.tier,
	}
	if r.index < len(r.items) {
		v.Item = r.items[r.index]
	} else {
		v.Item = placeholders[0]
	}
	return v
}

func (r *Rotator) publishLocked() {
	if len(r.subs) == 0 {
		return
	}
	v := r.viewLocked()
	for _, ch := range r.subs {
		select {
		case ch <- v:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
}
