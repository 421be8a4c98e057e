package market

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/cryptoverse/internal/model"
)

// fakeSource lets each test script the three feeds.
type fakeSource struct {
	coins    func(ctx context.Context) ([]model.CoinQuote, error)
	global   func(ctx context.Context) (model.GlobalStats, error)
	trending func(ctx context.Context) ([]model.TrendingEntry, error)

	coinCalls atomic.Int32
}

func (f *fakeSource) TopCoins(ctx context.Context, limit int) ([]model.CoinQuote, error) {
	f.coinCalls.Add(1)
	if f.coins == nil {
		return nil, nil
	}
	return f.coins(ctx)
}

func (f *fakeSource) GlobalStats(ctx context.Context) (model.GlobalStats, error) {
	if f.global == nil {
		return model.GlobalStats{}, nil
	}
	return f.global(ctx)
}

func (f *fakeSource) TrendingCoins(ctx context.Context) ([]model.TrendingEntry, error) {
	if f.trending == nil {
		return nil, nil
	}
	return f.trending(ctx)
}

var errTransport = errors.New("connection refused")

func threeCoins() []model.CoinQuote {
	return []model.CoinQuote{
		{ID: "bitcoin", Name: "Bitcoin", Symbol: "btc", CurrentPrice: decimal.NewFromInt(67000)},
		{ID: "ethereum", Name: "Ethereum", Symbol: "eth", CurrentPrice: decimal.NewFromInt(3500)},
		{ID: "tether", Name: "Tether", Symbol: "usdt", CurrentPrice: decimal.NewFromInt(1)},
	}
}

func someGlobal() model.GlobalStats {
	n := 12000
	return model.GlobalStats{
		TotalMarketCap: decimal.NewNullDecimal(decimal.NewFromInt(2_400_000_000_000)),
		TotalVolume:    decimal.NewNullDecimal(decimal.NewFromInt(90_000_000_000)),
		Dominance:      map[string]float64{"btc": 52.1, "eth": 17.3},
		ActiveAssets:   &n,
	}
}

func someTrending() []model.TrendingEntry {
	return []model.TrendingEntry{{ID: "pepe", Name: "Pepe", Symbol: "PEPE", Score: 0}}
}

func fullSource() *fakeSource {
	return &fakeSource{
		coins:    func(context.Context) ([]model.CoinQuote, error) { return threeCoins(), nil },
		global:   func(context.Context) (model.GlobalStats, error) { return someGlobal(), nil },
		trending: func(context.Context) ([]model.TrendingEntry, error) { return someTrending(), nil },
	}
}

func testConfig() Config {
	return Config{
		RefreshInterval: time.Hour,
		RequestTimeout:  time.Second,
		PageSize:        10,
	}
}

func TestAggregator_EndToEnd(t *testing.T) {
	src := &fakeSource{
		coins:  func(context.Context) ([]model.CoinQuote, error) { return threeCoins(), nil },
		global: func(context.Context) (model.GlobalStats, error) { return someGlobal(), nil },
		trending: func(context.Context) ([]model.TrendingEntry, error) {
			return []model.TrendingEntry{}, nil
		},
	}
	a := NewAggregator(testConfig(), src, nil)

	require.NoError(t, a.Start(context.Background()))
	defer a.Stop(context.Background())

	assert.Eventually(t, func() bool {
		return !a.State().Loading
	}, 2*time.Second, 10*time.Millisecond)

	st := a.State()
	assert.Len(t, st.Snapshot.TopCoins, 3)
	assert.Empty(t, st.Snapshot.TrendingCoins)
	assert.True(t, st.Snapshot.Global.TotalMarketCap.Valid)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Err)
	assert.Equal(t, PhaseReadyStale, st.Phase)
	assert.False(t, st.UpdatedAt.IsZero())
}

func TestAggregator_StaleBeatsEmpty(t *testing.T) {
	src := fullSource()
	a := NewAggregator(testConfig(), src, nil)
	ctx := context.Background()

	require.NoError(t, a.poll(ctx))
	assert.Equal(t, PhaseReady, a.State().Phase)

	// Coins fail, trending comes back empty, global updates.
	newCap := decimal.NewFromInt(2_500_000_000_000)
	src.coins = func(context.Context) ([]model.CoinQuote, error) { return nil, errTransport }
	src.trending = func(context.Context) ([]model.TrendingEntry, error) { return nil, nil }
	src.global = func(context.Context) (model.GlobalStats, error) {
		return model.GlobalStats{TotalMarketCap: decimal.NewNullDecimal(newCap)}, nil
	}

	require.NoError(t, a.poll(ctx))

	st := a.State()
	assert.Len(t, st.Snapshot.TopCoins, 3, "failed source keeps previous coins")
	assert.Len(t, st.Snapshot.TrendingCoins, 1, "empty source keeps previous trending")
	assert.True(t, st.Snapshot.Global.TotalMarketCap.Decimal.Equal(newCap))
	assert.Nil(t, st.Snapshot.Global.ActiveAssets, "global is replaced as a whole")
	assert.Equal(t, PhaseReadyStale, st.Phase)
	assert.Empty(t, st.Err)
}

func TestAggregator_AllFail(t *testing.T) {
	src := fullSource()
	a := NewAggregator(testConfig(), src, nil)
	ctx := context.Background()

	require.NoError(t, a.poll(ctx))
	before := a.State().Snapshot

	src.coins = func(context.Context) ([]model.CoinQuote, error) { return nil, errTransport }
	src.global = func(context.Context) (model.GlobalStats, error) { return model.GlobalStats{}, errTransport }
	src.trending = func(context.Context) ([]model.TrendingEntry, error) { return nil, errTransport }

	err := a.poll(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, errTransport)

	st := a.State()
	assert.Equal(t, PhaseError, st.Phase)
	assert.Equal(t, "failed to fetch crypto data", st.Err)
	assert.Equal(t, before, st.Snapshot)

	// Any success leaves the error phase.
	src.trending = func(context.Context) ([]model.TrendingEntry, error) { return someTrending(), nil }
	require.NoError(t, a.poll(ctx))

	st = a.State()
	assert.Equal(t, PhaseReadyStale, st.Phase)
	assert.Empty(t, st.Err)
}

func TestAggregator_AllEmptyIsNotError(t *testing.T) {
	a := NewAggregator(testConfig(), &fakeSource{}, nil)

	require.NoError(t, a.poll(context.Background()))

	st := a.State()
	assert.NotEqual(t, PhaseError, st.Phase)
	assert.Empty(t, st.Err)
	assert.Empty(t, st.Snapshot.TopCoins)
}

func TestAggregator_FetchesConcurrently(t *testing.T) {
	var arrived sync.WaitGroup
	arrived.Add(3)
	all := make(chan struct{})
	go func() {
		arrived.Wait()
		close(all)
	}()

	// Each source waits for the other two. A sequential poll would time out.
	barrier := func(ctx context.Context) error {
		arrived.Done()
		select {
		case <-all:
			return nil
		case <-time.After(time.Second):
			return errors.New("sources were not requested concurrently")
		}
	}

	src := &fakeSource{
		coins: func(ctx context.Context) ([]model.CoinQuote, error) {
			return threeCoins(), barrier(ctx)
		},
		global: func(ctx context.Context) (model.GlobalStats, error) {
			return someGlobal(), barrier(ctx)
		},
		trending: func(ctx context.Context) ([]model.TrendingEntry, error) {
			return someTrending(), barrier(ctx)
		},
	}
	a := NewAggregator(Config{RequestTimeout: 5 * time.Second}, src, nil)

	require.NoError(t, a.poll(context.Background()))
	assert.Equal(t, PhaseReady, a.State().Phase)
}

func TestAggregator_LoadingSemantics(t *testing.T) {
	entered := make(chan struct{}, 4)
	release := make(chan struct{})
	src := fullSource()
	src.coins = func(context.Context) ([]model.CoinQuote, error) {
		entered <- struct{}{}
		<-release
		return threeCoins(), nil
	}

	a := NewAggregator(testConfig(), src, nil)
	assert.Equal(t, PhaseIdle, a.State().Phase)
	assert.False(t, a.State().Loading)

	require.NoError(t, a.Start(context.Background()))
	defer func() {
		a.Stop(context.Background())
	}()

	<-entered
	st := a.State()
	assert.True(t, st.Loading, "first poll is loading")
	assert.Equal(t, PhaseLoading, st.Phase)

	release <- struct{}{}
	assert.Eventually(t, func() bool { return !a.State().Loading }, time.Second, 5*time.Millisecond)

	// A background poll does not re-enter loading.
	done := make(chan struct{})
	go func() {
		a.pollTick(context.Background())
		close(done)
	}()
	<-entered
	assert.False(t, a.State().Loading)
	release <- struct{}{}
	<-done

	// A manual refresh does.
	refreshed := make(chan State, 1)
	go func() {
		refreshed <- a.Refresh(context.Background())
	}()
	<-entered
	assert.True(t, a.State().Loading)
	release <- struct{}{}

	st = <-refreshed
	assert.False(t, st.Loading)
	assert.Equal(t, PhaseReady, st.Phase)
}

func TestAggregator_RefreshReturnsSettledState(t *testing.T) {
	a := NewAggregator(testConfig(), fullSource(), nil)
	require.NoError(t, a.Start(context.Background()))
	defer a.Stop(context.Background())

	assert.Eventually(t, func() bool {
		return !a.State().Loading
	}, 2*time.Second, 10*time.Millisecond)

	updates, unsubscribe := a.Subscribe()
	defer unsubscribe()

	st := a.Refresh(context.Background())
	assert.False(t, st.Loading)
	assert.Equal(t, PhaseReady, st.Phase)
	assert.Len(t, st.Snapshot.TopCoins, 3)
	assert.Equal(t, a.State().Phase, st.Phase)

	// The newest published state is the settled one.
	select {
	case last := <-updates:
		assert.False(t, last.Loading)
		assert.Equal(t, PhaseReady, last.Phase)
	case <-time.After(time.Second):
		t.Fatal("no state published after refresh")
	}
}

func TestAggregator_RefreshJoinsInFlightPoll(t *testing.T) {
	entered := make(chan struct{}, 4)
	release := make(chan struct{})
	src := fullSource()
	src.coins = func(context.Context) ([]model.CoinQuote, error) {
		entered <- struct{}{}
		<-release
		return threeCoins(), nil
	}

	a := NewAggregator(testConfig(), src, nil)
	require.NoError(t, a.Start(context.Background()))
	defer a.Stop(context.Background())
	<-entered

	refreshed := make(chan State, 1)
	go func() {
		refreshed <- a.Refresh(context.Background())
	}()

	assert.Eventually(t, func() bool {
		a.state.mu.Lock()
		defer a.state.mu.Unlock()
		return a.state.manualPending == 1
	}, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	close(release)
	st := <-refreshed

	assert.Equal(t, int32(1), src.coinCalls.Load())
	assert.Len(t, st.Snapshot.TopCoins, 3)
}

func TestAggregator_RefreshBeforeStart(t *testing.T) {
	src := fullSource()
	a := NewAggregator(testConfig(), src, nil)

	st := a.Refresh(context.Background())

	assert.Equal(t, PhaseIdle, st.Phase)
	assert.Equal(t, int32(0), src.coinCalls.Load())
}

func TestAggregator_TeardownDiscardsLateResult(t *testing.T) {
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	src := fullSource()
	// Ignores ctx to simulate a response that arrives after teardown.
	src.coins = func(context.Context) ([]model.CoinQuote, error) {
		entered <- struct{}{}
		<-release
		return threeCoins(), nil
	}

	a := NewAggregator(testConfig(), src, nil)
	updates, unsubscribe := a.Subscribe()
	defer unsubscribe()

	require.NoError(t, a.Start(context.Background()))
	<-entered
	<-updates // loading

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, a.Stop(ctx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, a.Stop(context.Background()))

	st := a.State()
	assert.Empty(t, st.Snapshot.TopCoins)
	assert.True(t, st.UpdatedAt.IsZero())

	select {
	case got := <-updates:
		t.Errorf("unexpected update after stop: %+v", got)
	default:
	}

	assert.Error(t, a.Start(context.Background()), "stopped aggregator cannot restart")
}

func TestAggregator_StartTwice(t *testing.T) {
	a := NewAggregator(testConfig(), fullSource(), nil)
	require.NoError(t, a.Start(context.Background()))
	defer a.Stop(context.Background())

	assert.Error(t, a.Start(context.Background()))
}

func TestAggregator_StopCancelsTimer(t *testing.T) {
	src := fullSource()
	a := NewAggregator(Config{RefreshInterval: 10 * time.Millisecond, RequestTimeout: time.Second}, src, nil)

	require.NoError(t, a.Start(context.Background()))
	assert.Eventually(t, func() bool { return src.coinCalls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, a.Stop(context.Background()))
	calls := src.coinCalls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, src.coinCalls.Load())
	assert.Equal(t, 0, a.sched.Active())
}

func TestAggregator_Subscribe(t *testing.T) {
	a := NewAggregator(testConfig(), fullSource(), nil)
	updates, unsubscribe := a.Subscribe()

	require.NoError(t, a.poll(context.Background()))

	select {
	case st := <-updates:
		assert.Equal(t, PhaseReady, st.Phase)
		assert.Len(t, st.Snapshot.TopCoins, 3)
	default:
		t.Fatal("expected a published state")
	}

	unsubscribe()
	unsubscribe()
	_, ok := <-updates
	assert.False(t, ok, "channel closed after unsubscribe")
}

func TestAggregator_SubscribeNewestWins(t *testing.T) {
	src := fullSource()
	a := NewAggregator(testConfig(), src, nil)
	updates, unsubscribe := a.Subscribe()
	defer unsubscribe()

	require.NoError(t, a.poll(context.Background()))
	src.coins = func(context.Context) ([]model.CoinQuote, error) { return threeCoins()[:1], nil }
	require.NoError(t, a.poll(context.Background()))

	st := <-updates
	assert.Len(t, st.Snapshot.TopCoins, 1)
}

func TestAggregator_StateIsCopy(t *testing.T) {
	a := NewAggregator(testConfig(), fullSource(), nil)
	require.NoError(t, a.poll(context.Background()))

	st := a.State()
	st.Snapshot.TopCoins[0].Name = "mutated"
	st.Snapshot.Global.Dominance["btc"] = 0

	again := a.State()
	assert.Equal(t, "Bitcoin", again.Snapshot.TopCoins[0].Name)
	assert.Equal(t, 52.1, again.Snapshot.Global.Dominance["btc"])
}

func TestNewAggregator_Defaults(t *testing.T) {
	a := NewAggregator(Config{}, fullSource(), nil)
	assert.Equal(t, DefaultConfig(), a.cfg)
}
