package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/cryptoverse/internal/model"
)

// ErrFetchFailed is reported when every source failed in the same poll.
var ErrFetchFailed = errors.New("failed to fetch crypto data")

// pollResult holds the settled outcome of all three sources.
type pollResult struct {
	coins    []model.CoinQuote
	coinsErr error

	global    model.GlobalStats
	globalErr error

	trending    []model.TrendingEntry
	trendingErr error
}

func (r *pollResult) allFailed() bool {
	return r.coinsErr != nil && r.globalErr != nil && r.trendingErr != nil
}

// poll fetches all sources and applies the result as one state update.
// It returns the joined error when every source failed.
func (a *Aggregator) poll(ctx context.Context) error {
	start := time.Now()

	res := a.fetchAll(ctx)
	if ctx.Err() != nil {
		a.logger.Debug("poll cancelled, result discarded")
		return ctx.Err()
	}

	for _, f := range []struct {
		source string
		err    error
	}{
		{"top_coins", res.coinsErr},
		{"global", res.globalErr},
		{"trending", res.trendingErr},
	} {
		if f.err != nil && !res.allFailed() {
			a.logger.Warn("market source failed, keeping previous value",
				"source", f.source,
				"err", f.err,
			)
		}
	}

	applied, phase := a.state.apply(res, time.Now())
	if !applied {
		a.logger.Debug("poll finished after stop, result discarded")
		return nil
	}

	if phase == PhaseError {
		err := errors.Join(ErrFetchFailed, res.coinsErr, res.globalErr, res.trendingErr)
		a.logger.Error("all market sources failed",
			"err", err,
			"duration", time.Since(start),
		)
		return err
	}

	a.logger.Info("market poll complete",
		"phase", phase,
		"top_coins", len(res.coins),
		"trending", len(res.trending),
		"global", !res.global.IsEmpty(),
		"duration", time.Since(start),
	)
	return nil
}

// fetchAll runs the three requests concurrently and waits for every one of
// them. A failing source never cancels the others.
func (a *Aggregator) fetchAll(ctx context.Context) *pollResult {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.RequestTimeout)
	defer cancel()

	res := &pollResult{}
	var g errgroup.Group

	g.Go(func() error {
		coins, err := a.source.TopCoins(ctx, a.cfg.PageSize)
		res.coins, res.coinsErr = coins, wrapSource("top coins", err)
		return nil
	})
	g.Go(func() error {
		global, err := a.source.GlobalStats(ctx)
		res.global, res.globalErr = global, wrapSource("global stats", err)
		return nil
	})
	g.Go(func() error {
		trending, err := a.source.TrendingCoins(ctx)
		res.trending, res.trendingErr = trending, wrapSource("trending coins", err)
		return nil
	})

	_ = g.Wait()
	return res
}

func wrapSource(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("fetch %s: %w", name, err)
}
