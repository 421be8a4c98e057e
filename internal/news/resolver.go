package news

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/cryptoverse/internal/model"
)

// DefaultText replaces a missing headline.
const DefaultText = "Crypto news update"

// StaticTexts is the tier-3 placeholder set.
var StaticTexts = [3]string{
	"Market volatility continues as investors eye regulatory developments",
	"Top altcoins show strong performance amid market recovery",
	"New DeFi protocol aims to revolutionize staking rewards",
}

// StaticCategories tags StaticTexts. They are fixed, not classified.
var StaticCategories = [3]model.Category{
	model.CategoryAlert,
	model.CategoryMarket,
	model.CategoryUpdate,
}

// Source is a news feed that can be tried as one tier.
type Source interface {
	Name() string
	FetchHeadlines(ctx context.Context) ([]model.Headline, error)
}

// Tier identifies which attempt produced a batch.
type Tier int

const (
	TierNone Tier = iota
	TierPrimary
	TierBackup
	TierStatic
)

func (t Tier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierBackup:
		return "backup"
	case TierStatic:
		return "static"
	default:
		return "none"
	}
}

// MarshalText renders the tier by name in JSON and logs.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses a tier name. Unknown names decode as TierNone.
func (t *Tier) UnmarshalText(b []byte) error {
	switch string(b) {
	case "primary":
		*t = TierPrimary
	case "backup":
		*t = TierBackup
	case "static":
		*t = TierStatic
	default:
		*t = TierNone
	}
	return nil
}

// Result is a normalized batch.
type Result struct {
	Items []model.NewsItem
	Tier  Tier
}

// Resolver runs the tier chain.
type Resolver struct {
	primary Source
	backup  Source
	logger  *slog.Logger
	newID   func() string
}

// NewResolver creates a Resolver. Either source may be nil, in which case its
// tier is skipped.
func NewResolver(primary, backup Source, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		primary: primary,
		backup:  backup,
		logger:  logger,
		newID:   uuid.NewString,
	}
}

// Resolve returns the first non-empty tier. It always succeeds.
func (r *Resolver) Resolve(ctx context.Context) Result {
	tiers := []struct {
		tier   Tier
		source Source
	}{
		{TierPrimary, r.primary},
		{TierBackup, r.backup},
	}

	for _, t := range tiers {
		if t.source == nil {
			continue
		}

		start := time.Now()
		headlines, err := t.source.FetchHeadlines(ctx)
		if err != nil {
			r.logger.Warn("news tier failed, falling back",
				"tier", t.tier,
				"source", t.source.Name(),
				"err", err,
			)
			continue
		}
		if len(headlines) == 0 {
			r.logger.Warn("news tier returned no items, falling back",
				"tier", t.tier,
				"source", t.source.Name(),
			)
			continue
		}

		r.logger.Debug("news resolved",
			"tier", t.tier,
			"source", t.source.Name(),
			"count", len(headlines),
			"duration", time.Since(start),
		)
		return Result{Items: r.normalize(headlines), Tier: t.tier}
	}

	r.logger.Warn("all news sources failed, using static set")
	return Result{Items: r.static(), Tier: TierStatic}
}

// normalize maps raw headlines into NewsItems with fresh ids.
func (r *Resolver) normalize(headlines []model.Headline) []model.NewsItem {
	items := make([]model.NewsItem, 0, len(headlines))
	for i, h := range headlines {
		text := strings.TrimSpace(h.Title)
		if text == "" {
			text = DefaultText
		}
		items = append(items, model.NewsItem{
			ID:       fmt.Sprintf("news-%d-%s", i, r.newID()),
			Category: Classify(text),
			Text:     text,
			Source:   h.Source,
			URL:      strings.TrimSpace(h.URL),
		})
	}
	return items
}

// static builds the tier-3 set.
func (r *Resolver) static() []model.NewsItem {
	items := make([]model.NewsItem, 0, len(StaticTexts))
	for i, text := range StaticTexts {
		items = append(items, model.NewsItem{
			ID:       fmt.Sprintf("static-%d-%s", i+1, r.newID()),
			Category: StaticCategories[i],
			Text:     text,
		})
	}
	return items
}
