// Package challenge resolves a challenge day to its curriculum content.
//
// THE LOOKUP CHAIN:
// Resolution walks an ordered list of strategies and stops at the first one
// that has the day:
//
//	CacheStrategy     challenge_days table, filled by earlier resolutions
//	DatasetStrategy   challenges.json (or the built-in table), loaded once
//	ScrapeStrategy    the public challenge calendar page, parsed on demand
//	FallbackStrategy  a generic "Day N Challenge" pointing at the calendar
//
// Results from the dataset and the scraper are written through to the store
// so later lookups are served from the cache. The placeholder is never
// stored, so a later call can still pick up real content.
//
// WHAT CAN GO WRONG?
// Every strategy can fail: the store may be locked, the page may time out or
// change its markup. A failing strategy is logged and treated as "not here",
// and the chain moves on. Resolve itself never returns an error; the worst
// case is the placeholder.
//
// CONCURRENCY:
// Two callers asking for the same day at once (the midnight reveal and a
// /api/challenges request, say) share one walk of the chain through
// singleflight, so the calendar is scraped at most once per day and miss.
package challenge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/sakif/challenge-bot/internal/apperror"
	"github.com/sakif/challenge-bot/internal/model"
	"github.com/sakif/challenge-bot/internal/repository"
)

// Source names the strategy that produced a Resolution.
type Source string

const (
	SourceCache    Source = "cache"
	SourceDataset  Source = "dataset"
	SourceScrape   Source = "scrape"
	SourceFallback Source = "fallback"
)

// Resolution is the outcome of Resolve.
type Resolution struct {
	Source    Source             `json:"source"`
	Challenge model.ChallengeDay `json:"challenge"`
}

// Strategy is one tier of the fallback chain. Lookup reports false when the
// tier has nothing for the day; tiers log their own failures and never
// return errors.
type Strategy interface {
	Name() Source
	Lookup(ctx context.Context, day int) (*model.ChallengeDay, bool)
}

// Resolver runs the strategy chain.
type Resolver struct {
	repo       repository.ChallengeRepository
	strategies []Strategy
	group      singleflight.Group
	logger     *slog.Logger
}

// NewResolver builds a resolver over strategies, tried in the given order.
// repo receives write-through copies of dataset and scrape results.
func NewResolver(repo repository.ChallengeRepository, logger *slog.Logger, strategies ...Strategy) *Resolver {
	return &Resolver{
		repo:       repo,
		strategies: strategies,
		logger:     logger,
	}
}

// Resolve never fails. Concurrent calls for the same day share a single
// walk of the chain.
func (r *Resolver) Resolve(ctx context.Context, day int) Resolution {
	v, _, _ := r.group.Do(strconv.Itoa(day), func() (any, error) {
		return r.resolve(ctx, day), nil
	})
	return v.(Resolution)
}

func (r *Resolver) resolve(ctx context.Context, day int) Resolution {
	for _, s := range r.strategies {
		c, ok := s.Lookup(ctx, day)
		if !ok {
			continue
		}
		c.Day = day

		if persistent(s.Name()) {
			r.store(ctx, c, s.Name())
		}

		r.logger.Debug("challenge resolved",
			slog.Int("day", day),
			slog.String("source", string(s.Name())),
		)
		return Resolution{Source: s.Name(), Challenge: *c}
	}

	r.logger.Warn("no strategy produced a challenge, using placeholder", slog.Int("day", day))
	return Resolution{Source: SourceFallback, Challenge: Placeholder(day, "")}
}

func (r *Resolver) store(ctx context.Context, c *model.ChallengeDay, src Source) {
	if err := r.repo.PutChallengeDay(ctx, c); err != nil {
		r.logger.Warn("failed to cache resolved challenge",
			slog.Int("day", c.Day),
			slog.String("source", string(src)),
			slog.String("error", err.Error()),
		)
	}
}

func persistent(src Source) bool {
	return src == SourceDataset || src == SourceScrape
}

// ===========================================================================
// Strategies
// ===========================================================================

// CacheStrategy reads previously resolved days from the store.
type CacheStrategy struct {
	repo   repository.ChallengeRepository
	logger *slog.Logger
}

// NewCacheStrategy reads previously resolved days from repo. A missing day is
// a silent miss; any other store error is logged at warn.
func NewCacheStrategy(repo repository.ChallengeRepository, logger *slog.Logger) *CacheStrategy {
	return &CacheStrategy{repo: repo, logger: logger}
}

func (s *CacheStrategy) Name() Source { return SourceCache }

func (s *CacheStrategy) Lookup(ctx context.Context, day int) (*model.ChallengeDay, bool) {
	c, err := s.repo.GetChallengeDay(ctx, day)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Warn("challenge cache read failed",
				slog.Int("day", day),
				slog.String("error", err.Error()),
			)
		}
		return nil, false
	}
	return c, true
}

// DatasetStrategy serves days from the dataset loaded at startup.
type DatasetStrategy struct {
	dataset *Dataset
}

func NewDatasetStrategy(ds *Dataset) *DatasetStrategy {
	return &DatasetStrategy{dataset: ds}
}

func (s *DatasetStrategy) Name() Source { return SourceDataset }

func (s *DatasetStrategy) Lookup(_ context.Context, day int) (*model.ChallengeDay, bool) {
	c, ok := s.dataset.Lookup(day)
	if !ok {
		return nil, false
	}
	return &c, true
}

// FallbackStrategy always succeeds with a placeholder pointing at the
// challenge calendar.
type FallbackStrategy struct {
	indexURL string
}

func NewFallbackStrategy(indexURL string) *FallbackStrategy {
	return &FallbackStrategy{indexURL: indexURL}
}

func (s *FallbackStrategy) Name() Source { return SourceFallback }

func (s *FallbackStrategy) Lookup(_ context.Context, day int) (*model.ChallengeDay, bool) {
	c := Placeholder(day, s.indexURL)
	return &c, true
}

// Placeholder is the generic content announced when nothing better is known.
func Placeholder(day int, indexURL string) model.ChallengeDay {
	where := "the challenge calendar"
	if indexURL != "" {
		where = indexURL
	}
	return model.ChallengeDay{
		Day:   day,
		Title: fmt.Sprintf("Day %d Challenge", day),
		Description: fmt.Sprintf("Today's challenge is now live! Visit %s to view the full details.\n\n"+
			"Submit your solution using /submit <GitHub_PR_link> when you're done!", where),
	}
}
