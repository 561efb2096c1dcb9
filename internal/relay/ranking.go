package relay

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/thanksrelay/relay/internal/cache"
	"github.com/thanksrelay/relay/internal/models"
)

// Ranking periods
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

// RankingOptions bound the ranking query. FetchLimit caps the page read
// from the store; posts outside that page can never surface regardless of
// their actionCount. That bound is a documented property of the feature,
// not something to widen silently.
type RankingOptions struct {
	FetchLimit  int
	ResultLimit int
	CacheTTL    time.Duration
}

// DefaultRankingOptions are a 50-row fetch page and a top-10 result.
func DefaultRankingOptions() RankingOptions {
	return RankingOptions{FetchLimit: 50, ResultLimit: 10, CacheTTL: 60 * time.Second}
}

// FetchRanking returns the most-relayed thanks posts of the period,
// actionCount descending with newer posts winning ties.
func (s *PostService) FetchRanking(ctx context.Context, period string, opts RankingOptions, c *cache.Cache) ([]*models.Post, error) {
	start, err := periodStart(period, time.Now())
	if err != nil {
		return nil, err
	}

	cacheKey := rankingCacheKey(period, start, opts)
	if c != nil {
		var cached []*models.Post
		if err := c.GetJSON(cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	var page []*models.Post
	if err := s.db.WithContext(ctx).
		Where("type = ? AND timestamp >= ?", models.PostTypeThanks, start).
		Order("timestamp DESC").
		Limit(opts.FetchLimit).
		Find(&page).Error; err != nil {
		return nil, err
	}

	ranked := rankPosts(page, opts.ResultLimit)

	if c != nil {
		if err := c.SetJSON(cacheKey, ranked, opts.CacheTTL); err != nil && err != cache.ErrCacheDisabled {
			s.logger.Warn("failed to cache ranking", zap.Error(err))
		}
	}

	return ranked, nil
}

// rankingCacheKey includes the period start so a cached result expires at
// the period boundary, not just after its TTL.
func rankingCacheKey(period string, start time.Time, opts RankingOptions) string {
	return cache.HashKey("ranking", period, start.UTC().Format(time.RFC3339),
		fmt.Sprintf("%d", opts.FetchLimit), fmt.Sprintf("%d", opts.ResultLimit))
}

// periodStart computes the calendar-aligned lower bound for a ranking
// period: midnight today, the most recent Monday, or the first of the
// month.
func periodStart(period string, now time.Time) (time.Time, error) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch period {
	case PeriodDaily:
		return midnight, nil
	case PeriodWeekly:
		// Monday-based week
		offset := int(now.Weekday()) - int(time.Monday)
		if offset < 0 {
			offset += 7
		}
		return midnight.AddDate(0, 0, -offset), nil
	case PeriodMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}
}

// rankPosts sorts a fetched page by actionCount descending, ties broken
// by timestamp descending, and truncates to limit.
func rankPosts(posts []*models.Post, limit int) []*models.Post {
	ranked := make([]*models.Post, len(posts))
	copy(ranked, posts)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].ActionCount != ranked[j].ActionCount {
			return ranked[i].ActionCount > ranked[j].ActionCount
		}
		return ranked[i].Timestamp.After(ranked[j].Timestamp)
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
