// Package feed assembles the home feed: a followed set and a trending set are
// fetched, deduplicated, ranked and overlaid with locally known counters.
package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/api"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/config"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/logger"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/metrics"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/overlay"
	"golang.org/x/sync/errgroup"
)

// ErrLoadFailed wraps every query failure of a build.
var ErrLoadFailed = errors.New("failed to load feed")

// Backend is the read side of the backend the feed needs.
type Backend interface {
	FollowingIDs(ctx context.Context, followerID string) ([]string, error)
	ListPosts(ctx context.Context, q api.PostQuery) ([]api.Post, error)
}

// Options are the query windows and caps.
type Options struct {
	FollowedWindow time.Duration
	TrendingWindow time.Duration
	PublicWindow   time.Duration
	FollowedLimit  int
	TrendingLimit  int
	PublicLimit    int
}

func DefaultOptions() Options {
	return Options{
		FollowedWindow: 3 * 24 * time.Hour,
		TrendingWindow: 7 * 24 * time.Hour,
		PublicWindow:   7 * 24 * time.Hour,
		FollowedLimit:  25,
		TrendingLimit:  30,
		PublicLimit:    50,
	}
}

// OptionsFromConfig reads the feed.* keys. Missing or non-positive values
// fall back to the defaults.
func OptionsFromConfig() Options {
	opts := DefaultOptions()
	if d := config.GetHours("feed.followed_window_hours"); d > 0 {
		opts.FollowedWindow = d
	}
	if d := config.GetHours("feed.trending_window_hours"); d > 0 {
		opts.TrendingWindow = d
	}
	if d := config.GetHours("feed.public_window_hours"); d > 0 {
		opts.PublicWindow = d
	}
	if n := config.GetInt("feed.followed_limit"); n > 0 {
		opts.FollowedLimit = n
	}
	if n := config.GetInt("feed.trending_limit"); n > 0 {
		opts.TrendingLimit = n
	}
	if n := config.GetInt("feed.public_limit"); n > 0 {
		opts.PublicLimit = n
	}
	return opts
}

// Aggregator builds feeds. It holds no per-build state and is safe for
// concurrent use.
type Aggregator struct {
	backend Backend
	overlay *overlay.Overlay
	opts    Options
	now     func() time.Time
}

// NewAggregator returns an aggregator. overlay may be nil.
func NewAggregator(backend Backend, ov *overlay.Overlay, opts Options) *Aggregator {
	return &Aggregator{backend: backend, overlay: ov, opts: opts, now: time.Now}
}

// Build returns the home feed of viewerID, or the public feed when viewerID
// is empty. A failed query fails the whole build; there are no partial feeds.
func (a *Aggregator) Build(ctx context.Context, viewerID string) (posts []api.Post, err error) {
	start := time.Now()
	defer func() {
		metrics.FeedBuilds.WithLabelValues(metrics.Result(err)).Inc()
		metrics.FeedBuildDuration.Observe(time.Since(start).Seconds())
	}()

	if viewerID == "" {
		posts, err = a.buildPublic(ctx)
	} else {
		posts, err = a.buildForViewer(ctx, viewerID)
	}
	if err != nil {
		logger.Warn("Feed build failed", "viewer_id", viewerID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	if a.overlay != nil {
		posts = a.overlay.MergeInto(posts)
	}
	logger.Debug("Feed built", "viewer_id", viewerID, "count", len(posts), "took", time.Since(start))
	return posts, nil
}

func (a *Aggregator) buildPublic(ctx context.Context) ([]api.Post, error) {
	posts, err := a.backend.ListPosts(ctx, api.PostQuery{
		Since:      a.now().Add(-a.opts.PublicWindow),
		OrderBy:    api.OrderLikes,
		Limit:      a.opts.PublicLimit,
		PublicOnly: true,
	})
	if err != nil {
		return nil, err
	}

	// The query already excludes private authors; drop any that slipped
	// through an embed the backend did not filter.
	public := posts[:0:0]
	for _, p := range posts {
		if !p.IsPrivateAuthor() {
			public = append(public, p)
		}
	}
	return public, nil
}

func (a *Aggregator) buildForViewer(ctx context.Context, viewerID string) ([]api.Post, error) {
	now := a.now()
	var (
		following []string
		followed  []api.Post
		trending  []api.Post
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := a.backend.FollowingIDs(gctx, viewerID)
		if err != nil {
			return err
		}
		following = ids
		if len(ids) == 0 {
			return nil
		}
		followed, err = a.backend.ListPosts(gctx, api.PostQuery{
			AuthorIDs: ids,
			Since:     now.Add(-a.opts.FollowedWindow),
			OrderBy:   api.OrderNewest,
			Limit:     a.opts.FollowedLimit,
		})
		return err
	})
	g.Go(func() error {
		var err error
		trending, err = a.backend.ListPosts(gctx, api.PostQuery{
			Since:   now.Add(-a.opts.TrendingWindow),
			OrderBy: api.OrderLikes,
			Limit:   a.opts.TrendingLimit,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	visible := make(map[string]bool, len(following)+1)
	visible[viewerID] = true
	for _, id := range following {
		visible[id] = true
	}

	merged := make([]api.Post, 0, len(followed)+len(trending))
	seen := make(map[string]bool, cap(merged))
	for _, p := range followed {
		if !seen[p.ID] {
			seen[p.ID] = true
			merged = append(merged, p)
		}
	}
	for _, p := range trending {
		if seen[p.ID] {
			continue
		}
		if p.IsPrivateAuthor() && !visible[p.AuthorID] {
			continue
		}
		seen[p.ID] = true
		merged = append(merged, p)
	}
	logger.Debug("Feed sources fetched",
		"following", len(following),
		"followed", len(followed),
		"trending", len(trending),
		"merged", len(merged))

	Rank(merged)
	return merged, nil
}
