package service

import (
	"context"
	"fmt"
	"time"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/api"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/config"
	clierrors "github.com/blazeapp-lab/blazeapp-sub000/pkg/errors"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/feed"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/formatter"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/logger"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/output"
)

// DefaultWatchInterval is used when neither the flag nor the config give a
// positive interval.
const DefaultWatchInterval = 30 * time.Second

// FeedService builds and prints the home feed.
type FeedService struct {
	session    *Session
	aggregator *feed.Aggregator
}

// NewFeedService creates a new feed service
func NewFeedService(session *Session) *FeedService {
	return &FeedService{
		session:    session,
		aggregator: feed.NewAggregator(session.API, session.Overlay, feed.OptionsFromConfig()),
	}
}

// Load builds the feed for the session's viewer, anonymous included.
func (s *FeedService) Load(ctx context.Context) ([]formatter.PostView, error) {
	posts, err := s.aggregator.Build(ctx, s.session.ViewerID())
	if err != nil {
		return nil, clierrors.ReadError("Could not load feed", err)
	}
	return s.session.views(ctx, posts), nil
}

// Show prints the feed once.
func (s *FeedService) Show(ctx context.Context) error {
	views, err := s.Load(ctx)
	if err != nil {
		return err
	}
	return formatter.PrintPosts(views)
}

// Watch prints the feed, then rebuilds it every interval until ctx ends.
// Rebuilds go through a debounced refresher, so ticks that land while a
// build is running collapse into one. A failed rebuild keeps the last feed
// on screen and shows a notice.
func (s *FeedService) Watch(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Duration(config.GetInt("feed.watch_interval_seconds")) * time.Second
	}
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	if err := s.Show(ctx); err != nil {
		return err
	}

	results := make(chan []api.Post, 1)
	refresher := feed.NewRefresher(s.aggregator, s.session.ViewerID(), config.GetMillis("feed.debounce_ms"), func(posts []api.Post, err error) {
		if err != nil {
			output.PrintNotice(clierrors.ReadError("Could not refresh feed", err))
			return
		}
		select {
		case results <- posts:
		default:
			// The previous result is still unprinted.
		}
	})
	defer refresher.Close()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Debug("Watching feed", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			refresher.Trigger()
		case posts := <-results:
			fmt.Fprintf(output.Out, "\n── refreshed %s ──\n", time.Now().Format(time.Kitchen))
			if err := formatter.PrintPosts(s.session.views(ctx, posts)); err != nil {
				return err
			}
		}
	}
}
