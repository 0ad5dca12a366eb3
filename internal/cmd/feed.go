package cmd

import (
	"context"
	"time"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/service"
	"github.com/spf13/cobra"
)

var (
	feedWatch    bool
	feedInterval time.Duration
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "View your home feed",
	Long: `Show the home feed: recent posts from people you follow mixed with
trending posts, ranked by engagement and recency. Logged out, the feed
shows trending public posts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *service.Session) error {
			feed := service.NewFeedService(s)
			if feedWatch {
				return feed.Watch(ctx, feedInterval)
			}
			return feed.Show(ctx)
		})
	},
}

func init() {
	feedCmd.Flags().BoolVarP(&feedWatch, "watch", "w", false, "Keep the feed open and refresh it periodically")
	feedCmd.Flags().DurationVar(&feedInterval, "interval", 0, "Refresh interval with --watch (default from feed.watch_interval_seconds)")
}
