package cmd

import (
	"context"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/service"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/websocket"
	"github.com/spf13/cobra"
)

var metricsAddr string

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Notification commands",
}

var notificationsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch for real-time notifications",
	Long: `Stream notifications addressed to you as they happen. The connection
is re-established with backoff if it drops. Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *service.Session) error {
			watcher := service.NewNotificationWatcherService(s, websocket.ConfigFromSettings())
			return watcher.Watch(ctx, metricsAddr)
		})
	},
}

func init() {
	notificationsWatchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9464) while watching")
	notificationsCmd.AddCommand(notificationsWatchCmd)
}
