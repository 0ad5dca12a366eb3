package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	clierrors "github.com/blazeapp-lab/blazeapp-sub000/pkg/errors"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/formatter"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/logger"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/metrics"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/output"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/websocket"
)

var notificationLabels = map[string]string{
	"like":    "liked your post",
	"dislike": "broke a heart on your post",
	"repost":  "reposted your post",
	"comment": "commented on your post",
	"follow":  "followed you",
	"mention": "mentioned you",
}

// NotificationWatcherService watches for real-time notifications
type NotificationWatcherService struct {
	session *Session
	config  websocket.Config

	// ready is closed once the channel is joined. Tests wait on it.
	ready chan struct{}
}

// NewNotificationWatcherService creates a new notification watcher service
func NewNotificationWatcherService(session *Session, config websocket.Config) *NotificationWatcherService {
	return &NotificationWatcherService{session: session, config: config, ready: make(chan struct{})}
}

// Watch prints notifications for the viewer until ctx ends. When metricsAddr
// is set, Prometheus metrics are served on it under /metrics meanwhile.
func (s *NotificationWatcherService) Watch(ctx context.Context, metricsAddr string) error {
	if err := s.session.RequireViewer(); err != nil {
		return err
	}

	if metricsAddr != "" {
		_, stop, err := serveMetrics(metricsAddr)
		if err != nil {
			return clierrors.NewCLIError(clierrors.ErrorTypeNetwork, "Could not start metrics listener", err)
		}
		defer stop()
	}

	ws := websocket.NewClient(s.config)
	if err := ws.Connect(s.session.Creds.AccessToken); err != nil {
		return clierrors.NetworkError(fmt.Sprintf("Could not connect to notification stream: %v", err))
	}
	defer ws.Disconnect()

	unsubscribe, err := websocket.SubscribeNotifications(ws, s.session.ViewerID(), s.display)
	if err != nil {
		return clierrors.NetworkError(fmt.Sprintf("Could not subscribe to notifications: %v", err))
	}
	defer unsubscribe()
	close(s.ready)

	if output.GetOutputFormat() == output.FormatText {
		output.PrintInfo("Watching notifications for %s. Press Ctrl+C to stop.", s.session.Creds.Username)
	}
	logger.Debug("Notification watcher started", "user_id", s.session.ViewerID())

	<-ctx.Done()

	stats := ws.GetStats()
	logger.Debug("Notification watcher stopped", "received", stats.MessagesReceived, "reconnects", stats.ReconnectCount)
	return nil
}

func (s *NotificationWatcherService) display(n websocket.Notification) {
	if output.GetOutputFormat() == output.FormatJSON {
		if err := output.PrintJSON(n); err != nil {
			logger.Warn("Failed to print notification", "error", err)
		}
		return
	}

	label, ok := notificationLabels[n.Type]
	if !ok {
		label = strings.ReplaceAll(n.Type, "_", " ")
	}
	at := n.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}

	line := fmt.Sprintf("%s  %s %s", formatter.Faint.Sprint(at.Local().Format(time.Kitchen)), formatter.Bold.Sprint(n.ActorID), label)
	if n.PostID != "" {
		line += formatter.Faint.Sprintf("  (post %s)", n.PostID)
	}
	fmt.Fprintln(output.Out, line)
}

// serveMetrics listens on addr and returns the bound address and a func that
// shuts the server down.
func serveMetrics(addr string) (string, func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "error", err)
		}
	}()
	logger.Info("Serving metrics", "addr", ln.Addr().String())

	return ln.Addr().String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}, nil
}
